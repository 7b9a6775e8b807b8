package seed

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/siteforge/siteforge/internal/infrastructure/database"
	"github.com/siteforge/siteforge/internal/infrastructure/repository"
	"github.com/siteforge/siteforge/internal/interfaces/cli/bootstrap"
	"github.com/siteforge/siteforge/internal/shared/biztime"
)

var (
	env         string
	catalogPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load products and discount codes from a YAML catalog",
		Long: `Insert or update the products and discount codes listed in a catalog file.
Products are matched by slug and discount codes by code, so the command can be
run repeatedly.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&catalogPath, "file", "f", "configs/catalog.yaml", "Catalog file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	f, err := os.Open(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	catalog, err := LoadCatalog(f)
	if err != nil {
		return err
	}

	_, log, err := bootstrap.InitWithDatabase(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer database.Close()

	db := database.Get()
	res, err := catalog.Apply(cmd.Context(),
		repository.NewProductRepository(db),
		repository.NewDiscountCodeRepository(db),
		biztime.NowUTC(),
	)
	if err != nil {
		log.Errorw("seeding stopped", "error", err, "products", res.Products, "discounts", res.Discounts)
		return err
	}

	log.Infow("catalog loaded", "file", catalogPath, "products", res.Products, "discounts", res.Discounts)
	return nil
}
