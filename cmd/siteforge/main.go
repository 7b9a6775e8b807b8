package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/siteforge/siteforge/internal/interfaces/cli/migrate"
	"github.com/siteforge/siteforge/internal/interfaces/cli/seed"
	"github.com/siteforge/siteforge/internal/interfaces/cli/server"
	"github.com/siteforge/siteforge/internal/interfaces/cli/worker"
	"github.com/siteforge/siteforge/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "siteforge",
		Short:   "SiteForge - billing for WordPress networks",
		Long:    `SiteForge sells plans for sites in a WordPress network: registration, payments, renewals and membership expiry.`,
		Version: version.String(),
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
		seed.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
