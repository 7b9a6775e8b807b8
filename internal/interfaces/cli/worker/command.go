package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	membershipUsecases "github.com/siteforge/siteforge/internal/application/membership/usecases"
	"github.com/siteforge/siteforge/internal/infrastructure/database"
	"github.com/siteforge/siteforge/internal/infrastructure/queue"
	"github.com/siteforge/siteforge/internal/infrastructure/scheduler"
	"github.com/siteforge/siteforge/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/siteforge/siteforge/internal/interfaces/http"
)

var (
	env       string
	consumers int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run scheduled membership checks and queued actions",
		Long: `Start the background worker. It sweeps memberships on a schedule, enqueues
renewal and expiration actions, and consumes them from Redis.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().IntVar(&consumers, "consumers", 0, "Number of queue consumers (default from config)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	env = bootstrap.ResolveEnv(env)

	cfg, log, err := bootstrap.InitWithDatabase(env)
	if err != nil {
		return err
	}
	defer database.Close()

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer container.Shutdown()

	schedulerManager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := schedulerManager.RegisterTickJobs(container.EventPublisher()); err != nil {
		return fmt.Errorf("failed to register tick jobs: %w", err)
	}
	if err := schedulerManager.RegisterMembershipCheckJob(container.CheckMemberships(), cfg.Billing.MembershipCheckInterval); err != nil {
		return fmt.Errorf("failed to register membership check: %w", err)
	}

	consumer := queue.NewConsumer(container.Queue(), cfg.Queue.PollTimeout, log)
	consumer.Register(membershipUsecases.ActionCreateRenewalPayment, queue.Handle(container.CreateRenewalPayment().Execute))
	consumer.Register(membershipUsecases.ActionMarkMembershipExpired, queue.Handle(container.MarkMembershipExpired().Execute))

	n := consumers
	if n <= 0 {
		n = cfg.Queue.Consumers
	}
	if n <= 0 {
		n = 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedulerManager.Start()
	defer func() {
		_ = schedulerManager.Stop()
	}()

	log.Infow("worker started",
		"environment", env,
		"consumers", n,
		"membership_check_interval", cfg.Billing.MembershipCheckInterval)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	err = g.Wait()
	log.Infow("worker stopped")
	return err
}
