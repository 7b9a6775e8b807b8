// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	membershipUsecases "github.com/siteforge/siteforge/internal/application/membership/usecases"
	"github.com/siteforge/siteforge/internal/domain/shared/events"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// MembershipChecker runs the renewal, trial and expiration sweeps.
type MembershipChecker interface {
	Execute(ctx context.Context) (*membershipUsecases.CheckResult, error)
}

// Tick is one recurring schedule published on the event bus.
type Tick struct {
	Name      string
	Cron      string
	EventType string
}

// Ticks are the recurring schedules other components hook into.
var Ticks = []Tick{
	{Name: "hourly", Cron: "0 * * * *", EventType: events.EventTypeCronHourly},
	{Name: "daily", Cron: "0 0 * * *", EventType: events.EventTypeCronDaily},
	{Name: "monthly", Cron: "0 0 1 * *", EventType: events.EventTypeCronMonthly},
}

// SchedulerManager manages all scheduled jobs using gocron v2.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone for cron expressions.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterTickJobs publishes a TickEvent for every entry in Ticks.
func (m *SchedulerManager) RegisterTickJobs(publisher events.EventPublisher) error {
	for _, tick := range Ticks {
		tick := tick
		_, err := m.scheduler.NewJob(
			gocron.CronJob(tick.Cron, false),
			gocron.NewTask(func() {
				m.publishTick(publisher, tick)
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithTags("cron", tick.Name),
			gocron.WithName("cron-"+tick.Name),
		)
		if err != nil {
			return err
		}
	}

	m.logger.Infow("registered tick jobs", "count", len(Ticks))
	return nil
}

func (m *SchedulerManager) publishTick(publisher events.EventPublisher, tick Tick) {
	m.logger.Debugw("cron tick", "schedule", tick.Name)
	if err := publisher.Publish(events.NewTickEvent(tick.EventType, tick.Name, biztime.NowUTC())); err != nil {
		m.logger.Warnw("failed to publish tick event",
			"schedule", tick.Name,
			"error", err,
		)
	}
}

// RegisterMembershipCheckJob runs the membership sweeps every interval,
// starting immediately.
func (m *SchedulerManager) RegisterMembershipCheckJob(checker MembershipChecker, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.checkMemberships(ctx, checker)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("membership", "renewal", "trial", "expiration"),
		gocron.WithName("membership_check"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered membership check job", "interval", interval.String())
	return nil
}

func (m *SchedulerManager) checkMemberships(ctx context.Context, checker MembershipChecker) {
	startTime := biztime.NowUTC()

	result, err := checker.Execute(ctx)
	if err != nil {
		m.logger.Errorw("membership check failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.RenewalsQueued+result.TrialsQueued+result.ExpirationsQueued+result.Failed > 0 {
		m.logger.Infow("membership check processed",
			"renewals", result.RenewalsQueued,
			"trials", result.TrialsQueued,
			"expirations", result.ExpirationsQueued,
			"failed", result.Failed,
			"duration", time.Since(startTime),
		)
	}
}

// Start starts the scheduler.
// It is safe to call multiple times; subsequent calls are no-ops.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
