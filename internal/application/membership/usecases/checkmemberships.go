package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/siteforge/siteforge/internal/domain/membership"
	vo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// CheckConfig holds the sweep windows.
type CheckConfig struct {
	RenewalDaysBeforeExpiring int
	TrialCheckOffset          time.Duration
	GracePeriodDays           int
}

// CheckResult counts the actions enqueued by one sweep.
type CheckResult struct {
	RenewalsQueued    int
	TrialsQueued      int
	ExpirationsQueued int
	Failed            int
}

// CheckMembershipsUseCase finds memberships that need a renewal payment or
// must expire, and enqueues one action per membership.
type CheckMembershipsUseCase struct {
	membershipRepo membership.Repository
	queue          ActionEnqueuer
	config         CheckConfig
	now            func() time.Time
	logger         logger.Interface
}

func NewCheckMembershipsUseCase(
	membershipRepo membership.Repository,
	queue ActionEnqueuer,
	config CheckConfig,
	logger logger.Interface,
) *CheckMembershipsUseCase {
	return &CheckMembershipsUseCase{
		membershipRepo: membershipRepo,
		queue:          queue,
		config:         config,
		now:            biztime.NowUTC,
		logger:         logger,
	}
}

// Execute runs the renewal, trial and expiration checks in that order.
func (uc *CheckMembershipsUseCase) Execute(ctx context.Context) (*CheckResult, error) {
	now := uc.now()
	result := &CheckResult{}

	renewals, err := uc.CheckRenewals(ctx, now)
	if err != nil {
		return nil, err
	}
	result.RenewalsQueued = renewals.RenewalsQueued
	result.Failed += renewals.Failed

	trials, err := uc.CheckTrials(ctx, now)
	if err != nil {
		return nil, err
	}
	result.TrialsQueued = trials.TrialsQueued
	result.Failed += trials.Failed

	expired, err := uc.CheckExpired(ctx, now)
	if err != nil {
		return nil, err
	}
	result.ExpirationsQueued = expired.ExpirationsQueued
	result.Failed += expired.Failed

	uc.logger.Infow("membership check completed",
		"renewals", result.RenewalsQueued,
		"trials", result.TrialsQueued,
		"expirations", result.ExpirationsQueued,
		"failed", result.Failed,
	)
	return result, nil
}

// CheckRenewals enqueues a renewal payment for manually renewed active
// memberships that expire between the start of yesterday and the renewal
// window.
func (uc *CheckMembershipsUseCase) CheckRenewals(ctx context.Context, now time.Time) (*CheckResult, error) {
	from, to := membership.RenewalWindow(now, uc.config.RenewalDaysBeforeExpiring)
	manual := false

	found, err := uc.membershipRepo.Find(ctx, membership.Filter{
		Statuses:          []vo.MembershipStatus{vo.StatusActive},
		AutoRenew:         &manual,
		ExpirationAfter:   &from,
		ExpirationBefore:  &to,
		ExpirationNotNull: true,
	})
	if err != nil {
		uc.logger.Errorw("failed to find memberships due for renewal", "error", err)
		return nil, fmt.Errorf("failed to find memberships due for renewal: %w", err)
	}

	result := &CheckResult{}
	for _, m := range found {
		if err := uc.queue.Enqueue(ctx, ActionCreateRenewalPayment, RenewalPaymentTask{MembershipID: m.ID()}); err != nil {
			uc.logger.Errorw("failed to enqueue renewal payment", "error", err, "membership_id", m.ID())
			result.Failed++
			continue
		}
		result.RenewalsQueued++
	}
	return result, nil
}

// CheckTrials enqueues the first payment of manually renewed memberships
// whose trial ended before the trial offset.
func (uc *CheckMembershipsUseCase) CheckTrials(ctx context.Context, now time.Time) (*CheckResult, error) {
	cutoff := membership.TrialCutoff(now, uc.config.TrialCheckOffset)
	manual := false

	found, err := uc.membershipRepo.Find(ctx, membership.Filter{
		Statuses:       []vo.MembershipStatus{vo.StatusTrialing},
		AutoRenew:      &manual,
		TrialEndBefore: &cutoff,
	})
	if err != nil {
		uc.logger.Errorw("failed to find ended trials", "error", err)
		return nil, fmt.Errorf("failed to find ended trials: %w", err)
	}

	result := &CheckResult{}
	for _, m := range found {
		task := RenewalPaymentTask{MembershipID: m.ID(), Trial: true}
		if err := uc.queue.Enqueue(ctx, ActionCreateRenewalPayment, task); err != nil {
			uc.logger.Errorw("failed to enqueue trial payment", "error", err, "membership_id", m.ID())
			result.Failed++
			continue
		}
		result.TrialsQueued++
	}
	return result, nil
}

// CheckExpired enqueues expiration for active or on-hold memberships past
// the grace period.
func (uc *CheckMembershipsUseCase) CheckExpired(ctx context.Context, now time.Time) (*CheckResult, error) {
	cutoff := membership.GraceCutoff(now, uc.config.GracePeriodDays)
	manual := false

	found, err := uc.membershipRepo.Find(ctx, membership.Filter{
		Statuses:          []vo.MembershipStatus{vo.StatusActive, vo.StatusOnHold},
		AutoRenew:         &manual,
		ExpirationBefore:  &cutoff,
		ExpirationNotNull: true,
	})
	if err != nil {
		uc.logger.Errorw("failed to find expired memberships", "error", err)
		return nil, fmt.Errorf("failed to find expired memberships: %w", err)
	}

	result := &CheckResult{}
	for _, m := range found {
		if err := uc.queue.Enqueue(ctx, ActionMarkMembershipExpired, ExpireMembershipTask{MembershipID: m.ID()}); err != nil {
			uc.logger.Errorw("failed to enqueue membership expiration", "error", err, "membership_id", m.ID())
			result.Failed++
			continue
		}
		result.ExpirationsQueued++
	}
	return result, nil
}
