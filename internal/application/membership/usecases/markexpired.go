package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/siteforge/siteforge/internal/domain/membership"
	vo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

type MarkMembershipExpiredUseCase struct {
	membershipRepo membership.Repository
	now            func() time.Time
	logger         logger.Interface
}

func NewMarkMembershipExpiredUseCase(membershipRepo membership.Repository, logger logger.Interface) *MarkMembershipExpiredUseCase {
	return &MarkMembershipExpiredUseCase{
		membershipRepo: membershipRepo,
		now:            biztime.NowUTC,
		logger:         logger,
	}
}

// Execute expires the membership regardless of its current status. It
// reports false when the membership no longer exists.
func (uc *MarkMembershipExpiredUseCase) Execute(ctx context.Context, task ExpireMembershipTask) (bool, error) {
	m, err := uc.membershipRepo.GetByID(ctx, task.MembershipID)
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load membership: %w", err)
	}

	m.SetSkipValidation(true)
	if err := m.SetStatus(vo.StatusExpired, uc.now()); err != nil {
		return false, err
	}
	if err := uc.membershipRepo.Update(ctx, m); err != nil {
		uc.logger.Errorw("failed to mark membership expired", "error", err, "membership_id", m.ID())
		return false, fmt.Errorf("failed to mark membership expired: %w", err)
	}

	uc.logger.Infow("membership expired", "membership_id", m.ID())
	return true, nil
}
