package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/siteforge/siteforge/internal/application/membership/dto"
	"github.com/siteforge/siteforge/internal/application/payment/paymentgateway"
	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/membership"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/db"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// GatewayLookup resolves a gateway by its ID.
type GatewayLookup interface {
	Get(id string) (paymentgateway.Gateway, error)
}

type CancelMembershipUseCase struct {
	txMgr          db.Runner
	membershipRepo membership.Repository
	customerRepo   customer.Repository
	gateways       GatewayLookup
	now            func() time.Time
	logger         logger.Interface
}

func NewCancelMembershipUseCase(
	txMgr db.Runner,
	membershipRepo membership.Repository,
	customerRepo customer.Repository,
	gateways GatewayLookup,
	logger logger.Interface,
) *CancelMembershipUseCase {
	return &CancelMembershipUseCase{
		txMgr:          txMgr,
		membershipRepo: membershipRepo,
		customerRepo:   customerRepo,
		gateways:       gateways,
		now:            biztime.NowUTC,
		logger:         logger,
	}
}

// Execute cancels the membership at its gateway and then locally, in one
// transaction.
func (uc *CancelMembershipUseCase) Execute(ctx context.Context, membershipID uint) (*dto.MembershipResponse, error) {
	var m *membership.Membership

	err := uc.txMgr.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = uc.membershipRepo.GetByID(ctx, membershipID)
		if err != nil {
			if errors.Is(err, membership.ErrMembershipNotFound) {
				return apperrors.NewNotFoundError("membership not found")
			}
			return fmt.Errorf("failed to load membership: %w", err)
		}

		if m.Gateway() != "" {
			gw, err := uc.gateways.Get(m.Gateway())
			if err != nil {
				return apperrors.NewBadRequestError(err.Error()).WithCause(err)
			}
			c, err := uc.customerRepo.GetByID(ctx, m.CustomerID())
			if err != nil {
				return fmt.Errorf("failed to load customer: %w", err)
			}
			if err := gw.ProcessCancellation(ctx, m, c); err != nil {
				return fmt.Errorf("gateway cancellation failed: %w", err)
			}
		}

		if err := m.Cancel(uc.now()); err != nil {
			return apperrors.NewConflictError(err.Error()).WithCause(err)
		}
		if err := uc.membershipRepo.Update(ctx, m); err != nil {
			return fmt.Errorf("failed to save membership: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to cancel membership", "error", err, "membership_id", membershipID)
		return nil, err
	}

	uc.logger.Infow("membership cancelled", "membership_id", m.ID(), "gateway", m.Gateway())
	return dto.ToMembershipResponse(m), nil
}

type GetMembershipUseCase struct {
	membershipRepo membership.Repository
	logger         logger.Interface
}

func NewGetMembershipUseCase(membershipRepo membership.Repository, logger logger.Interface) *GetMembershipUseCase {
	return &GetMembershipUseCase{membershipRepo: membershipRepo, logger: logger}
}

func (uc *GetMembershipUseCase) Execute(ctx context.Context, membershipID uint) (*dto.MembershipResponse, error) {
	m, err := uc.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return nil, apperrors.NewNotFoundError("membership not found")
		}
		uc.logger.Errorw("failed to get membership", "error", err, "membership_id", membershipID)
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return dto.ToMembershipResponse(m), nil
}
