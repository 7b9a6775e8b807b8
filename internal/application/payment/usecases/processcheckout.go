package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/application/payment/dto"
	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/membership"
	"github.com/siteforge/siteforge/internal/domain/payment"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/db"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// ProcessCheckoutUseCase pays a pending payment through the chosen gateway.
type ProcessCheckoutUseCase struct {
	txMgr          db.Runner
	paymentRepo    payment.Repository
	membershipRepo membership.Repository
	customerRepo   customer.Repository
	carts          CartBuilder
	gateways       GatewayLookup
	settings       BillingSettings
	now            func() time.Time
	logger         logger.Interface
}

func NewProcessCheckoutUseCase(
	txMgr db.Runner,
	paymentRepo payment.Repository,
	membershipRepo membership.Repository,
	customerRepo customer.Repository,
	carts CartBuilder,
	gateways GatewayLookup,
	settings BillingSettings,
	logger logger.Interface,
) *ProcessCheckoutUseCase {
	return &ProcessCheckoutUseCase{
		txMgr:          txMgr,
		paymentRepo:    paymentRepo,
		membershipRepo: membershipRepo,
		customerRepo:   customerRepo,
		carts:          carts,
		gateways:       gateways,
		settings:       settings,
		now:            biztime.NowUTC,
		logger:         logger,
	}
}

func (uc *ProcessCheckoutUseCase) Execute(ctx context.Context, hash string, req dto.CheckoutRequest) (*dto.PaymentResponse, error) {
	gw, err := uc.gateways.Get(req.Gateway)
	if err != nil {
		return nil, apperrors.NewValidationError("unknown payment gateway").AddField("gateway", err.Error())
	}

	now := uc.now()
	var p *payment.Payment

	err = uc.txMgr.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err = loadPayment(ctx, uc.paymentRepo, hash)
		if err != nil {
			return err
		}
		if !p.IsPayable() {
			return apperrors.NewConflictError(fmt.Sprintf("a %s payment cannot be paid", p.Status()))
		}
		if p.MembershipID() == 0 {
			return apperrors.NewBadRequestError("payment has no membership")
		}

		m, err := uc.membershipRepo.GetByID(ctx, p.MembershipID())
		if err != nil {
			if errors.Is(err, membership.ErrMembershipNotFound) {
				return apperrors.NewNotFoundError("membership not found")
			}
			return fmt.Errorf("failed to load membership: %w", err)
		}
		c, err := uc.customerRepo.GetByID(ctx, p.CustomerID())
		if err != nil {
			return fmt.Errorf("failed to load customer: %w", err)
		}

		cart, err := uc.carts.Build(ctx, checkout.Input{
			Type:         checkout.CartTypeRetry,
			Membership:   m,
			RetryPayment: p,
		}, now)
		if err != nil {
			return err
		}
		if !cart.IsValid() {
			first := cart.Errors()[0]
			return apperrors.NewBadRequestError(first.Message).WithReason(first.Code)
		}

		if m.Gateway() != gw.ID() {
			m.SetGateway(gw.ID(), "", "", now)
			if err := uc.membershipRepo.Update(ctx, m); err != nil {
				return fmt.Errorf("failed to update membership: %w", err)
			}
		}
		if p.Gateway() != gw.ID() {
			p.SetGateway(gw.ID(), "", now)
			if err := uc.paymentRepo.Update(ctx, p); err != nil {
				return fmt.Errorf("failed to update payment: %w", err)
			}
		}

		if err := gw.ProcessCheckout(ctx, p, m, c, cart, checkout.CartTypeRetry); err != nil {
			return fmt.Errorf("gateway checkout failed: %w", err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			uc.logger.Errorw("failed to process checkout", "error", err, "payment_hash", hash, "gateway", req.Gateway)
		}
		return nil, err
	}

	uc.logger.Infow("checkout processed",
		"payment_hash", p.Hash(),
		"gateway", gw.ID(),
		"status", p.Status(),
	)
	return describePayment(ctx, p, uc.settings, now), nil
}
