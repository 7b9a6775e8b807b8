package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/siteforge/siteforge/internal/application/payment/dto"
	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/membership"
	membershipvo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/shared/events"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/db"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

type RefundPaymentUseCase struct {
	txMgr          db.Runner
	paymentRepo    payment.Repository
	membershipRepo membership.Repository
	customerRepo   customer.Repository
	noteRepo       note.Repository
	gateways       GatewayLookup
	settings       BillingSettings
	publisher      events.EventPublisher
	now            func() time.Time
	logger         logger.Interface
}

func NewRefundPaymentUseCase(
	txMgr db.Runner,
	paymentRepo payment.Repository,
	membershipRepo membership.Repository,
	customerRepo customer.Repository,
	noteRepo note.Repository,
	gateways GatewayLookup,
	settings BillingSettings,
	publisher events.EventPublisher,
	logger logger.Interface,
) *RefundPaymentUseCase {
	return &RefundPaymentUseCase{
		txMgr:          txMgr,
		paymentRepo:    paymentRepo,
		membershipRepo: membershipRepo,
		customerRepo:   customerRepo,
		noteRepo:       noteRepo,
		gateways:       gateways,
		settings:       settings,
		publisher:      publisher,
		now:            biztime.NowUTC,
		logger:         logger,
	}
}

// Execute refunds the payment through its gateway. A zero amount refunds the
// remaining total. When the refund asks for it, the membership is cancelled
// at its gateway and locally in the same transaction.
func (uc *RefundPaymentUseCase) Execute(ctx context.Context, hash string, req dto.RefundRequest) (*dto.PaymentResponse, error) {
	if req.Amount.IsNegative() {
		return nil, apperrors.NewValidationError("invalid refund amount").
			AddField("amount", "The refund amount must not be negative.")
	}

	now := uc.now()
	var p *payment.Payment
	cancelled := false

	err := uc.txMgr.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = loadPayment(ctx, uc.paymentRepo, hash)
		if err != nil {
			return err
		}
		if !isRefundable(p.Status()) {
			return apperrors.NewConflictError(fmt.Sprintf("a %s payment cannot be refunded", p.Status()))
		}
		if req.Amount.GreaterThan(p.Total()) {
			return apperrors.NewValidationError("invalid refund amount").
				AddField("amount", "The refund amount exceeds the payment total.")
		}

		m, c, err := uc.loadOwners(ctx, p)
		if err != nil {
			return err
		}

		if req.CancelMembership != nil {
			p.SetCancelMembershipOnRefund(*req.CancelMembership)
		}

		if err := uc.refund(ctx, p, m, c, req, now); err != nil {
			return err
		}

		if m != nil && shouldCancelOnRefund(p) && m.Status() != membershipvo.StatusCancelled {
			if err := uc.cancelMembership(ctx, m, c, now); err != nil {
				return err
			}
			cancelled = true
		}

		n, err := note.NewNote(note.Subject{Type: note.SubjectPayment, ID: p.ID()},
			fmt.Sprintf("Refunded %s %s.", refundedAmount(p, req).StringFixed(2), p.Currency()), 0, now)
		if err != nil {
			return err
		}
		return uc.noteRepo.Create(ctx, n)
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			uc.logger.Errorw("failed to refund payment", "error", err, "payment_hash", hash)
		}
		return nil, err
	}

	if err := uc.publisher.Publish(payment.NewPaymentRefundedEvent(p, now)); err != nil {
		uc.logger.Warnw("failed to publish payment refunded event", "error", err, "payment_hash", p.Hash())
	}

	uc.logger.Infow("payment refunded",
		"payment_hash", p.Hash(),
		"status", p.Status(),
		"refund_total", p.RefundTotal().StringFixed(2),
		"membership_cancelled", cancelled,
	)
	return describePayment(ctx, p, uc.settings, now), nil
}

func (uc *RefundPaymentUseCase) loadOwners(ctx context.Context, p *payment.Payment) (*membership.Membership, *customer.Customer, error) {
	var m *membership.Membership
	if p.MembershipID() != 0 {
		var err error
		m, err = uc.membershipRepo.GetByID(ctx, p.MembershipID())
		if err != nil && !errors.Is(err, membership.ErrMembershipNotFound) {
			return nil, nil, fmt.Errorf("failed to load membership: %w", err)
		}
	}

	c, err := uc.customerRepo.GetByID(ctx, p.CustomerID())
	if err != nil && !errors.Is(err, customer.ErrCustomerNotFound) {
		return nil, nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return m, c, nil
}

// refund goes through the payment's gateway. Payments without a gateway are
// refunded locally.
func (uc *RefundPaymentUseCase) refund(ctx context.Context, p *payment.Payment, m *membership.Membership, c *customer.Customer, req dto.RefundRequest, now time.Time) error {
	if p.Gateway() == "" {
		if _, err := p.Refund(req.Amount, req.CancelMembership, now); err != nil {
			return apperrors.NewConflictError(err.Error()).WithCause(err)
		}
		return uc.paymentRepo.Update(ctx, p)
	}

	gw, err := uc.gateways.Get(p.Gateway())
	if err != nil {
		return apperrors.NewBadRequestError(err.Error()).WithCause(err)
	}
	if err := gw.ProcessRefund(ctx, req.Amount, p, m, c); err != nil {
		return fmt.Errorf("gateway refund failed: %w", err)
	}
	return nil
}

func (uc *RefundPaymentUseCase) cancelMembership(ctx context.Context, m *membership.Membership, c *customer.Customer, now time.Time) error {
	if m.Gateway() != "" {
		gw, err := uc.gateways.Get(m.Gateway())
		if err != nil {
			return apperrors.NewBadRequestError(err.Error()).WithCause(err)
		}
		if err := gw.ProcessCancellation(ctx, m, c); err != nil {
			return fmt.Errorf("gateway cancellation failed: %w", err)
		}
	}
	if err := m.Cancel(now); err != nil {
		return err
	}
	if err := uc.membershipRepo.Update(ctx, m); err != nil {
		return fmt.Errorf("failed to cancel membership: %w", err)
	}
	return nil
}

func isRefundable(s paymentvo.PaymentStatus) bool {
	return s == paymentvo.PaymentStatusCompleted || s == paymentvo.PaymentStatusPartiallyRefunded
}

func shouldCancelOnRefund(p *payment.Payment) bool {
	flag := p.CancelMembershipOnRefund()
	return flag != nil && *flag
}

// refundedAmount is the amount of the refund just applied.
func refundedAmount(p *payment.Payment, req dto.RefundRequest) decimal.Decimal {
	if req.Amount.IsPositive() {
		return req.Amount
	}
	items := p.LineItems()
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].IsRefund() {
			return items[i].UnitPrice.Abs()
		}
	}
	return decimal.Zero
}
