package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/domain/membership"
	vo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/payment"
	"github.com/siteforge/siteforge/internal/domain/shared/events"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/db"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// CartBuilder prices renewal carts.
type CartBuilder interface {
	Build(ctx context.Context, in checkout.Input, now time.Time) (*checkout.Cart, error)
}

// RegistrationURLProvider returns the page where customers pay pending payments.
type RegistrationURLProvider interface {
	RegistrationURL() string
}

type CreateRenewalPaymentUseCase struct {
	txMgr          db.Runner
	membershipRepo membership.Repository
	paymentRepo    payment.Repository
	carts          CartBuilder
	urls           RegistrationURLProvider
	publisher      events.EventPublisher
	now            func() time.Time
	logger         logger.Interface
}

func NewCreateRenewalPaymentUseCase(
	txMgr db.Runner,
	membershipRepo membership.Repository,
	paymentRepo payment.Repository,
	carts CartBuilder,
	urls RegistrationURLProvider,
	publisher events.EventPublisher,
	logger logger.Interface,
) *CreateRenewalPaymentUseCase {
	return &CreateRenewalPaymentUseCase{
		txMgr:          txMgr,
		membershipRepo: membershipRepo,
		paymentRepo:    paymentRepo,
		carts:          carts,
		urls:           urls,
		publisher:      publisher,
		now:            biztime.NowUTC,
		logger:         logger,
	}
}

// Execute creates the pending renewal payment of a membership and puts the
// membership on hold. It reports false when the membership no longer exists
// and true when a pending payment is already waiting.
func (uc *CreateRenewalPaymentUseCase) Execute(ctx context.Context, task RenewalPaymentTask) (bool, error) {
	m, err := uc.membershipRepo.GetByID(ctx, task.MembershipID)
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			uc.logger.Warnw("membership for renewal payment not found", "membership_id", task.MembershipID)
			return false, nil
		}
		return false, fmt.Errorf("failed to load membership: %w", err)
	}

	pending, err := uc.paymentRepo.GetLastPendingByMembership(ctx, m.ID())
	if err != nil {
		return false, fmt.Errorf("failed to look up pending payment: %w", err)
	}
	if pending != nil {
		uc.logger.Debugw("membership already has a pending payment",
			"membership_id", m.ID(),
			"payment_hash", pending.Hash(),
		)
		return true, nil
	}

	now := uc.now()
	p, err := uc.newRenewalPayment(ctx, m, task.Trial, now)
	if err != nil {
		uc.logger.Errorw("failed to build renewal payment", "error", err, "membership_id", m.ID())
		return false, err
	}

	err = uc.txMgr.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.paymentRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to save renewal payment: %w", err)
		}
		if err := m.SetStatus(vo.StatusOnHold, now); err != nil {
			return err
		}
		if err := uc.membershipRepo.Update(ctx, m); err != nil {
			return fmt.Errorf("failed to put membership on hold: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to create renewal payment", "error", err, "membership_id", m.ID())
		return false, err
	}

	url := payment.BuildPaymentURL(uc.urls.RegistrationURL(), p.Hash())
	if err := uc.publisher.Publish(payment.NewRenewalPaymentCreatedEvent(p, url, now)); err != nil {
		uc.logger.Warnw("failed to publish renewal payment event", "error", err, "payment_hash", p.Hash())
	}

	uc.logger.Infow("renewal payment created",
		"membership_id", m.ID(),
		"payment_hash", p.Hash(),
		"total", p.Total().StringFixed(2),
		"trial", task.Trial,
	)
	return true, nil
}

// newRenewalPayment prices the next cycle of m. The first payment after a
// trial keeps one-off items such as signup fees.
func (uc *CreateRenewalPaymentUseCase) newRenewalPayment(ctx context.Context, m *membership.Membership, trial bool, now time.Time) (*payment.Payment, error) {
	in := checkout.Input{Type: checkout.CartTypeRenewal, Membership: m}
	if trial {
		in = checkout.Input{
			Type:         checkout.CartTypeNew,
			Membership:   m,
			HadTrial:     true,
			DiscountCode: m.DiscountCode(),
		}
	}

	cart, err := uc.carts.Build(ctx, in, now)
	if err != nil {
		return nil, fmt.Errorf("failed to build renewal cart: %w", err)
	}
	if !cart.IsValid() {
		return nil, fmt.Errorf("invalid renewal cart: %s", cart.Errors()[0].Message)
	}

	p, err := cart.ToPaymentData().NewPayment(m.CustomerID(), now)
	if err != nil {
		return nil, err
	}
	p.SetMembership(m.ID())
	p.SetGateway(m.Gateway(), "", now)
	if !trial {
		p.RemoveNonRecurringItems()
	}
	return p, nil
}
