package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/siteforge/siteforge/internal/application/payment/paymentgateway"
	"github.com/siteforge/siteforge/internal/domain/membership"
	membershipvo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/shared/events"
	"github.com/siteforge/siteforge/internal/domain/site"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/db"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// HandleWebhookUseCase applies verified gateway notifications to payments
// and memberships.
type HandleWebhookUseCase struct {
	txMgr          db.Runner
	paymentRepo    payment.Repository
	membershipRepo membership.Repository
	siteRepo       site.Repository
	settings       BillingSettings
	verifiers      map[string]paymentgateway.WebhookVerifier
	publisher      events.EventPublisher
	now            func() time.Time
	logger         logger.Interface
}

func NewHandleWebhookUseCase(
	txMgr db.Runner,
	paymentRepo payment.Repository,
	membershipRepo membership.Repository,
	siteRepo site.Repository,
	settings BillingSettings,
	publisher events.EventPublisher,
	logger logger.Interface,
	verifiers ...paymentgateway.WebhookVerifier,
) *HandleWebhookUseCase {
	byID := make(map[string]paymentgateway.WebhookVerifier, len(verifiers))
	for _, v := range verifiers {
		byID[v.ID()] = v
	}
	return &HandleWebhookUseCase{
		txMgr:          txMgr,
		paymentRepo:    paymentRepo,
		membershipRepo: membershipRepo,
		siteRepo:       siteRepo,
		settings:       settings,
		verifiers:      byID,
		publisher:      publisher,
		now:            biztime.NowUTC,
		logger:         logger,
	}
}

// Execute verifies payload for gatewayID and applies it. Events for unknown
// payments are acknowledged so the gateway stops retrying them.
func (uc *HandleWebhookUseCase) Execute(ctx context.Context, gatewayID string, payload []byte, signature string) error {
	verifier, ok := uc.verifiers[gatewayID]
	if !ok {
		return apperrors.NewNotFoundError("unknown payment gateway")
	}

	evt, err := verifier.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, paymentgateway.ErrInvalidWebhookSignature) {
			uc.logger.Warnw("rejected webhook signature", "gateway", gatewayID, "error", err)
			return apperrors.NewBadRequestError("invalid webhook signature")
		}
		uc.logger.Errorw("failed to parse webhook", "error", err, "gateway", gatewayID)
		return apperrors.NewBadRequestError("invalid webhook payload").WithCause(err)
	}

	if evt.Type == paymentgateway.WebhookIgnored {
		uc.logger.Debugw("ignored webhook event", "gateway", gatewayID, "event_type", evt.RawType)
		return nil
	}

	p, err := uc.paymentRepo.GetByGatewayPaymentID(ctx, evt.Gateway, evt.GatewayPaymentID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			uc.logger.Warnw("webhook for unknown payment",
				"gateway", gatewayID,
				"gateway_payment_id", evt.GatewayPaymentID,
				"event_id", evt.ID,
			)
			return nil
		}
		return fmt.Errorf("failed to load payment: %w", err)
	}

	switch evt.Type {
	case paymentgateway.WebhookPaymentSucceeded:
		return uc.handleSucceeded(ctx, p, evt)
	case paymentgateway.WebhookPaymentRefunded:
		return uc.handleRefunded(ctx, p, evt)
	}
	return nil
}

func (uc *HandleWebhookUseCase) handleSucceeded(ctx context.Context, p *payment.Payment, evt *paymentgateway.WebhookEvent) error {
	if !p.Status().IsPayable() {
		uc.logger.Infow("payment already processed", "payment_hash", p.Hash(), "status", p.Status())
		return nil
	}

	now := uc.now()
	err := uc.txMgr.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := p.SetStatus(paymentvo.PaymentStatusCompleted, now); err != nil {
			return err
		}
		if _, err := uc.settings.AssignInvoiceNumber(ctx, p); err != nil {
			return err
		}
		if err := uc.paymentRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		if p.MembershipID() == 0 {
			return nil
		}
		return uc.activateMembership(ctx, p.MembershipID(), now)
	})
	if err != nil {
		uc.logger.Errorw("failed to complete payment from webhook",
			"error", err,
			"payment_hash", p.Hash(),
			"event_id", evt.ID,
		)
		return err
	}

	if err := uc.publisher.Publish(payment.NewPaymentCompletedEvent(p, now)); err != nil {
		uc.logger.Warnw("failed to publish payment completed event", "error", err, "payment_hash", p.Hash())
	}
	uc.logger.Infow("payment completed from webhook", "payment_hash", p.Hash(), "event_id", evt.ID)
	return nil
}

// activateMembership activates a new membership or renews a returning one,
// then publishes its pending site.
func (uc *HandleWebhookUseCase) activateMembership(ctx context.Context, membershipID uint, now time.Time) error {
	m, err := uc.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			uc.logger.Warnw("paid membership not found", "membership_id", membershipID)
			return nil
		}
		return fmt.Errorf("failed to load membership: %w", err)
	}

	switch m.Status() {
	case membershipvo.StatusPending:
		err = m.SetStatus(membershipvo.StatusActive, now)
	case membershipvo.StatusActive:
		return nil
	default:
		m.SetSkipValidation(true)
		err = m.Renew(now)
	}
	if err != nil {
		return err
	}
	if err := uc.membershipRepo.Update(ctx, m); err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}

	s, err := uc.siteRepo.GetPendingByMembership(ctx, m.ID())
	if err != nil {
		return fmt.Errorf("failed to load pending site: %w", err)
	}
	if s == nil {
		return nil
	}
	blogID, err := uc.siteRepo.NextBlogID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate blog ID: %w", err)
	}
	if err := s.Publish(blogID, now); err != nil {
		return err
	}
	return uc.siteRepo.Update(ctx, s)
}

// handleRefunded records refunds made at the gateway. The event carries the
// cumulative refunded amount, so only the part not recorded yet is applied.
func (uc *HandleWebhookUseCase) handleRefunded(ctx context.Context, p *payment.Payment, evt *paymentgateway.WebhookEvent) error {
	delta := evt.AmountRefunded.Sub(p.RefundTotal().Abs())
	if !delta.IsPositive() {
		uc.logger.Debugw("refund already recorded", "payment_hash", p.Hash(), "event_id", evt.ID)
		return nil
	}

	now := uc.now()
	err := uc.txMgr.RunInTransaction(ctx, func(ctx context.Context) error {
		cancel, err := p.Refund(delta, nil, now)
		if err != nil {
			return err
		}
		if err := uc.paymentRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		if !cancel || p.MembershipID() == 0 {
			return nil
		}

		m, err := uc.membershipRepo.GetByID(ctx, p.MembershipID())
		if err != nil {
			if errors.Is(err, membership.ErrMembershipNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load membership: %w", err)
		}
		if err := m.Cancel(now); err != nil {
			return err
		}
		return uc.membershipRepo.Update(ctx, m)
	})
	if err != nil {
		uc.logger.Errorw("failed to record refund from webhook",
			"error", err,
			"payment_hash", p.Hash(),
			"event_id", evt.ID,
		)
		return err
	}

	if err := uc.publisher.Publish(payment.NewPaymentRefundedEvent(p, now)); err != nil {
		uc.logger.Warnw("failed to publish payment refunded event", "error", err, "payment_hash", p.Hash())
	}
	uc.logger.Infow("refund recorded from webhook",
		"payment_hash", p.Hash(),
		"amount", delta.StringFixed(2),
		"event_id", evt.ID,
	)
	return nil
}
