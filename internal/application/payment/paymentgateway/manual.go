package paymentgateway

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/membership"
	membershipvo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/services/markdown"
)

const ManualGatewayID = "manual"

// ManualGateway records payments that an operator confirms by hand, such as
// bank transfers. It never talks to an external processor.
type ManualGateway struct {
	store        Store
	renderer     *markdown.Renderer
	instructions string
	now          func() time.Time
	logger       logger.Interface
}

func NewManualGateway(store Store, instructions string, renderer *markdown.Renderer, logger logger.Interface) *ManualGateway {
	return &ManualGateway{
		store:        store,
		renderer:     renderer,
		instructions: instructions,
		now:          biztime.NowUTC,
		logger:       logger,
	}
}

var _ Gateway = (*ManualGateway)(nil)

func (g *ManualGateway) ID() string                      { return ManualGatewayID }
func (g *ManualGateway) SupportsRecurringPayments() bool { return false }
func (g *ManualGateway) SupportsFreeTrials() bool        { return false }

func (g *ManualGateway) ProcessCheckout(
	ctx context.Context,
	p *payment.Payment,
	m *membership.Membership,
	c *customer.Customer,
	cart *checkout.Cart,
	cartType checkout.CartType,
) error {
	now := g.now()

	switch cartType {
	case checkout.CartTypeDowngrade:
		data := cart.ToMembershipData(now)
		m.ScheduleSwap(data.Terms, m.NextSwapDate(now), now)
		if err := g.holdMembership(ctx, m, now); err != nil {
			return err
		}
	case checkout.CartTypeUpgrade, checkout.CartTypeAddon:
		data := cart.ToMembershipData(now)
		m.Swap(data.Terms, now)
		if err := g.holdMembership(ctx, m, now); err != nil {
			return err
		}
	}

	if p.Total().IsZero() {
		if err := p.SetStatus(paymentvo.PaymentStatusCompleted, now); err != nil {
			return err
		}
		if err := g.store.SavePayment(ctx, p); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if cart.HasTrial() {
			if err := m.SetStatus(membershipvo.StatusTrialing, now); err != nil {
				return err
			}
			if err := g.store.SaveMembership(ctx, m); err != nil {
				return fmt.Errorf("failed to save membership: %w", err)
			}
		}
	}

	g.logger.Debugw("manual checkout processed",
		"payment_hash", p.Hash(),
		"membership_id", m.ID(),
		"cart_type", string(cartType),
	)
	return nil
}

func (g *ManualGateway) holdMembership(ctx context.Context, m *membership.Membership, now time.Time) error {
	if err := m.SetStatus(membershipvo.StatusOnHold, now); err != nil {
		return err
	}
	if err := g.store.SaveMembership(ctx, m); err != nil {
		return fmt.Errorf("failed to save membership: %w", err)
	}
	return nil
}

func (g *ManualGateway) ProcessCancellation(ctx context.Context, m *membership.Membership, c *customer.Customer) error {
	return nil
}

func (g *ManualGateway) ProcessRefund(ctx context.Context, amount decimal.Decimal, p *payment.Payment, m *membership.Membership, c *customer.Customer) error {
	if _, err := p.Refund(amount, nil, g.now()); err != nil {
		return err
	}
	if err := g.store.SavePayment(ctx, p); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (g *ManualGateway) ProcessMembershipUpdate(ctx context.Context, m *membership.Membership, c *customer.Customer) error {
	return nil
}

func (g *ManualGateway) AmountUpdateMessage(customerView bool) string {
	if customerView {
		return "You will be charged the new amount on your next invoice."
	}
	return "The customer will be charged the new amount on their next invoice."
}

// Instructions renders the configured payment instructions as sanitized HTML.
func (g *ManualGateway) Instructions() (string, error) {
	if g.instructions == "" {
		return "", nil
	}
	return g.renderer.ToHTML(g.instructions)
}
