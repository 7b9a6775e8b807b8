package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/refund"
	"github.com/stripe/stripe-go/v81/subscription"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/application/payment/paymentgateway"
	domaincustomer "github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/membership"
	membershipvo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/config"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

const StripeGatewayID = "stripe"

// Currencies Stripe charges in whole units.
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true,
	"KRW": true, "MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// StripeGateway charges payments through Stripe PaymentIntents.
type StripeGateway struct {
	config config.StripeGatewayConfig
	store  paymentgateway.Store
	now    func() time.Time
	logger logger.Interface
}

func NewStripeGateway(cfg config.StripeGatewayConfig, store paymentgateway.Store, logger logger.Interface) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(cfg.SecretKey, "sk_") && !strings.HasPrefix(cfg.SecretKey, "rk_") {
		return nil, fmt.Errorf("stripe: secret key has an unexpected format")
	}

	stripe.Key = cfg.SecretKey

	return &StripeGateway{
		config: cfg,
		store:  store,
		now:    biztime.NowUTC,
		logger: logger.With("gateway", StripeGatewayID),
	}, nil
}

var (
	_ paymentgateway.Gateway         = (*StripeGateway)(nil)
	_ paymentgateway.WebhookVerifier = (*StripeGateway)(nil)
)

func (g *StripeGateway) ID() string                      { return StripeGatewayID }
func (g *StripeGateway) SupportsRecurringPayments() bool { return true }
func (g *StripeGateway) SupportsFreeTrials() bool        { return true }

func (g *StripeGateway) ProcessCheckout(
	ctx context.Context,
	p *payment.Payment,
	m *membership.Membership,
	c *domaincustomer.Customer,
	cart *checkout.Cart,
	cartType checkout.CartType,
) error {
	now := g.now()

	if err := g.ensureCustomer(ctx, m, c, now); err != nil {
		return err
	}

	switch cartType {
	case checkout.CartTypeDowngrade:
		m.ScheduleSwap(cart.ToMembershipData(now).Terms, m.NextSwapDate(now), now)
	case checkout.CartTypeUpgrade, checkout.CartTypeAddon:
		m.Swap(cart.ToMembershipData(now).Terms, now)
	}
	if cartType != checkout.CartTypeNew {
		if err := g.store.SaveMembership(ctx, m); err != nil {
			return fmt.Errorf("failed to save membership: %w", err)
		}
	}

	if !p.Total().IsPositive() {
		return g.completeFreeCheckout(ctx, p, m, cart, now)
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(toMinorUnits(p.Total(), p.Currency())),
		Currency:    stripe.String(strings.ToLower(p.Currency())),
		Customer:    stripe.String(m.GatewayCustomerID()),
		Description: stripe.String("Payment " + p.Hash()),
		Metadata: map[string]string{
			"payment_hash":  p.Hash(),
			"membership_id": strconv.FormatUint(uint64(m.ID()), 10),
		},
	}
	if cart.IsRecurring() {
		params.SetupFutureUsage = stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession))
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		g.logger.Errorw("failed to create stripe payment intent",
			"payment_hash", p.Hash(),
			"error", err,
		)
		return fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	p.SetGateway(StripeGatewayID, pi.ID, now)
	if err := g.store.SavePayment(ctx, p); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}

	g.logger.Infow("created stripe payment intent",
		"payment_hash", p.Hash(),
		"payment_intent", pi.ID,
		"amount", p.Total().StringFixed(2),
	)
	return nil
}

func (g *StripeGateway) ensureCustomer(ctx context.Context, m *membership.Membership, c *domaincustomer.Customer, now time.Time) error {
	if m.GatewayCustomerID() != "" && m.Gateway() == StripeGatewayID {
		return nil
	}
	if c == nil {
		return fmt.Errorf("stripe: customer is required")
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(c.Email()),
		Name:  stripe.String(c.Username()),
	}
	params.Metadata = map[string]string{
		"customer_id": strconv.FormatUint(uint64(c.ID()), 10),
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		g.logger.Errorw("failed to create stripe customer",
			"customer_id", c.ID(),
			"error", err,
		)
		return fmt.Errorf("stripe: failed to create customer: %w", err)
	}

	m.SetGateway(StripeGatewayID, cust.ID, m.GatewaySubscriptionID(), now)
	if err := g.store.SaveMembership(ctx, m); err != nil {
		return fmt.Errorf("failed to save membership: %w", err)
	}
	return nil
}

func (g *StripeGateway) completeFreeCheckout(ctx context.Context, p *payment.Payment, m *membership.Membership, cart *checkout.Cart, now time.Time) error {
	if err := p.SetStatus(paymentvo.PaymentStatusCompleted, now); err != nil {
		return err
	}
	if err := g.store.SavePayment(ctx, p); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	if !cart.HasTrial() {
		return nil
	}
	if err := m.SetStatus(membershipvo.StatusTrialing, now); err != nil {
		return err
	}
	if err := g.store.SaveMembership(ctx, m); err != nil {
		return fmt.Errorf("failed to save membership: %w", err)
	}
	return nil
}

func (g *StripeGateway) ProcessCancellation(ctx context.Context, m *membership.Membership, c *domaincustomer.Customer) error {
	if m.GatewaySubscriptionID() == "" {
		return nil
	}

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	sub, err := subscription.Cancel(m.GatewaySubscriptionID(), params)
	if err != nil {
		g.logger.Errorw("failed to cancel stripe subscription",
			"subscription_id", m.GatewaySubscriptionID(),
			"error", err,
		)
		return fmt.Errorf("stripe: failed to cancel subscription: %w", err)
	}

	g.logger.Infow("cancelled stripe subscription",
		"subscription_id", sub.ID,
		"status", string(sub.Status),
	)
	return nil
}

func (g *StripeGateway) ProcessRefund(ctx context.Context, amount decimal.Decimal, p *payment.Payment, m *membership.Membership, c *domaincustomer.Customer) error {
	if amount.IsNegative() {
		return payment.ErrInvalidRefundAmount
	}

	if p.GatewayPaymentID() != "" {
		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(p.GatewayPaymentID()),
		}
		if amount.IsPositive() {
			params.Amount = stripe.Int64(toMinorUnits(amount, p.Currency()))
		}
		params.Context = ctx

		r, err := refund.New(params)
		if err != nil {
			g.logger.Errorw("failed to create stripe refund",
				"payment_hash", p.Hash(),
				"error", err,
			)
			return fmt.Errorf("stripe: failed to create refund: %w", err)
		}
		g.logger.Infow("created stripe refund",
			"payment_hash", p.Hash(),
			"refund_id", r.ID,
		)
	}

	if _, err := p.Refund(amount, nil, g.now()); err != nil {
		return err
	}
	if err := g.store.SavePayment(ctx, p); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (g *StripeGateway) ProcessMembershipUpdate(ctx context.Context, m *membership.Membership, c *domaincustomer.Customer) error {
	if m.GatewaySubscriptionID() == "" {
		return fmt.Errorf("stripe: membership %d has no subscription", m.ID())
	}
	return nil
}

func (g *StripeGateway) AmountUpdateMessage(customerView bool) string {
	if customerView {
		return "Your card on file will be charged the new amount at the next renewal."
	}
	return "Stripe will charge the customer's card the new amount at the next renewal."
}

// ParseWebhook verifies the Stripe-Signature header and decodes the events
// billing reacts to. Other event types come back as WebhookIgnored.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*paymentgateway.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.WebhookSecret,
		webhook.ConstructEventOptions{
			Tolerance:                webhook.DefaultTolerance,
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymentgateway.ErrInvalidWebhookSignature, err)
	}

	out := &paymentgateway.WebhookEvent{
		ID:      event.ID,
		Gateway: StripeGatewayID,
		Type:    paymentgateway.WebhookIgnored,
		RawType: string(event.Type),
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
		}
		out.Type = paymentgateway.WebhookPaymentSucceeded
		out.GatewayPaymentID = pi.ID
	case stripe.EventTypeChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal charge: %w", err)
		}
		if ch.PaymentIntent == nil || ch.PaymentIntent.ID == "" {
			return out, nil
		}
		out.Type = paymentgateway.WebhookPaymentRefunded
		out.GatewayPaymentID = ch.PaymentIntent.ID
		out.AmountRefunded = fromMinorUnits(ch.AmountRefunded, string(ch.Currency))
	}

	return out, nil
}

func toMinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromMinorUnits(amount int64, currency string) decimal.Decimal {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return decimal.NewFromInt(amount)
	}
	return decimal.New(amount, -2)
}
