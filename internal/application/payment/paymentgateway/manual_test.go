package paymentgateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/domain/discount"
	"github.com/siteforge/siteforge/internal/domain/membership"
	membershipvo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/product"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/services/markdown"
)

var now = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SavePayment(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockStore) SaveMembership(ctx context.Context, ms *membership.Membership) error {
	args := m.Called(ctx, ms)
	return args.Error(0)
}

type catalog map[string]*product.Product

func (c catalog) GetByID(_ context.Context, id uint) (*product.Product, error) {
	for _, p := range c {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, product.ErrProductNotFound
}

func (c catalog) GetBySlug(_ context.Context, slug string) (*product.Product, error) {
	if p, ok := c[slug]; ok {
		return p, nil
	}
	return nil, product.ErrProductNotFound
}

type noDiscounts struct{}

func (noDiscounts) GetByCode(context.Context, string) (*discount.DiscountCode, error) {
	return nil, discount.ErrDiscountNotFound
}

func monthly() shared.Period {
	return shared.Period{Duration: 1, Unit: shared.DurationUnitMonth}
}

func newCatalog(t *testing.T) catalog {
	t.Helper()
	c := catalog{}
	for i, a := range []product.Attributes{
		{Slug: "basic", Name: "Basic", Type: product.TypePlan, Currency: "USD", Amount: decimal.NewFromInt(10), Recurring: true, Period: monthly(), Active: true},
		{Slug: "pro", Name: "Pro", Type: product.TypePlan, Currency: "USD", Amount: decimal.NewFromInt(25), Recurring: true, Period: monthly(), Active: true},
		{Slug: "free", Name: "Free", Type: product.TypePlan, PricingType: product.PricingFree, Currency: "USD", Active: true},
		{Slug: "trial", Name: "Trial", Type: product.TypePlan, Currency: "USD", Amount: decimal.NewFromInt(10), Recurring: true, Period: monthly(), Active: true,
			Trial: shared.Period{Duration: 7, Unit: shared.DurationUnitDay}},
	} {
		p, err := product.NewProduct(a, now)
		require.NoError(t, err)
		p.SetID(uint(i + 1))
		c[a.Slug] = p
	}
	return c
}

func buildCart(t *testing.T, in checkout.Input) *checkout.Cart {
	t.Helper()
	b := checkout.NewBuilder(newCatalog(t), noDiscounts{}, checkout.ConfigTaxRates{}, "USD", logger.NewNop())
	cart, err := b.Build(context.Background(), in, now)
	require.NoError(t, err)
	require.True(t, cart.IsValid(), "%v", cart.Errors())
	return cart
}

func newMembership(t *testing.T, status membershipvo.MembershipStatus) *membership.Membership {
	t.Helper()
	m, err := membership.NewMembership(1, membership.Terms{
		PlanID: 2, Currency: "USD", Period: monthly(), Amount: decimal.NewFromInt(25), Recurring: true,
	}, now)
	require.NoError(t, err)
	require.NoError(t, m.SetID(5))
	exp := now.AddDate(0, 0, 20)
	m.ApplyDates(membership.DateOverrides{Expiration: &exp}, now)
	require.NoError(t, m.SetStatus(status, now))
	return m
}

func paymentFor(t *testing.T, cart *checkout.Cart) *payment.Payment {
	t.Helper()
	p, err := cart.ToPaymentData().NewPayment(1, now)
	require.NoError(t, err)
	return p
}

func newManual(store Store) *ManualGateway {
	g := NewManualGateway(store, "Wire the amount to **IBAN** PT50 0000.", markdown.NewRenderer(), logger.NewNop())
	g.now = func() time.Time { return now }
	return g
}

func TestManualGateway_Capabilities(t *testing.T) {
	g := newManual(&mockStore{})
	assert.Equal(t, "manual", g.ID())
	assert.False(t, g.SupportsRecurringPayments())
	assert.False(t, g.SupportsFreeTrials())
	assert.Contains(t, g.AmountUpdateMessage(true), "next invoice")
}

func TestManualGateway_NewCheckoutLeavesPaidCartPending(t *testing.T) {
	store := &mockStore{}
	g := newManual(store)

	cart := buildCart(t, checkout.Input{Products: []string{"basic"}})
	p := paymentFor(t, cart)
	m := newMembership(t, membershipvo.StatusPending)

	require.NoError(t, g.ProcessCheckout(context.Background(), p, m, nil, cart, checkout.CartTypeNew))

	assert.Equal(t, paymentvo.PaymentStatusPending, p.Status())
	assert.Equal(t, membershipvo.StatusPending, m.Status())
	store.AssertNotCalled(t, "SavePayment", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SaveMembership", mock.Anything, mock.Anything)
}

func TestManualGateway_FreeCheckoutCompletesPayment(t *testing.T) {
	store := &mockStore{}
	g := newManual(store)

	cart := buildCart(t, checkout.Input{Products: []string{"free"}})
	p := paymentFor(t, cart)
	m := newMembership(t, membershipvo.StatusPending)
	store.On("SavePayment", mock.Anything, p).Return(nil).Once()

	require.NoError(t, g.ProcessCheckout(context.Background(), p, m, nil, cart, checkout.CartTypeNew))

	assert.Equal(t, paymentvo.PaymentStatusCompleted, p.Status())
	store.AssertExpectations(t)
}

func TestManualGateway_TrialCheckoutStartsTrial(t *testing.T) {
	store := &mockStore{}
	g := newManual(store)

	cart := buildCart(t, checkout.Input{Products: []string{"trial"}})
	require.True(t, cart.HasTrial())
	p := paymentFor(t, cart)
	m := newMembership(t, membershipvo.StatusPending)
	store.On("SavePayment", mock.Anything, p).Return(nil).Once()
	store.On("SaveMembership", mock.Anything, m).Return(nil).Once()

	require.NoError(t, g.ProcessCheckout(context.Background(), p, m, nil, cart, checkout.CartTypeNew))

	assert.Equal(t, membershipvo.StatusTrialing, m.Status())
	store.AssertExpectations(t)
}

func TestManualGateway_UpgradeSwapsImmediately(t *testing.T) {
	store := &mockStore{}
	g := newManual(store)

	m := newMembership(t, membershipvo.StatusActive)
	cart := buildCart(t, checkout.Input{Type: checkout.CartTypeUpgrade, Membership: m, Products: []string{"pro"}})
	p := paymentFor(t, cart)
	store.On("SaveMembership", mock.Anything, m).Return(nil).Once()

	require.NoError(t, g.ProcessCheckout(context.Background(), p, m, nil, cart, checkout.CartTypeUpgrade))

	assert.Equal(t, membershipvo.StatusOnHold, m.Status())
	assert.Equal(t, uint(2), m.PlanID())
	assert.Nil(t, m.ScheduledSwap())
	store.AssertExpectations(t)
}

func TestManualGateway_DowngradeSchedulesSwap(t *testing.T) {
	store := &mockStore{}
	g := newManual(store)

	m := newMembership(t, membershipvo.StatusActive)
	cart := buildCart(t, checkout.Input{Type: checkout.CartTypeDowngrade, Membership: m, Products: []string{"basic"}})
	p := paymentFor(t, cart)
	store.On("SaveMembership", mock.Anything, m).Return(nil).Once()

	require.NoError(t, g.ProcessCheckout(context.Background(), p, m, nil, cart, checkout.CartTypeDowngrade))

	require.NotNil(t, m.ScheduledSwap())
	assert.Equal(t, uint(1), m.ScheduledSwap().Terms.PlanID)
	assert.Equal(t, *m.DateExpiration(), m.ScheduledSwap().Date)
	assert.Equal(t, uint(2), m.PlanID(), "current plan is kept until the swap date")
	store.AssertExpectations(t)
}

func TestManualGateway_SaveFailureIsReturned(t *testing.T) {
	store := &mockStore{}
	g := newManual(store)

	m := newMembership(t, membershipvo.StatusActive)
	cart := buildCart(t, checkout.Input{Type: checkout.CartTypeAddon, Membership: m, Products: []string{"pro"}})
	p := paymentFor(t, cart)
	store.On("SaveMembership", mock.Anything, m).Return(errors.New("db down"))

	err := g.ProcessCheckout(context.Background(), p, m, nil, cart, checkout.CartTypeAddon)
	assert.ErrorContains(t, err, "db down")
}

func TestManualGateway_ProcessRefund(t *testing.T) {
	store := &mockStore{}
	g := newManual(store)

	cart := buildCart(t, checkout.Input{Products: []string{"basic"}})
	p := paymentFor(t, cart)
	store.On("SavePayment", mock.Anything, p).Return(nil).Once()

	require.NoError(t, g.ProcessRefund(context.Background(), decimal.NewFromInt(4), p, nil, nil))

	assert.Equal(t, paymentvo.PaymentStatusPartiallyRefunded, p.Status())
	assert.True(t, decimal.NewFromInt(6).Equal(p.Total()))
	store.AssertExpectations(t)
}

func TestManualGateway_Instructions(t *testing.T) {
	html, err := newManual(&mockStore{}).Instructions()
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>IBAN</strong>")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(newManual(&mockStore{}))

	g, err := r.Get("manual")
	require.NoError(t, err)
	assert.Equal(t, "manual", g.ID())

	_, err = r.Get("paypal")
	assert.ErrorIs(t, err, ErrGatewayNotFound)
	assert.Equal(t, []string{"manual"}, r.IDs())
}
