package usecases

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/application/payment/paymentgateway"
	"github.com/siteforge/siteforge/internal/application/testutil"
	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/discount"
	"github.com/siteforge/siteforge/internal/domain/membership"
	vo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/product"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

var checkNow = time.Date(2026, 5, 20, 14, 0, 0, 0, time.UTC)

func monthly() shared.Period {
	return shared.Period{Duration: 1, Unit: shared.DurationUnitMonth}
}

type membershipOpts struct {
	status    vo.MembershipStatus
	autoRenew bool
	exp       *time.Time
	trialEnd  *time.Time
	gateway   string
	discount  string
}

func at(t time.Time) *time.Time { return &t }

func newMembership(t *testing.T, id uint, o membershipOpts) *membership.Membership {
	t.Helper()
	m, err := membership.ReconstructMembership(membership.Snapshot{
		ID:         id,
		Hash:       fmt.Sprintf("mem_%04d", id),
		CustomerID: 1,
		Terms: membership.Terms{
			PlanID:    1,
			Currency:  "USD",
			Period:    monthly(),
			Amount:    decimal.NewFromInt(29),
			Recurring: true,
		},
		Status:         o.status,
		AutoRenew:      o.autoRenew,
		DateExpiration: o.exp,
		DateTrialEnd:   o.trialEnd,
		Gateway:        o.gateway,
		DiscountCode:   o.discount,
		Version:        1,
	})
	require.NoError(t, err)
	return m
}

func TestCheckMemberships_EnqueuesPerMembership(t *testing.T) {
	repo := testutil.NewMembershipRepository()
	yesterday := time.Date(2026, 5, 19, 0, 0, 0, 0, time.UTC)

	repo.Add(newMembership(t, 1, membershipOpts{status: vo.StatusActive, exp: at(checkNow.AddDate(0, 0, 2))}))
	repo.Add(newMembership(t, 2, membershipOpts{status: vo.StatusActive, exp: at(checkNow.AddDate(0, 0, 5))}))
	repo.Add(newMembership(t, 3, membershipOpts{status: vo.StatusActive, autoRenew: true, exp: at(checkNow.AddDate(0, 0, 1))}))
	repo.Add(newMembership(t, 4, membershipOpts{status: vo.StatusActive, exp: at(yesterday)}))
	repo.Add(newMembership(t, 5, membershipOpts{status: vo.StatusTrialing, trialEnd: at(checkNow.Add(-4 * time.Hour))}))
	repo.Add(newMembership(t, 6, membershipOpts{status: vo.StatusTrialing, trialEnd: at(checkNow.Add(-time.Hour))}))
	repo.Add(newMembership(t, 7, membershipOpts{status: vo.StatusOnHold, exp: at(checkNow.AddDate(0, 0, -4))}))
	repo.Add(newMembership(t, 8, membershipOpts{status: vo.StatusActive, exp: at(checkNow.AddDate(0, 0, -3))}))
	repo.Add(newMembership(t, 9, membershipOpts{status: vo.StatusCancelled, exp: at(checkNow.AddDate(0, 0, -10))}))
	repo.Add(newMembership(t, 10, membershipOpts{status: vo.StatusActive}))

	queue := &testutil.Queue{}
	uc := NewCheckMembershipsUseCase(repo, queue, CheckConfig{
		RenewalDaysBeforeExpiring: 3,
		TrialCheckOffset:          3 * time.Hour,
		GracePeriodDays:           3,
	}, logger.NewNop())
	uc.now = func() time.Time { return checkNow }

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.RenewalsQueued)
	assert.Equal(t, 1, result.TrialsQueued)
	assert.Equal(t, 2, result.ExpirationsQueued)

	assert.Equal(t, []testutil.QueuedTask{
		{Action: ActionCreateRenewalPayment, Payload: RenewalPaymentTask{MembershipID: 1}},
		{Action: ActionCreateRenewalPayment, Payload: RenewalPaymentTask{MembershipID: 4}},
		{Action: ActionCreateRenewalPayment, Payload: RenewalPaymentTask{MembershipID: 5, Trial: true}},
		{Action: ActionMarkMembershipExpired, Payload: ExpireMembershipTask{MembershipID: 7}},
		{Action: ActionMarkMembershipExpired, Payload: ExpireMembershipTask{MembershipID: 8}},
	}, queue.Tasks)
}

func TestCheckMemberships_EnqueueFailureIsCounted(t *testing.T) {
	repo := testutil.NewMembershipRepository()
	repo.Add(newMembership(t, 1, membershipOpts{status: vo.StatusActive, exp: at(checkNow.AddDate(0, 0, 1))}))

	queue := &testutil.Queue{Err: errors.New("redis down")}
	uc := NewCheckMembershipsUseCase(repo, queue, CheckConfig{RenewalDaysBeforeExpiring: 3, GracePeriodDays: 3}, logger.NewNop())
	uc.now = func() time.Time { return checkNow }

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Zero(t, result.RenewalsQueued)
}

type staticURL string

func (u staticURL) RegistrationURL() string { return string(u) }

type renewalFixture struct {
	uc          *CreateRenewalPaymentUseCase
	memberships *testutil.MembershipRepository
	payments    *testutil.PaymentRepository
	discounts   *testutil.DiscountRepository
	publisher   *testutil.Publisher
}

func newRenewalDiscount(t *testing.T, id uint, attrs discount.Attributes, uses int) *discount.DiscountCode {
	t.Helper()
	d, err := discount.NewDiscountCode(attrs, checkNow)
	require.NoError(t, err)
	return discount.ReconstructDiscountCode(id, d.Attributes(), uses, checkNow, checkNow)
}

func newRenewalFixture(t *testing.T) *renewalFixture {
	t.Helper()
	plan, err := product.NewProduct(product.Attributes{
		Slug: "starter", Name: "Starter", Type: product.TypePlan, Currency: "USD",
		Amount: decimal.NewFromInt(29), SetupFee: decimal.NewFromInt(10),
		Recurring: true, Period: monthly(), Active: true,
	}, checkNow)
	require.NoError(t, err)
	plan.SetID(1)

	discounts := testutil.NewDiscountRepository(
		newRenewalDiscount(t, 1, discount.Attributes{
			Code: "LAUNCH", Value: decimal.NewFromInt(10), Type: paymentvo.DiscountTypeAbsolute,
			ApplyToRenewals: true, DateExpiration: at(checkNow.AddDate(0, -1, 0)),
		}, 0),
		newRenewalDiscount(t, 2, discount.Attributes{
			Code: "BETA", Value: decimal.NewFromInt(50), Type: paymentvo.DiscountTypePercentage,
			Active: true, MaxUses: 1,
		}, 1),
		newRenewalDiscount(t, 3, discount.Attributes{
			Code: "FOREVER", Value: decimal.NewFromInt(100), Type: paymentvo.DiscountTypePercentage,
			Active: true, ApplyToRenewals: true,
		}, 0),
	)

	f := &renewalFixture{
		memberships: testutil.NewMembershipRepository(),
		payments:    testutil.NewPaymentRepository(),
		discounts:   discounts,
		publisher:   &testutil.Publisher{},
	}
	builder := checkout.NewBuilder(testutil.Catalog{1: plan}, f.discounts, nil, "USD", logger.NewNop())
	f.uc = NewCreateRenewalPaymentUseCase(&testutil.Tx{}, f.memberships, f.payments, builder,
		staticURL("https://example.com/register"), f.publisher, logger.NewNop())
	f.uc.now = func() time.Time { return checkNow }
	return f
}

func TestCreateRenewalPayment(t *testing.T) {
	f := newRenewalFixture(t)
	m := f.memberships.Add(newMembership(t, 4, membershipOpts{
		status: vo.StatusActive, exp: at(checkNow.AddDate(0, 0, 2)), gateway: "manual",
	}))

	ok, err := f.uc.Execute(context.Background(), RenewalPaymentTask{MembershipID: 4})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, vo.StatusOnHold, m.Status())

	p, err := f.payments.GetLastPendingByMembership(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, decimal.NewFromInt(29).Equal(p.Total()), p.Total().String())
	assert.Equal(t, "manual", p.Gateway())
	for _, li := range p.LineItems() {
		assert.True(t, li.Recurring)
	}

	require.Len(t, f.publisher.Events, 1)
	evt, ok := f.publisher.Events[0].(*payment.RenewalPaymentCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/register?payment="+p.Hash(), evt.DefaultPaymentURL)
	assert.Equal(t, uint(4), evt.MembershipID)

	again, err := f.uc.Execute(context.Background(), RenewalPaymentTask{MembershipID: 4})
	require.NoError(t, err)
	assert.True(t, again)
	assert.Equal(t, 1, f.payments.Count())
	assert.Len(t, f.publisher.Events, 1)
}

func TestCreateRenewalPayment_AfterTrialKeepsSignupFee(t *testing.T) {
	f := newRenewalFixture(t)
	f.memberships.Add(newMembership(t, 5, membershipOpts{
		status: vo.StatusTrialing, trialEnd: at(checkNow.Add(-5 * time.Hour)),
	}))

	ok, err := f.uc.Execute(context.Background(), RenewalPaymentTask{MembershipID: 5, Trial: true})
	require.NoError(t, err)
	assert.True(t, ok)

	p, err := f.payments.GetLastPendingByMembership(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, decimal.NewFromInt(39).Equal(p.Total()), p.Total().String())
}

func TestCreateRenewalPayment_MembershipDiscount(t *testing.T) {
	tests := []struct {
		name     string
		opts     membershipOpts
		trial    bool
		total    string
		discount string
	}{
		{
			name:     "expired code applied to renewals",
			opts:     membershipOpts{status: vo.StatusActive, exp: at(checkNow.AddDate(0, 0, 2)), discount: "LAUNCH"},
			total:    "19",
			discount: "LAUNCH",
		},
		{
			name:  "used up code not applied to renewals",
			opts:  membershipOpts{status: vo.StatusActive, exp: at(checkNow.AddDate(0, 0, 2)), discount: "BETA"},
			total: "29",
		},
		{
			name:  "deleted code",
			opts:  membershipOpts{status: vo.StatusActive, exp: at(checkNow.AddDate(0, 0, 2)), discount: "GONE"},
			total: "29",
		},
		{
			name:     "expired code after trial",
			opts:     membershipOpts{status: vo.StatusTrialing, trialEnd: at(checkNow.Add(-5 * time.Hour)), discount: "LAUNCH"},
			trial:    true,
			total:    "29",
			discount: "LAUNCH",
		},
		{
			name:     "used up code after trial",
			opts:     membershipOpts{status: vo.StatusTrialing, trialEnd: at(checkNow.Add(-5 * time.Hour)), discount: "BETA"},
			trial:    true,
			total:    "24.50",
			discount: "BETA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRenewalFixture(t)
			m := f.memberships.Add(newMembership(t, 6, tt.opts))

			ok, err := f.uc.Execute(context.Background(), RenewalPaymentTask{MembershipID: 6, Trial: tt.trial})
			require.NoError(t, err)
			assert.True(t, ok)
			if !tt.trial {
				assert.Equal(t, vo.StatusOnHold, m.Status())
			}

			p, err := f.payments.GetLastPendingByMembership(context.Background(), 6)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.True(t, decimal.RequireFromString(tt.total).Equal(p.Total()), p.Total().String())
			assert.Equal(t, tt.discount, p.DiscountCode())
		})
	}
}

func TestCreateRenewalPayment_FreeRenewalKeepsPaymentURL(t *testing.T) {
	f := newRenewalFixture(t)
	f.memberships.Add(newMembership(t, 7, membershipOpts{
		status: vo.StatusActive, exp: at(checkNow.AddDate(0, 0, 2)), discount: "FOREVER",
	}))

	ok, err := f.uc.Execute(context.Background(), RenewalPaymentTask{MembershipID: 7})
	require.NoError(t, err)
	assert.True(t, ok)

	p, err := f.payments.GetLastPendingByMembership(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Total().IsZero(), p.Total().String())

	require.Len(t, f.publisher.Events, 1)
	evt, ok := f.publisher.Events[0].(*payment.RenewalPaymentCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/register?payment="+p.Hash(), evt.DefaultPaymentURL)
}

func TestCreateRenewalPayment_MissingMembership(t *testing.T) {
	f := newRenewalFixture(t)

	ok, err := f.uc.Execute(context.Background(), RenewalPaymentTask{MembershipID: 404})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.publisher.Events)
}

func TestMarkMembershipExpired(t *testing.T) {
	repo := testutil.NewMembershipRepository()
	m := repo.Add(newMembership(t, 7, membershipOpts{status: vo.StatusCancelled}))
	uc := NewMarkMembershipExpiredUseCase(repo, logger.NewNop())

	ok, err := uc.Execute(context.Background(), ExpireMembershipTask{MembershipID: 7})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, vo.StatusExpired, m.Status())

	ok, err = uc.Execute(context.Background(), ExpireMembershipTask{MembershipID: 8})
	require.NoError(t, err)
	assert.False(t, ok)
}

type cancellingGateway struct {
	paymentgateway.Gateway
	cancelled []uint
	err       error
}

func (g *cancellingGateway) ID() string { return "fake" }

func (g *cancellingGateway) ProcessCancellation(_ context.Context, m *membership.Membership, _ *customer.Customer) error {
	if g.err != nil {
		return g.err
	}
	g.cancelled = append(g.cancelled, m.ID())
	return nil
}

func TestCancelMembership(t *testing.T) {
	memberships := testutil.NewMembershipRepository()
	customers := testutil.NewCustomerRepository()
	c, err := customer.NewCustomerForUser(9, "buyer", "buyer@example.com", checkNow)
	require.NoError(t, err)
	customers.Add(c)

	m := newMembership(t, 3, membershipOpts{status: vo.StatusActive, gateway: "fake"})
	memberships.Add(m)

	gw := &cancellingGateway{}
	tx := &testutil.Tx{}
	uc := NewCancelMembershipUseCase(tx, memberships, customers, paymentgateway.NewRegistry(gw), logger.NewNop())

	resp, err := uc.Execute(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, string(vo.StatusCancelled), resp.Status)
	assert.NotNil(t, resp.DateCancellation)
	assert.Equal(t, []uint{3}, gw.cancelled)
	assert.Equal(t, 1, tx.Calls)

	_, err = uc.Execute(context.Background(), 99)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestCancelMembership_GatewayFailureKeepsStatus(t *testing.T) {
	memberships := testutil.NewMembershipRepository()
	customers := testutil.NewCustomerRepository()
	c, err := customer.NewCustomerForUser(9, "buyer", "buyer@example.com", checkNow)
	require.NoError(t, err)
	customers.Add(c)
	m := memberships.Add(newMembership(t, 3, membershipOpts{status: vo.StatusActive, gateway: "fake"}))

	gw := &cancellingGateway{err: errors.New("subscription locked")}
	uc := NewCancelMembershipUseCase(&testutil.Tx{}, memberships, customers, paymentgateway.NewRegistry(gw), logger.NewNop())

	_, err = uc.Execute(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, vo.StatusActive, m.Status())
}

func TestGetMembership(t *testing.T) {
	repo := testutil.NewMembershipRepository()
	repo.Add(newMembership(t, 2, membershipOpts{status: vo.StatusPending}))
	uc := NewGetMembershipUseCase(repo, logger.NewNop())

	resp, err := uc.Execute(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 1, resp.Duration)
	assert.Equal(t, "month", resp.DurationUnit)
}
