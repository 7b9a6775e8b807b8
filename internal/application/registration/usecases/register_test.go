package usecases

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/application/registration/dto"
	"github.com/siteforge/siteforge/internal/application/testutil"
	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/discount"
	membershipvo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/product"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/site"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type fakeSettings struct {
	closed  bool
	next    int
	numbers bool
}

func (s *fakeSettings) RegistrationEnabled(context.Context) bool { return !s.closed }

func (s *fakeSettings) AssignInvoiceNumber(_ context.Context, p *payment.Payment) (bool, error) {
	if !s.numbers || !p.Status().IsCompleted() {
		return false, nil
	}
	s.next++
	return p.AssignInvoiceNumber(s.next), nil
}

type failingCarts struct{}

func (failingCarts) Build(context.Context, checkout.Input, time.Time) (*checkout.Cart, error) {
	return nil, errors.New("catalog offline")
}

type fixture struct {
	uc          *RegisterUseCase
	tx          *testutil.Tx
	customers   *testutil.CustomerRepository
	memberships *testutil.MembershipRepository
	payments    *testutil.PaymentRepository
	sites       *testutil.SiteRepository
	notes       *testutil.NoteRepository
	discounts   *testutil.DiscountRepository
	catalog     testutil.Catalog
	settings    *fakeSettings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	plan, err := product.NewProduct(product.Attributes{
		Slug: "starter", Name: "Starter", Type: product.TypePlan, Currency: "USD",
		Amount: decimal.NewFromInt(29), Recurring: true, Active: true,
		Period: shared.Period{Duration: 1, Unit: shared.DurationUnitMonth},
	}, fixedNow)
	require.NoError(t, err)
	plan.SetID(1)

	trial, err := product.NewProduct(product.Attributes{
		Slug: "trial-plan", Name: "Trial Plan", Type: product.TypePlan, Currency: "USD",
		Amount: decimal.NewFromInt(19), Recurring: true, Active: true,
		Period: shared.Period{Duration: 1, Unit: shared.DurationUnitMonth},
		Trial:  shared.Period{Duration: 14, Unit: shared.DurationUnitDay},
	}, fixedNow)
	require.NoError(t, err)
	trial.SetID(2)

	once, err := discount.NewDiscountCode(discount.Attributes{
		Code: "ONCE", Value: decimal.NewFromInt(10), Type: paymentvo.DiscountTypePercentage,
		Active: true, MaxUses: 1,
	}, fixedNow)
	require.NoError(t, err)

	f := &fixture{
		tx:          &testutil.Tx{},
		customers:   testutil.NewCustomerRepository(),
		memberships: testutil.NewMembershipRepository(),
		payments:    testutil.NewPaymentRepository(),
		sites:       testutil.NewSiteRepository(),
		notes:       testutil.NewNoteRepository(),
		discounts:   testutil.NewDiscountRepository(once),
		catalog:     testutil.Catalog{1: plan, 2: trial},
		settings:    &fakeSettings{},
	}
	builder := checkout.NewBuilder(f.catalog, f.discounts, nil, "USD", logger.NewNop())
	f.uc = NewRegisterUseCase(
		f.tx, f.customers, f.memberships, f.payments, f.sites, f.notes,
		builder, f.discounts, f.settings, testutil.PlainHasher{},
		site.Network{Domain: "example.com", Subdomain: true},
		logger.NewNop(),
	)
	f.uc.now = func() time.Time { return fixedNow }
	return f
}

func newCustomerRequest() dto.RegisterRequest {
	return dto.RegisterRequest{
		Customer: &dto.CustomerParams{
			Username: "janedoe",
			Password: "s3cret!!",
			Email:    "jane@example.com",
		},
		Products: dto.ProductRefs{"starter"},
		IP:       "203.0.113.7",
	}
}

func TestRegister_CreatesPendingRecords(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), newCustomerRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, f.tx.Calls)
	assert.Equal(t, "janedoe", resp.Customer.Username)
	require.NotNil(t, resp.Customer.LastLogin)

	assert.Equal(t, "pending", resp.Membership.Status)
	assert.Equal(t, resp.Customer.ID, resp.Membership.CustomerID)
	assert.True(t, decimal.NewFromInt(29).Equal(resp.Membership.Amount))
	require.NotNil(t, resp.Membership.DateExpiration)
	assert.Equal(t, fixedNow.AddDate(0, 1, 0), *resp.Membership.DateExpiration)

	assert.Equal(t, "pending", resp.Payment.Status)
	assert.Equal(t, resp.Membership.ID, resp.Payment.MembershipID)
	assert.True(t, decimal.NewFromInt(29).Equal(resp.Payment.Total))
	assert.Equal(t, uint(0), resp.Site.ID)

	for _, subject := range []note.Subject{
		{Type: note.SubjectCustomer, ID: resp.Customer.ID},
		{Type: note.SubjectMembership, ID: resp.Membership.ID},
		{Type: note.SubjectPayment, ID: resp.Payment.ID},
	} {
		assert.Equal(t, []string{"Created via REST API"}, f.notes.Texts(subject), subject.Type)
	}
}

func TestRegister_ExistingCustomer(t *testing.T) {
	f := newFixture(t)
	existing, err := customer.NewCustomer("existing", "old@example.com", "password", testutil.PlainHasher{}, fixedNow)
	require.NoError(t, err)
	f.customers.Add(existing)

	req := dto.RegisterRequest{CustomerID: existing.ID(), Products: dto.ProductRefs{"1"}}
	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, existing.ID(), resp.Customer.ID)
	assert.Equal(t, 1, f.customers.Count())
}

func TestRegister_MissingCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), dto.RegisterRequest{CustomerID: 99, Products: dto.ProductRefs{"starter"}})
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, ReasonCustomerNotFound, appErr.Reason)
	assert.Equal(t, 0, f.memberships.Count())
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		req    dto.RegisterRequest
		fields []string
	}{
		{
			name:   "no customer at all",
			req:    dto.RegisterRequest{Products: dto.ProductRefs{"starter"}},
			fields: []string{"customer_id", "customer"},
		},
		{
			name: "customer without credentials",
			req: dto.RegisterRequest{
				Customer: &dto.CustomerParams{},
				Products: dto.ProductRefs{"starter"},
			},
			fields: []string{"customer.username", "customer.password", "customer.email", "customer.user_id"},
		},
		{
			name: "site url rules",
			req: func() dto.RegisterRequest {
				r := newCustomerRequest()
				r.Site = &dto.SiteParams{SiteURL: "My-Site", SiteTitle: "abc"}
				return r
			}(),
			fields: []string{"site.site_url", "site.site_title"},
		},
		{
			name: "unknown statuses and unit",
			req: func() dto.RegisterRequest {
				r := newCustomerRequest()
				r.DurationUnit = "fortnight"
				r.Membership = &dto.MembershipParams{Status: "paused"}
				r.Payment = &dto.PaymentParams{Status: "paid"}
				return r
			}(),
			fields: []string{"duration_unit", "membership.status", "payment.status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.uc.Execute(context.Background(), tt.req)

			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
			for _, field := range tt.fields {
				assert.Contains(t, appErr.Fields, field)
			}
			assert.Zero(t, f.tx.Calls)
		})
	}
}

func TestRegister_UserIDIsEnough(t *testing.T) {
	f := newFixture(t)
	req := dto.RegisterRequest{
		Customer: &dto.CustomerParams{UserID: 77},
		Products: dto.ProductRefs{"starter"},
	}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint(77), resp.Customer.UserID)
}

func TestRegister_EmptyCart(t *testing.T) {
	f := newFixture(t)
	req := newCustomerRequest()
	req.Products = nil

	_, err := f.uc.Execute(context.Background(), req)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, ReasonInvalidCart, appErr.Reason)
	assert.Equal(t, "Products are required.", appErr.Message)
}

func TestRegister_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	req := newCustomerRequest()
	req.Products = dto.ProductRefs{"enterprise"}

	_, err := f.uc.Execute(context.Background(), req)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "invalid_product", appErr.Reason)
}

// staleDiscounts serves every code as never redeemed, the way a second
// checkout racing the first one sees it.
type staleDiscounts struct {
	*testutil.DiscountRepository
}

func (s staleDiscounts) GetByCode(ctx context.Context, code string) (*discount.DiscountCode, error) {
	d, err := s.DiscountRepository.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return discount.ReconstructDiscountCode(d.ID(), d.Attributes(), 0, d.CreatedAt(), d.UpdatedAt()), nil
}

func TestRegister_DiscountCodeMaxUses(t *testing.T) {
	second := dto.RegisterRequest{
		Customer:     &dto.CustomerParams{Username: "johndoe", Password: "s3cret!!", Email: "john@example.com"},
		Products:     dto.ProductRefs{"starter"},
		DiscountCode: "once",
	}

	tests := []struct {
		name  string
		stale bool
	}{
		{name: "exhausted code fails pricing"},
		{name: "exhausted code fails redemption", stale: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.stale {
				f.uc.carts = checkout.NewBuilder(f.catalog, staleDiscounts{f.discounts}, nil, "USD", logger.NewNop())
			}

			first := newCustomerRequest()
			first.DiscountCode = "once"
			resp, err := f.uc.Execute(context.Background(), first)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString("26.10").Equal(resp.Payment.Total))
			assert.Equal(t, 1, f.discounts.Uses(1))

			_, err = f.uc.Execute(context.Background(), second)
			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
			assert.Equal(t, ReasonDiscountCode, appErr.Reason)
			assert.Equal(t, "This discount code was already redeemed the maximum amount of times allowed", appErr.Message)
			assert.Equal(t, 1, f.discounts.Uses(1))
		})
	}
}

func TestRegister_RuntimeErrorBecomesRegistrationError(t *testing.T) {
	f := newFixture(t)
	f.uc.carts = failingCarts{}

	_, err := f.uc.Execute(context.Background(), newCustomerRequest())
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, ReasonRegistrationError, appErr.Reason)
	assert.Contains(t, appErr.Message, "catalog offline")
}

func TestRegister_Closed(t *testing.T) {
	f := newFixture(t)
	f.settings.closed = true

	_, err := f.uc.Execute(context.Background(), newCustomerRequest())
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Code)
}

func TestRegister_PendingSite(t *testing.T) {
	f := newFixture(t)
	req := newCustomerRequest()
	req.Site = &dto.SiteParams{SiteURL: "janesblog", SiteTitle: "Jane's Blog", TemplateID: 3}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.NotZero(t, resp.Site.ID)
	assert.Equal(t, string(site.StatusPending), resp.Site.Status)
	assert.Equal(t, "https://janesblog.example.com/", resp.Site.URL)

	again := newCustomerRequest()
	again.Customer.Username = "otherjane"
	again.Customer.Email = "other@example.com"
	again.Site = &dto.SiteParams{SiteURL: "janesblog", SiteTitle: "Another Blog"}
	_, err = f.uc.Execute(context.Background(), again)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Fields, "site.site_url")
}

func TestRegister_ActiveStatusPublishesSite(t *testing.T) {
	f := newFixture(t)
	f.settings.numbers = true
	req := newCustomerRequest()
	req.Site = &dto.SiteParams{SiteURL: "janesblog", SiteTitle: "Jane's Blog"}
	req.Membership = &dto.MembershipParams{Status: "active"}
	req.Payment = &dto.PaymentParams{Status: "completed"}
	req.PaymentMethod = &dto.PaymentMethodParams{Gateway: "manual", GatewayPaymentID: "bank-42"}
	req.AutoRenew = true

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, string(membershipvo.StatusActive), resp.Membership.Status)
	assert.NotNil(t, resp.Membership.DateActivated)
	assert.True(t, resp.Membership.AutoRenew)
	assert.Equal(t, "manual", resp.Membership.Gateway)
	assert.Equal(t, string(site.StatusPublished), resp.Site.Status)
	assert.NotZero(t, resp.Site.BlogID)

	assert.Equal(t, string(paymentvo.PaymentStatusCompleted), resp.Payment.Status)
	assert.Equal(t, "bank-42", resp.Payment.GatewayPaymentID)

	stored, err := f.payments.GetByID(context.Background(), resp.Payment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SavedInvoiceNumber())
	assert.Equal(t, 1, *stored.SavedInvoiceNumber())
}

func TestRegister_MembershipOverrides(t *testing.T) {
	f := newFixture(t)
	exp := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	req := newCustomerRequest()
	req.Products = dto.ProductRefs{"trial-plan"}
	req.Membership = &dto.MembershipParams{DateExpiration: &exp}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Membership.DateTrialEnd)
	assert.Equal(t, fixedNow.AddDate(0, 0, 14), *resp.Membership.DateTrialEnd)
	assert.Equal(t, exp, *resp.Membership.DateExpiration)
	assert.True(t, resp.Payment.Total.IsZero())
}
