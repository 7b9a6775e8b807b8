package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/application/payment/dto"
	"github.com/siteforge/siteforge/internal/application/payment/paymentgateway"
	"github.com/siteforge/siteforge/internal/application/testutil"
	"github.com/siteforge/siteforge/internal/domain/customer"
	customervo "github.com/siteforge/siteforge/internal/domain/customer/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/membership"
	membershipvo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/site"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/money"
	"github.com/siteforge/siteforge/internal/shared/services/markdown"
)

var fixedNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

type fakeSettings struct {
	scheme paymentvo.InvoiceScheme
	last   int
}

func (s *fakeSettings) InvoiceSettings(context.Context) payment.InvoiceSettings {
	return payment.InvoiceSettings{Scheme: s.scheme, Prefix: "INV-", NextNumber: s.last + 1}
}

func (s *fakeSettings) AssignInvoiceNumber(_ context.Context, p *payment.Payment) (bool, error) {
	if s.scheme != paymentvo.InvoiceSchemeSequential || !p.Status().IsCompleted() || p.SavedInvoiceNumber() != nil {
		return false, nil
	}
	s.last++
	return p.AssignInvoiceNumber(s.last), nil
}

func (s *fakeSettings) RegistrationURL() string { return "https://example.com/register" }

type fakeTokens struct{}

func (fakeTokens) Issue(reference string) (string, time.Time, error) {
	return "key-" + reference, fixedNow.Add(time.Hour), nil
}

func (fakeTokens) Verify(key, reference string) error {
	if key != "key-"+reference {
		return errors.New("bad key")
	}
	return nil
}

type fixture struct {
	customers   *testutil.CustomerRepository
	memberships *testutil.MembershipRepository
	payments    *testutil.PaymentRepository
	sites       *testutil.SiteRepository
	notes       *testutil.NoteRepository
	publisher   *testutil.Publisher
	settings    *fakeSettings
	gateways    *paymentgateway.Registry
	tx          *testutil.Tx
	customer    *customer.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		customers:   testutil.NewCustomerRepository(),
		memberships: testutil.NewMembershipRepository(),
		payments:    testutil.NewPaymentRepository(),
		sites:       testutil.NewSiteRepository(),
		notes:       testutil.NewNoteRepository(),
		publisher:   &testutil.Publisher{},
		settings:    &fakeSettings{scheme: paymentvo.InvoiceSchemeReferenceCode},
		tx:          &testutil.Tx{},
	}
	manual := paymentgateway.NewManualGateway(
		paymentgateway.NewRepositoryStore(f.payments, f.memberships),
		"Wire the amount to our bank.", markdown.NewRenderer(), logger.NewNop())
	f.gateways = paymentgateway.NewRegistry(manual)

	c, err := customer.NewCustomerForUser(7, "janedoe", "jane@example.com", fixedNow)
	require.NoError(t, err)
	c.SetBillingAddress(customervo.BillingAddress{CompanyName: "Jane Inc", City: "Lisbon", Country: "PT"}, fixedNow)
	f.customer = f.customers.Add(c)
	return f
}

func (f *fixture) membership(t *testing.T, status membershipvo.MembershipStatus, exp *time.Time) *membership.Membership {
	t.Helper()
	m, err := membership.NewMembership(f.customer.ID(), membership.Terms{
		PlanID:    1,
		Currency:  "USD",
		Period:    shared.Period{Duration: 1, Unit: shared.DurationUnitMonth},
		Amount:    decimal.NewFromInt(100),
		Recurring: true,
	}, fixedNow)
	require.NoError(t, err)
	require.NoError(t, f.memberships.Create(context.Background(), m))
	m.SetSkipValidation(true)
	require.NoError(t, m.SetStatus(status, fixedNow))
	m.SetSkipValidation(false)
	if exp != nil {
		m.ApplyDates(membership.DateOverrides{Expiration: exp}, fixedNow)
	}
	return m
}

// payment builds a payment of 100 plus 10% tax.
func (f *fixture) payment(t *testing.T, m *membership.Membership, status paymentvo.PaymentStatus, gateway, gatewayPaymentID string) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(f.customer.ID(), "USD", fixedNow)
	require.NoError(t, err)
	p.AddLineItem(payment.LineItem{
		Type:      paymentvo.LineItemTypeProduct,
		Title:     "Starter",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(100),
		Taxable:   true,
		TaxRate:   decimal.NewFromInt(10),
		Recurring: true,
	})
	p.RecalculateTotals()
	if m != nil {
		p.SetMembership(m.ID())
	}
	p.SetGateway(gateway, gatewayPaymentID, fixedNow)
	require.NoError(t, p.SetStatus(status, fixedNow))
	return f.payments.Add(p)
}

func TestGetPayment(t *testing.T) {
	f := newFixture(t)
	p := f.payment(t, nil, paymentvo.PaymentStatusPending, "", "")

	uc := NewGetPaymentUseCase(f.payments, f.settings, logger.NewNop())
	uc.now = func() time.Time { return fixedNow }

	resp, err := uc.Execute(context.Background(), p.Hash())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/register?payment="+p.Hash(), resp.PaymentURL)
	assert.Equal(t, p.Hash(), resp.InvoiceNumber)
	require.Contains(t, resp.TaxBreakthrough, "10")
	assert.True(t, decimal.NewFromInt(10).Equal(resp.TaxBreakthrough["10"]))
	assert.True(t, decimal.NewFromInt(110).Equal(resp.Total))

	f.settings.scheme = paymentvo.InvoiceSchemeSequential
	resp, err = uc.Execute(context.Background(), p.Hash())
	require.NoError(t, err)
	assert.Equal(t, "INV-1 (provisional)", resp.InvoiceNumber)

	_, err = uc.Execute(context.Background(), "pay_missing")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func newRefundUseCase(f *fixture) *RefundPaymentUseCase {
	uc := NewRefundPaymentUseCase(f.tx, f.payments, f.memberships, f.customers, f.notes,
		f.gateways, f.settings, f.publisher, logger.NewNop())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestRefundPayment_Partial(t *testing.T) {
	f := newFixture(t)
	m := f.membership(t, membershipvo.StatusActive, nil)
	p := f.payment(t, m, paymentvo.PaymentStatusCompleted, paymentgateway.ManualGatewayID, "")

	resp, err := newRefundUseCase(f).Execute(context.Background(), p.Hash(), dto.RefundRequest{Amount: decimal.NewFromInt(40)})
	require.NoError(t, err)

	assert.Equal(t, string(paymentvo.PaymentStatusPartiallyRefunded), resp.Status)
	assert.True(t, decimal.NewFromInt(70).Equal(p.Total()), p.Total().String())
	assert.True(t, decimal.NewFromInt(-40).Equal(p.RefundTotal()), p.RefundTotal().String())
	assert.Equal(t, membershipvo.StatusActive, m.Status())
	assert.Equal(t, []string{"Refunded 40.00 USD."}, f.notes.Texts(note.Subject{Type: note.SubjectPayment, ID: p.ID()}))
	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, payment.EventTypePaymentRefunded, f.publisher.Events[0].GetEventType())
	assert.Equal(t, 1, f.tx.Calls)
}

func TestRefundPayment_FullCancelsMembership(t *testing.T) {
	f := newFixture(t)
	m := f.membership(t, membershipvo.StatusActive, nil)
	m.SetGateway(paymentgateway.ManualGatewayID, "", "", fixedNow)
	p := f.payment(t, m, paymentvo.PaymentStatusCompleted, paymentgateway.ManualGatewayID, "")

	cancel := true
	resp, err := newRefundUseCase(f).Execute(context.Background(), p.Hash(), dto.RefundRequest{CancelMembership: &cancel})
	require.NoError(t, err)

	assert.Equal(t, string(paymentvo.PaymentStatusRefunded), resp.Status)
	assert.True(t, p.Total().IsZero(), p.Total().String())
	assert.Equal(t, membershipvo.StatusCancelled, m.Status())
	assert.NotNil(t, m.DateCancellation())
	assert.Equal(t, []string{"Refunded 110.00 USD."}, f.notes.Texts(note.Subject{Type: note.SubjectPayment, ID: p.ID()}))
}

func TestRefundPayment_Rejects(t *testing.T) {
	f := newFixture(t)
	completed := f.payment(t, nil, paymentvo.PaymentStatusCompleted, "", "")
	pending := f.payment(t, nil, paymentvo.PaymentStatusPending, "", "")
	uc := newRefundUseCase(f)

	tests := []struct {
		name  string
		hash  string
		req   dto.RefundRequest
		check func(error) bool
	}{
		{"negative amount", completed.Hash(), dto.RefundRequest{Amount: decimal.NewFromInt(-1)}, apperrors.IsValidationError},
		{"more than paid", completed.Hash(), dto.RefundRequest{Amount: decimal.NewFromInt(500)}, apperrors.IsValidationError},
		{"unpaid payment", pending.Hash(), dto.RefundRequest{}, apperrors.IsConflictError},
		{"unknown payment", "pay_nope", dto.RefundRequest{}, apperrors.IsNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.hash, tt.req)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
	assert.Equal(t, paymentvo.PaymentStatusCompleted, completed.Status())
	assert.Empty(t, f.publisher.Events)
}

func TestRefundPayment_LocalWithoutGateway(t *testing.T) {
	f := newFixture(t)
	p := f.payment(t, nil, paymentvo.PaymentStatusCompleted, "", "")

	_, err := newRefundUseCase(f).Execute(context.Background(), p.Hash(), dto.RefundRequest{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, paymentvo.PaymentStatusPartiallyRefunded, p.Status())
}

func TestInvoiceLinkAndView(t *testing.T) {
	f := newFixture(t)
	p := f.payment(t, nil, paymentvo.PaymentStatusPending, "", "")

	link, err := NewGetInvoiceLinkUseCase(f.payments, fakeTokens{}, "https://billing.example.com/", logger.NewNop()).
		Execute(context.Background(), p.Hash())
	require.NoError(t, err)
	assert.Equal(t, "https://billing.example.com/invoice?key=key-"+p.Hash()+"&reference="+p.Hash(), link.URL)
	assert.Equal(t, fixedNow.Add(time.Hour), link.ExpiresAt)

	view := NewViewInvoiceUseCase(f.payments, f.customers, fakeTokens{}, f.settings, money.NewFormatter("en"), logger.NewNop())
	view.now = func() time.Time { return fixedNow }

	inv, err := view.Execute(context.Background(), p.Hash(), "key-"+p.Hash())
	require.NoError(t, err)
	assert.Equal(t, p.Hash(), inv.InvoiceNumber)
	assert.Equal(t, "janedoe", inv.CustomerName)
	assert.Equal(t, []string{"Jane Inc", "Lisbon", "PT"}, inv.BillTo)
	assert.Contains(t, inv.Total, "110.00")
	assert.Contains(t, inv.Tax, "10.00")
	require.Len(t, inv.Lines, 1)
	assert.Contains(t, inv.Lines[0].UnitPrice, "100.00")
	require.Len(t, inv.TaxBrackets, 1)
	assert.Equal(t, "10%", inv.TaxBrackets[0].Rate)
	assert.True(t, inv.PaymentPending)
	assert.NotEmpty(t, inv.PaymentURL)

	_, err = view.Execute(context.Background(), p.Hash(), "forged")
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.GetAppError(err).Type)

	_, err = view.Execute(context.Background(), p.Hash(), "")
	assert.Error(t, err)
}

type fakeVerifier struct {
	evt *paymentgateway.WebhookEvent
	err error
}

func (v *fakeVerifier) ID() string { return "stripe" }

func (v *fakeVerifier) ParseWebhook([]byte, string) (*paymentgateway.WebhookEvent, error) {
	return v.evt, v.err
}

func newWebhookUseCase(f *fixture, v *fakeVerifier) *HandleWebhookUseCase {
	uc := NewHandleWebhookUseCase(f.tx, f.payments, f.memberships, f.sites, f.settings, f.publisher, logger.NewNop(), v)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestHandleWebhook_PaymentSucceededActivates(t *testing.T) {
	f := newFixture(t)
	f.settings.scheme = paymentvo.InvoiceSchemeSequential
	m := f.membership(t, membershipvo.StatusPending, nil)
	p := f.payment(t, m, paymentvo.PaymentStatusPending, "stripe", "pi_123")

	s, err := site.NewPendingSite(site.PendingSiteParams{
		CustomerID: f.customer.ID(), MembershipID: m.ID(),
		Domain: "shop.example.com", Path: "/", Title: "Jane's Shop",
	}, fixedNow)
	require.NoError(t, err)
	require.NoError(t, f.sites.Create(context.Background(), s))

	v := &fakeVerifier{evt: &paymentgateway.WebhookEvent{
		ID: "evt_1", Gateway: "stripe", Type: paymentgateway.WebhookPaymentSucceeded, GatewayPaymentID: "pi_123",
	}}
	uc := newWebhookUseCase(f, v)

	require.NoError(t, uc.Execute(context.Background(), "stripe", []byte("{}"), "sig"))
	assert.Equal(t, paymentvo.PaymentStatusCompleted, p.Status())
	require.NotNil(t, p.SavedInvoiceNumber())
	assert.Equal(t, 1, *p.SavedInvoiceNumber())
	assert.Equal(t, membershipvo.StatusActive, m.Status())
	assert.NotNil(t, m.DateActivated())
	assert.False(t, s.IsPending())
	assert.NotZero(t, s.BlogID())
	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, payment.EventTypePaymentCompleted, f.publisher.Events[0].GetEventType())

	require.NoError(t, uc.Execute(context.Background(), "stripe", []byte("{}"), "sig"))
	assert.Equal(t, 1, *p.SavedInvoiceNumber())
	assert.Len(t, f.publisher.Events, 1)
}

func TestHandleWebhook_PaymentSucceededRenews(t *testing.T) {
	f := newFixture(t)
	exp := fixedNow.AddDate(0, 0, 2)
	m := f.membership(t, membershipvo.StatusOnHold, &exp)
	f.payment(t, m, paymentvo.PaymentStatusPending, "stripe", "pi_456")

	v := &fakeVerifier{evt: &paymentgateway.WebhookEvent{
		Gateway: "stripe", Type: paymentgateway.WebhookPaymentSucceeded, GatewayPaymentID: "pi_456",
	}}
	require.NoError(t, newWebhookUseCase(f, v).Execute(context.Background(), "stripe", nil, "sig"))

	assert.Equal(t, membershipvo.StatusActive, m.Status())
	assert.Equal(t, exp.AddDate(0, 1, 0), *m.DateExpiration())
	assert.Equal(t, 1, m.TimesBilled())
}

func TestHandleWebhook_RefundAppliesDelta(t *testing.T) {
	f := newFixture(t)
	p := f.payment(t, nil, paymentvo.PaymentStatusCompleted, "stripe", "pi_789")

	v := &fakeVerifier{evt: &paymentgateway.WebhookEvent{
		Gateway: "stripe", Type: paymentgateway.WebhookPaymentRefunded, GatewayPaymentID: "pi_789",
		AmountRefunded: decimal.NewFromInt(30),
	}}
	uc := newWebhookUseCase(f, v)

	require.NoError(t, uc.Execute(context.Background(), "stripe", nil, "sig"))
	assert.True(t, decimal.NewFromInt(-30).Equal(p.RefundTotal()), p.RefundTotal().String())

	require.NoError(t, uc.Execute(context.Background(), "stripe", nil, "sig"))
	assert.True(t, decimal.NewFromInt(-30).Equal(p.RefundTotal()), "replayed event changes nothing")

	v.evt.AmountRefunded = decimal.NewFromInt(50)
	require.NoError(t, uc.Execute(context.Background(), "stripe", nil, "sig"))
	assert.True(t, decimal.NewFromInt(-50).Equal(p.RefundTotal()), p.RefundTotal().String())
	assert.Equal(t, paymentvo.PaymentStatusPartiallyRefunded, p.Status())
	assert.Len(t, f.publisher.Events, 2)
}

func TestHandleWebhook_Rejections(t *testing.T) {
	f := newFixture(t)

	v := &fakeVerifier{err: paymentgateway.ErrInvalidWebhookSignature}
	err := newWebhookUseCase(f, v).Execute(context.Background(), "stripe", nil, "bad")
	assert.Equal(t, apperrors.ErrorTypeBadRequest, apperrors.GetAppError(err).Type)

	err = newWebhookUseCase(f, v).Execute(context.Background(), "paypal", nil, "sig")
	assert.True(t, apperrors.IsNotFoundError(err))

	unknown := &fakeVerifier{evt: &paymentgateway.WebhookEvent{
		Gateway: "stripe", Type: paymentgateway.WebhookPaymentSucceeded, GatewayPaymentID: "pi_unknown",
	}}
	assert.NoError(t, newWebhookUseCase(f, unknown).Execute(context.Background(), "stripe", nil, "sig"))

	ignored := &fakeVerifier{evt: &paymentgateway.WebhookEvent{Type: paymentgateway.WebhookIgnored, RawType: "customer.created"}}
	assert.NoError(t, newWebhookUseCase(f, ignored).Execute(context.Background(), "stripe", nil, "sig"))
}

func newCheckoutUseCase(f *fixture) *ProcessCheckoutUseCase {
	builder := checkout.NewBuilder(testutil.Catalog{}, testutil.NoDiscounts{}, nil, "USD", logger.NewNop())
	uc := NewProcessCheckoutUseCase(f.tx, f.payments, f.memberships, f.customers, builder, f.gateways, f.settings, logger.NewNop())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestProcessCheckout_Manual(t *testing.T) {
	f := newFixture(t)
	m := f.membership(t, membershipvo.StatusOnHold, nil)
	p := f.payment(t, m, paymentvo.PaymentStatusPending, "", "")

	resp, err := newCheckoutUseCase(f).Execute(context.Background(), p.Hash(), dto.CheckoutRequest{Gateway: "manual"})
	require.NoError(t, err)

	assert.Equal(t, "manual", resp.Gateway)
	assert.Equal(t, "manual", m.Gateway())
	assert.Equal(t, string(paymentvo.PaymentStatusPending), resp.Status)
	assert.NotEmpty(t, resp.PaymentURL)
}

func TestProcessCheckout_Rejects(t *testing.T) {
	f := newFixture(t)
	m := f.membership(t, membershipvo.StatusActive, nil)
	paid := f.payment(t, m, paymentvo.PaymentStatusCompleted, "", "")
	orphan := f.payment(t, nil, paymentvo.PaymentStatusPending, "", "")
	uc := newCheckoutUseCase(f)

	_, err := uc.Execute(context.Background(), paid.Hash(), dto.CheckoutRequest{Gateway: "bitcoin"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = uc.Execute(context.Background(), paid.Hash(), dto.CheckoutRequest{Gateway: "manual"})
	assert.True(t, apperrors.IsConflictError(err))

	_, err = uc.Execute(context.Background(), orphan.Hash(), dto.CheckoutRequest{Gateway: "manual"})
	assert.Equal(t, apperrors.ErrorTypeBadRequest, apperrors.GetAppError(err).Type)
}
