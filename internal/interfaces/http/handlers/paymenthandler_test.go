package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge/siteforge/internal/application/payment/dto"
	"github.com/siteforge/siteforge/internal/interfaces/http/handlers/testutil"
	"github.com/siteforge/siteforge/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockGetPaymentUC struct {
	result *dto.PaymentResponse
	err    error
}

func (m *mockGetPaymentUC) Execute(ctx context.Context, hash string) (*dto.PaymentResponse, error) {
	return m.result, m.err
}

type mockRefundPaymentUC struct {
	result *dto.PaymentResponse
	err    error
	got    dto.RefundRequest
	called bool
}

func (m *mockRefundPaymentUC) Execute(ctx context.Context, hash string, req dto.RefundRequest) (*dto.PaymentResponse, error) {
	m.called = true
	m.got = req
	return m.result, m.err
}

type mockCheckoutUC struct {
	result *dto.PaymentResponse
	err    error
	got    dto.CheckoutRequest
}

func (m *mockCheckoutUC) Execute(ctx context.Context, hash string, req dto.CheckoutRequest) (*dto.PaymentResponse, error) {
	m.got = req
	return m.result, m.err
}

type mockInvoiceLinkUC struct {
	result *dto.InvoiceLinkResponse
	err    error
}

func (m *mockInvoiceLinkUC) Execute(ctx context.Context, hash string) (*dto.InvoiceLinkResponse, error) {
	return m.result, m.err
}

type mockViewInvoiceUC struct {
	result       *dto.InvoiceResponse
	err          error
	gotReference string
	gotKey       string
}

func (m *mockViewInvoiceUC) Execute(ctx context.Context, reference, key string) (*dto.InvoiceResponse, error) {
	m.gotReference, m.gotKey = reference, key
	return m.result, m.err
}

func testPayment() *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:       7,
		Hash:     "pay_abc123",
		Currency: "USD",
		Status:   "pending",
		Total:    decimal.RequireFromString("110.00"),
	}
}

// =====================================================================
// Tests
// =====================================================================

func TestPaymentHandler_GetPayment(t *testing.T) {
	handler := NewPaymentHandler(&mockGetPaymentUC{result: testPayment()}, nil, nil, nil, nil, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/payments/pay_abc123", nil)
	testutil.SetURLParam(c, "hash", "pay_abc123")

	handler.GetPayment(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var got dto.PaymentResponse
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "pay_abc123", got.Hash)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(110)))
}

func TestPaymentHandler_GetPayment_NotFound(t *testing.T) {
	handler := NewPaymentHandler(&mockGetPaymentUC{err: errors.NewNotFoundError("payment not found")}, nil, nil, nil, nil, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/payments/nope", nil)
	testutil.SetURLParam(c, "hash", "nope")

	handler.GetPayment(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandler_GetPayment_MissingHash(t *testing.T) {
	handler := NewPaymentHandler(&mockGetPaymentUC{}, nil, nil, nil, nil, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/payments/", nil)

	handler.GetPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_RefundPayment(t *testing.T) {
	t.Run("partial amount", func(t *testing.T) {
		mockUC := &mockRefundPaymentUC{result: testPayment()}
		handler := NewPaymentHandler(nil, mockUC, nil, nil, nil, testutil.NewMockLogger())
		c, w := testutil.NewRawTestContext(http.MethodPost, "/api/v1/payments/pay_abc123/refund",
			[]byte(`{"amount": "25.50", "cancel_membership": false}`),
			map[string]string{"Content-Type": "application/json"})
		testutil.SetURLParam(c, "hash", "pay_abc123")

		handler.RefundPayment(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, mockUC.got.Amount.Equal(decimal.RequireFromString("25.50")))
		require.NotNil(t, mockUC.got.CancelMembership)
		assert.False(t, *mockUC.got.CancelMembership)
	})

	t.Run("empty body refunds in full", func(t *testing.T) {
		mockUC := &mockRefundPaymentUC{result: testPayment()}
		handler := NewPaymentHandler(nil, mockUC, nil, nil, nil, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/payments/pay_abc123/refund", nil)
		testutil.SetURLParam(c, "hash", "pay_abc123")

		handler.RefundPayment(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, mockUC.got.Amount.IsZero())
		assert.Nil(t, mockUC.got.CancelMembership)
	})

	t.Run("invalid amount", func(t *testing.T) {
		mockUC := &mockRefundPaymentUC{}
		handler := NewPaymentHandler(nil, mockUC, nil, nil, nil, testutil.NewMockLogger())
		c, w := testutil.NewRawTestContext(http.MethodPost, "/api/v1/payments/pay_abc123/refund",
			[]byte(`{"amount": "lots"}`), map[string]string{"Content-Type": "application/json"})
		testutil.SetURLParam(c, "hash", "pay_abc123")

		handler.RefundPayment(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, mockUC.called)
	})

	t.Run("gateway failure", func(t *testing.T) {
		mockUC := &mockRefundPaymentUC{err: errors.NewInternalError("refund failed")}
		handler := NewPaymentHandler(nil, mockUC, nil, nil, nil, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/payments/pay_abc123/refund", nil)
		testutil.SetURLParam(c, "hash", "pay_abc123")

		handler.RefundPayment(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestPaymentHandler_Checkout(t *testing.T) {
	mockUC := &mockCheckoutUC{result: testPayment()}
	handler := NewPaymentHandler(nil, nil, mockUC, nil, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/payments/pay_abc123/checkout", map[string]string{"gateway": "manual"})
	testutil.SetURLParam(c, "hash", "pay_abc123")
	handler.Checkout(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "manual", mockUC.got.Gateway)

	c, w = testutil.NewTestContext(http.MethodPost, "/api/v1/payments/pay_abc123/checkout", map[string]string{})
	testutil.SetURLParam(c, "hash", "pay_abc123")
	handler.Checkout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code, "gateway is required")
}

func TestPaymentHandler_GetInvoiceLink(t *testing.T) {
	expires := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mockUC := &mockInvoiceLinkUC{result: &dto.InvoiceLinkResponse{
		URL:       "https://billing.example.com/invoice?reference=pay_abc123&key=k",
		ExpiresAt: expires,
	}}
	handler := NewPaymentHandler(nil, nil, nil, mockUC, nil, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/payments/pay_abc123/invoice-link", nil)
	testutil.SetURLParam(c, "hash", "pay_abc123")

	handler.GetInvoiceLink(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var link dto.InvoiceLinkResponse
	require.NoError(t, json.Unmarshal(resp.Data, &link))
	assert.Contains(t, link.URL, "reference=pay_abc123")
	assert.True(t, link.ExpiresAt.Equal(expires))
}

func TestPaymentHandler_ViewInvoice(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		mockUC := &mockViewInvoiceUC{result: &dto.InvoiceResponse{InvoiceNumber: "INV-0001", Total: "$110.00"}}
		handler := NewPaymentHandler(nil, nil, nil, nil, mockUC, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/invoice", nil)
		testutil.SetQueryParams(c, map[string]string{"reference": "pay_abc123", "key": "signed"})

		handler.ViewInvoice(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pay_abc123", mockUC.gotReference)
		assert.Equal(t, "signed", mockUC.gotKey)
	})

	t.Run("missing key", func(t *testing.T) {
		mockUC := &mockViewInvoiceUC{}
		handler := NewPaymentHandler(nil, nil, nil, nil, mockUC, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/invoice", nil)
		testutil.SetQueryParams(c, map[string]string{"reference": "pay_abc123"})

		handler.ViewInvoice(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, mockUC.gotReference)
	})

	t.Run("rejected key", func(t *testing.T) {
		mockUC := &mockViewInvoiceUC{err: errors.NewUnauthorizedError("invalid invoice key")}
		handler := NewPaymentHandler(nil, nil, nil, nil, mockUC, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/invoice", nil)
		testutil.SetQueryParams(c, map[string]string{"reference": "pay_abc123", "key": "forged"})

		handler.ViewInvoice(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
