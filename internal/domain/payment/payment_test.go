package payment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
)

var now = time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestPayment(t *testing.T, items ...LineItem) *Payment {
	t.Helper()
	p, err := NewPayment(7, "usd", now)
	require.NoError(t, err)
	for _, li := range items {
		p.AddLineItem(li)
	}
	p.RecalculateTotals()
	return p
}

func TestLineItem_RecalculateTotals(t *testing.T) {
	tests := []struct {
		name     string
		item     LineItem
		subtotal string
		discount string
		tax      string
		total    string
	}{
		{
			name:     "plain",
			item:     LineItem{UnitPrice: dec("10"), Quantity: 3},
			subtotal: "30", discount: "0", tax: "0", total: "30",
		},
		{
			name: "percentage discount",
			item: LineItem{UnitPrice: dec("50"), Quantity: 1, Discountable: true,
				DiscountRate: dec("10"), DiscountType: vo.DiscountTypePercentage},
			subtotal: "50", discount: "5", tax: "0", total: "45",
		},
		{
			name: "absolute discount capped at subtotal",
			item: LineItem{UnitPrice: dec("20"), Quantity: 1, Discountable: true,
				DiscountRate: dec("35"), DiscountType: vo.DiscountTypeAbsolute},
			subtotal: "20", discount: "20", tax: "0", total: "0",
		},
		{
			name: "discount ignored when not discountable",
			item: LineItem{UnitPrice: dec("20"), Quantity: 1,
				DiscountRate: dec("50"), DiscountType: vo.DiscountTypePercentage},
			subtotal: "20", discount: "0", tax: "0", total: "20",
		},
		{
			name:     "exclusive tax on discounted base",
			item:     LineItem{UnitPrice: dec("100"), Quantity: 1, Discountable: true, DiscountRate: dec("10"), DiscountType: vo.DiscountTypePercentage, Taxable: true, TaxRate: dec("20")},
			subtotal: "100", discount: "10", tax: "18", total: "108",
		},
		{
			name:     "inclusive tax",
			item:     LineItem{UnitPrice: dec("120"), Quantity: 1, Taxable: true, TaxRate: dec("20"), TaxInclusive: true},
			subtotal: "120", discount: "0", tax: "20", total: "120",
		},
		{
			name:     "rate without taxable flag",
			item:     LineItem{UnitPrice: dec("10"), Quantity: 1, TaxRate: dec("20")},
			subtotal: "10", discount: "0", tax: "0", total: "10",
		},
		{
			name:     "rounds to cents",
			item:     LineItem{UnitPrice: dec("9.99"), Quantity: 1, Taxable: true, TaxRate: dec("7.5")},
			subtotal: "9.99", discount: "0", tax: "0.75", total: "10.74",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			li := tt.item
			li.RecalculateTotals()
			assert.True(t, dec(tt.subtotal).Equal(li.Subtotal), "subtotal %s", li.Subtotal)
			assert.True(t, dec(tt.discount).Equal(li.DiscountTotal), "discount %s", li.DiscountTotal)
			assert.True(t, dec(tt.tax).Equal(li.TaxTotal), "tax %s", li.TaxTotal)
			assert.True(t, dec(tt.total).Equal(li.Total), "total %s", li.Total)
		})
	}
}

func TestPayment_AddLineItemKeepsOrderAndReplaces(t *testing.T) {
	p := newTestPayment(t,
		LineItem{ID: "a", Title: "Plan", UnitPrice: dec("10"), Quantity: 1},
		LineItem{ID: "b", Title: "Setup", UnitPrice: dec("5"), Quantity: 1},
	)
	p.AddLineItem(LineItem{ID: "a", Title: "Plan v2", UnitPrice: dec("12"), Quantity: 1})
	p.RecalculateTotals()

	items := p.LineItems()
	require.Len(t, items, 2)
	assert.Equal(t, "Plan v2", items[0].Title)
	assert.Equal(t, "b", items[1].ID)
	assert.True(t, dec("17").Equal(p.Total()))
}

func TestPayment_RecalculateTotals(t *testing.T) {
	p := newTestPayment(t,
		LineItem{UnitPrice: dec("100"), Quantity: 1, Taxable: true, TaxRate: dec("10")},
		LineItem{UnitPrice: dec("50"), Quantity: 2, Discountable: true, DiscountRate: dec("20"), DiscountType: vo.DiscountTypePercentage},
	)

	assert.True(t, dec("200").Equal(p.Subtotal()))
	assert.True(t, dec("20").Equal(p.DiscountTotal()))
	assert.True(t, dec("10").Equal(p.TaxTotal()))
	assert.True(t, dec("190").Equal(p.Total()))
	assert.True(t, p.RefundTotal().IsZero())
	assert.Equal(t, "USD", p.Currency())
}

func TestPayment_IsPayableAndPaymentURL(t *testing.T) {
	p := newTestPayment(t, LineItem{UnitPrice: dec("10"), Quantity: 1})

	u, ok := p.PaymentURL("https://example.com/register")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/register?payment="+p.Hash(), u)

	require.NoError(t, p.SetStatus(vo.PaymentStatusCompleted, now))
	_, ok = p.PaymentURL("https://example.com/register")
	assert.False(t, ok)

	free := newTestPayment(t, LineItem{UnitPrice: dec("0"), Quantity: 1})
	assert.False(t, free.IsPayable())
}

func TestPayment_TaxBreakthrough(t *testing.T) {
	p := newTestPayment(t,
		LineItem{UnitPrice: dec("100"), Quantity: 1, Taxable: true, TaxRate: dec("10")},
		LineItem{UnitPrice: dec("50"), Quantity: 1, Taxable: true, TaxRate: dec("10")},
		LineItem{UnitPrice: dec("20"), Quantity: 1, Taxable: true, TaxRate: dec("5")},
		LineItem{UnitPrice: dec("20"), Quantity: 1},
	)

	got := p.TaxBreakthrough()
	require.Len(t, got, 2)
	assert.True(t, dec("15").Equal(got["10"]))
	assert.True(t, dec("1").Equal(got["5"]))
}

func TestPayment_RemoveNonRecurringItems(t *testing.T) {
	p := newTestPayment(t,
		LineItem{ID: "plan", UnitPrice: dec("30"), Quantity: 1, Recurring: true},
		LineItem{ID: "fee", Type: vo.LineItemTypeFee, UnitPrice: dec("15"), Quantity: 1},
	)
	p.RemoveNonRecurringItems()

	require.Len(t, p.LineItems(), 1)
	assert.Equal(t, "plan", p.LineItems()[0].ID)
	assert.True(t, dec("30").Equal(p.Total()))
}

func TestPayment_InvoiceNumber(t *testing.T) {
	p := newTestPayment(t)

	assert.Equal(t, p.Hash(), p.InvoiceNumber(InvoiceSettings{Scheme: vo.InvoiceSchemeReferenceCode}, now))

	seq := InvoiceSettings{Scheme: vo.InvoiceSchemeSequential, Prefix: "INV-%YEAR%%MONTH%-", NextNumber: 42}
	assert.Equal(t, "INV-202603-42 (provisional)", p.InvoiceNumber(seq, now))

	assert.True(t, p.AssignInvoiceNumber(7))
	assert.False(t, p.AssignInvoiceNumber(8))
	assert.Equal(t, "INV-202603-7", p.InvoiceNumber(seq, now))

	seq.Prefix = "%%YEAR%%/%%DAY%%/"
	assert.Equal(t, "2026/05/7", p.InvoiceNumber(seq, now))
}

func TestPayment_Refund(t *testing.T) {
	t.Run("full refund when amount empty", func(t *testing.T) {
		p := newTestPayment(t, LineItem{UnitPrice: dec("40"), Quantity: 1})
		require.NoError(t, p.SetStatus(vo.PaymentStatusCompleted, now))

		cancel, err := p.Refund(decimal.Zero, nil, now)
		require.NoError(t, err)
		assert.False(t, cancel)
		assert.Equal(t, vo.PaymentStatusRefunded, p.Status())

		items := p.LineItems()
		refund := items[len(items)-1]
		assert.Equal(t, vo.LineItemTypeRefund, refund.Type)
		assert.Equal(t, "Full Refund", refund.Title)
		assert.Equal(t, "Processed on March 5, 2026", refund.Description)
		assert.True(t, dec("-40").Equal(refund.UnitPrice))
		assert.True(t, dec("-40").Equal(p.RefundTotal()))
		assert.True(t, p.Total().IsZero())
	})

	t.Run("partial refund", func(t *testing.T) {
		p := newTestPayment(t, LineItem{UnitPrice: dec("40"), Quantity: 1})
		p.SetCancelMembershipOnRefund(true)

		cancel, err := p.Refund(dec("15"), nil, now)
		require.NoError(t, err)
		assert.True(t, cancel)
		assert.Equal(t, vo.PaymentStatusPartiallyRefunded, p.Status())
		assert.Equal(t, "Partial Refund", p.LineItems()[1].Title)
		assert.True(t, dec("25").Equal(p.Total()))
	})

	t.Run("explicit flag overrides payment setting", func(t *testing.T) {
		p := newTestPayment(t, LineItem{UnitPrice: dec("40"), Quantity: 1})
		p.SetCancelMembershipOnRefund(true)
		no := false

		cancel, err := p.Refund(dec("40"), &no, now)
		require.NoError(t, err)
		assert.False(t, cancel)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		p := newTestPayment(t, LineItem{UnitPrice: dec("40"), Quantity: 1})
		_, err := p.Refund(decimal.Zero, nil, now)
		require.NoError(t, err)

		_, err = p.Refund(dec("-1"), nil, now)
		assert.ErrorIs(t, err, ErrInvalidRefundAmount)
	})
}

func TestPayment_SetStatusFromRefunded(t *testing.T) {
	p := newTestPayment(t, LineItem{UnitPrice: dec("40"), Quantity: 1})
	_, err := p.Refund(decimal.Zero, nil, now)
	require.NoError(t, err)

	assert.ErrorIs(t, p.SetStatus(vo.PaymentStatusCompleted, now), ErrInvalidStatusTransition)
	assert.NoError(t, p.SetStatus(vo.PaymentStatusRefunded, now))
}

func TestPayment_Duplicate(t *testing.T) {
	p := newTestPayment(t, LineItem{ID: "x", UnitPrice: dec("40"), Quantity: 1})
	require.NoError(t, p.SetID(3))
	p.AssignInvoiceNumber(9)

	dup, err := p.Duplicate(now)
	require.NoError(t, err)

	assert.Zero(t, dup.ID())
	assert.NotEqual(t, p.Hash(), dup.Hash())
	assert.Nil(t, dup.SavedInvoiceNumber())
	assert.True(t, p.Total().Equal(dup.Total()))

	dup.AddLineItem(LineItem{ID: "y", UnitPrice: dec("1"), Quantity: 1})
	assert.Len(t, p.LineItems(), 1)
}
