package payment

import (
	"github.com/shopspring/decimal"

	vo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
)

var hundred = decimal.NewFromInt(100)

// LineItem is one billed line of a payment. Totals are derived by
// RecalculateTotals and stored alongside the inputs.
type LineItem struct {
	ID          string          `json:"id"`
	Type        vo.LineItemType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	ProductID   uint            `json:"product_id,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`

	Discountable            bool            `json:"discountable"`
	DiscountRate            decimal.Decimal `json:"discount_rate"`
	DiscountType            vo.DiscountType `json:"discount_type,omitempty"`
	ApplyDiscountToRenewals bool            `json:"apply_discount_to_renewals"`
	Taxable                 bool            `json:"taxable"`
	TaxRate                 decimal.Decimal `json:"tax_rate"`
	TaxLabel                string          `json:"tax_label,omitempty"`
	TaxInclusive            bool            `json:"tax_inclusive"`
	Recurring               bool            `json:"recurring"`
	Period                  shared.Period   `json:"period"`

	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	Total         decimal.Decimal `json:"total"`
}

// RecalculateTotals derives subtotal, discount, tax and total from the
// item inputs. All amounts are rounded to two decimals.
func (li *LineItem) RecalculateTotals() {
	qty := li.Quantity
	if qty <= 0 {
		qty = 1
		li.Quantity = 1
	}

	subtotal := li.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)

	discount := decimal.Zero
	if li.Discountable && li.DiscountRate.IsPositive() {
		switch li.DiscountType {
		case vo.DiscountTypeAbsolute:
			discount = decimal.Min(li.DiscountRate, subtotal)
		default:
			discount = subtotal.Mul(li.DiscountRate).Div(hundred)
		}
		discount = decimal.Max(discount, decimal.Zero).Round(2)
	}

	base := subtotal.Sub(discount)
	tax := decimal.Zero
	total := base

	if li.Taxable && li.TaxRate.IsPositive() {
		rate := li.TaxRate.Div(hundred)
		if li.TaxInclusive {
			tax = base.Sub(base.Div(decimal.NewFromInt(1).Add(rate))).Round(2)
		} else {
			tax = base.Mul(rate).Round(2)
			total = base.Add(tax)
		}
	}

	li.Subtotal = subtotal
	li.DiscountTotal = discount
	li.TaxTotal = tax
	li.Total = total.Round(2)
}

func (li *LineItem) IsRefund() bool {
	return li.Type == vo.LineItemTypeRefund
}
