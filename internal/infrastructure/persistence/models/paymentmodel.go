package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentModel struct {
	ID                       uint   `gorm:"primaryKey"`
	Hash                     string `gorm:"uniqueIndex;size:32;not null"`
	CustomerID               uint   `gorm:"index;not null"`
	MembershipID             uint   `gorm:"index;not null;default:0"`
	ParentID                 uint   `gorm:"not null;default:0"`
	ProductID                uint   `gorm:"not null;default:0"`
	Currency                 string `gorm:"size:3;not null"`
	LineItems                datatypes.JSONSlice[LineItem]
	Subtotal                 decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	RefundTotal              decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	TaxTotal                 decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	DiscountTotal            decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	Total                    decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	DiscountCode             string          `gorm:"size:64"`
	Status                   string          `gorm:"size:20;not null;index"`
	Gateway                  string          `gorm:"size:50;index:idx_payment_gateway_ref"`
	GatewayPaymentID         string          `gorm:"size:128;index:idx_payment_gateway_ref"`
	InvoiceNumber            *int            `gorm:"uniqueIndex"`
	CancelMembershipOnRefund *bool
	Version                  int `gorm:"not null;default:1"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}

// LineItem is the stored form of a payment line item.
type LineItem struct {
	ID                      string          `json:"id"`
	Type                    string          `json:"type"`
	Title                   string          `json:"title"`
	Description             string          `json:"description,omitempty"`
	ProductID               uint            `json:"product_id,omitempty"`
	Quantity                int             `json:"quantity"`
	UnitPrice               decimal.Decimal `json:"unit_price"`
	Discountable            bool            `json:"discountable"`
	DiscountRate            decimal.Decimal `json:"discount_rate"`
	DiscountType            string          `json:"discount_type,omitempty"`
	ApplyDiscountToRenewals bool            `json:"apply_discount_to_renewals"`
	Taxable                 bool            `json:"taxable"`
	TaxRate                 decimal.Decimal `json:"tax_rate"`
	TaxLabel                string          `json:"tax_label,omitempty"`
	TaxInclusive            bool            `json:"tax_inclusive"`
	Recurring               bool            `json:"recurring"`
	Duration                int             `json:"duration,omitempty"`
	DurationUnit            string          `json:"duration_unit,omitempty"`
	Subtotal                decimal.Decimal `json:"subtotal"`
	DiscountTotal           decimal.Decimal `json:"discount_total"`
	TaxTotal                decimal.Decimal `json:"tax_total"`
	Total                   decimal.Decimal `json:"total"`
}
