package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/siteforge/siteforge/internal/domain/payment"
)

type LineItemResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	ProductID     uint            `json:"product_id,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxLabel      string          `json:"tax_label,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Recurring     bool            `json:"recurring"`
}

type PaymentResponse struct {
	ID               uint               `json:"id"`
	Hash             string             `json:"reference_code"`
	CustomerID       uint               `json:"customer_id"`
	MembershipID     uint               `json:"membership_id"`
	ParentID         uint               `json:"parent_id,omitempty"`
	ProductID        uint               `json:"product_id"`
	Currency         string             `json:"currency"`
	Status           string             `json:"status"`
	StatusLabel      string             `json:"status_label"`
	Gateway          string             `json:"gateway"`
	GatewayPaymentID string             `json:"gateway_payment_id"`
	DiscountCode     string             `json:"discount_code,omitempty"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	DiscountTotal    decimal.Decimal    `json:"discount_total"`
	TaxTotal         decimal.Decimal    `json:"tax_total"`
	RefundTotal      decimal.Decimal    `json:"refund_total"`
	Total            decimal.Decimal    `json:"total"`
	LineItems        []LineItemResponse `json:"line_items"`
	CreatedAt        time.Time          `json:"date_created"`
	UpdatedAt        time.Time          `json:"date_modified"`

	PaymentURL      string                     `json:"payment_url,omitempty"`
	InvoiceNumber   string                     `json:"invoice_number,omitempty"`
	TaxBreakthrough map[string]decimal.Decimal `json:"tax_breakthrough,omitempty"`
}

func ToPaymentResponse(p *payment.Payment) *PaymentResponse {
	items := p.LineItems()
	lines := make([]LineItemResponse, 0, len(items))
	for _, li := range items {
		lines = append(lines, LineItemResponse{
			ID:            li.ID,
			Type:          string(li.Type),
			Title:         li.Title,
			Description:   li.Description,
			ProductID:     li.ProductID,
			Quantity:      li.Quantity,
			UnitPrice:     li.UnitPrice,
			Subtotal:      li.Subtotal,
			DiscountTotal: li.DiscountTotal,
			TaxTotal:      li.TaxTotal,
			TaxRate:       li.TaxRate,
			TaxLabel:      li.TaxLabel,
			Total:         li.Total,
			Recurring:     li.Recurring,
		})
	}

	return &PaymentResponse{
		ID:               p.ID(),
		Hash:             p.Hash(),
		CustomerID:       p.CustomerID(),
		MembershipID:     p.MembershipID(),
		ParentID:         p.ParentID(),
		ProductID:        p.ProductID(),
		Currency:         p.Currency(),
		Status:           p.Status().String(),
		StatusLabel:      p.Status().Label(),
		Gateway:          p.Gateway(),
		GatewayPaymentID: p.GatewayPaymentID(),
		DiscountCode:     p.DiscountCode(),
		Subtotal:         p.Subtotal(),
		DiscountTotal:    p.DiscountTotal(),
		TaxTotal:         p.TaxTotal(),
		RefundTotal:      p.RefundTotal(),
		Total:            p.Total(),
		LineItems:        lines,
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
}

type RefundRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	CancelMembership *bool           `json:"cancel_membership"`
}

type CheckoutRequest struct {
	Gateway string `json:"gateway" binding:"required"`
}

type InvoiceLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InvoiceLine is a line item with amounts formatted for display.
type InvoiceLine struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Tax         string `json:"tax"`
	Total       string `json:"total"`
}

type InvoiceResponse struct {
	InvoiceNumber  string        `json:"invoice_number"`
	ReferenceCode  string        `json:"reference_code"`
	Status         string        `json:"status"`
	Date           string        `json:"date"`
	BillTo         []string      `json:"bill_to"`
	CustomerName   string        `json:"customer_name"`
	CustomerEmail  string        `json:"customer_email"`
	Lines          []InvoiceLine `json:"lines"`
	Subtotal       string        `json:"subtotal"`
	Discount       string        `json:"discount"`
	Tax            string        `json:"tax"`
	Refunded       string        `json:"refunded"`
	Total          string        `json:"total"`
	TaxBrackets    []TaxBracket  `json:"tax_brackets,omitempty"`
	PaymentURL     string        `json:"payment_url,omitempty"`
	PaymentPending bool          `json:"payment_pending"`
}

type TaxBracket struct {
	Rate   string `json:"rate"`
	Amount string `json:"amount"`
}
