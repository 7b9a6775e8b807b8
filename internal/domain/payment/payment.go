package payment

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	vo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/id"
)

// Snapshot is the full persisted state of a payment.
type Snapshot struct {
	ID                       uint
	Hash                     string
	CustomerID               uint
	MembershipID             uint
	ParentID                 uint
	ProductID                uint
	Currency                 string
	LineItems                []LineItem
	Subtotal                 decimal.Decimal
	RefundTotal              decimal.Decimal
	TaxTotal                 decimal.Decimal
	DiscountTotal            decimal.Decimal
	Total                    decimal.Decimal
	DiscountCode             string
	Status                   vo.PaymentStatus
	Gateway                  string
	GatewayPaymentID         string
	InvoiceNumber            *int
	CancelMembershipOnRefund *bool
	Version                  int
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Payment is a charge against a customer, optionally tied to a membership.
type Payment struct {
	s Snapshot
}

// NewPayment creates a pending payment with a fresh reference code.
func NewPayment(customerID uint, currency string, now time.Time) (*Payment, error) {
	if customerID == 0 {
		return nil, ErrCustomerRequired
	}

	hash, err := id.NewPaymentHash()
	if err != nil {
		return nil, fmt.Errorf("failed to generate payment hash: %w", err)
	}

	return &Payment{s: Snapshot{
		Hash:          hash,
		CustomerID:    customerID,
		Currency:      strings.ToUpper(currency),
		Status:        vo.PaymentStatusPending,
		Subtotal:      decimal.Zero,
		RefundTotal:   decimal.Zero,
		TaxTotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		Total:         decimal.Zero,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}}, nil
}

// ReconstructPayment rebuilds a payment from persistence.
func ReconstructPayment(s Snapshot) (*Payment, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("payment ID cannot be zero")
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", s.Status)
	}
	return &Payment{s: s}, nil
}

// Snapshot returns a copy of the payment state. Line items are copied.
func (p *Payment) Snapshot() Snapshot {
	s := p.s
	s.LineItems = p.LineItems()
	return s
}

func (p *Payment) ID() uint                        { return p.s.ID }
func (p *Payment) Hash() string                    { return p.s.Hash }
func (p *Payment) CustomerID() uint                { return p.s.CustomerID }
func (p *Payment) MembershipID() uint              { return p.s.MembershipID }
func (p *Payment) ParentID() uint                  { return p.s.ParentID }
func (p *Payment) ProductID() uint                 { return p.s.ProductID }
func (p *Payment) Currency() string                { return p.s.Currency }
func (p *Payment) Subtotal() decimal.Decimal       { return p.s.Subtotal }
func (p *Payment) RefundTotal() decimal.Decimal    { return p.s.RefundTotal }
func (p *Payment) TaxTotal() decimal.Decimal       { return p.s.TaxTotal }
func (p *Payment) DiscountTotal() decimal.Decimal  { return p.s.DiscountTotal }
func (p *Payment) Total() decimal.Decimal          { return p.s.Total }
func (p *Payment) DiscountCode() string            { return p.s.DiscountCode }
func (p *Payment) Status() vo.PaymentStatus        { return p.s.Status }
func (p *Payment) Gateway() string                 { return p.s.Gateway }
func (p *Payment) GatewayPaymentID() string        { return p.s.GatewayPaymentID }
func (p *Payment) SavedInvoiceNumber() *int        { return p.s.InvoiceNumber }
func (p *Payment) CancelMembershipOnRefund() *bool { return p.s.CancelMembershipOnRefund }
func (p *Payment) Version() int                    { return p.s.Version }
func (p *Payment) CreatedAt() time.Time            { return p.s.CreatedAt }
func (p *Payment) UpdatedAt() time.Time            { return p.s.UpdatedAt }

// SetID sets the payment ID (only for persistence layer use)
func (p *Payment) SetID(id uint) error {
	if p.s.ID != 0 {
		return fmt.Errorf("payment ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("payment ID cannot be zero")
	}
	p.s.ID = id
	return nil
}

func (p *Payment) IncrementVersion() {
	p.s.Version++
}

func (p *Payment) SetMembership(membershipID uint) {
	p.s.MembershipID = membershipID
}

func (p *Payment) SetParent(parentID uint) {
	p.s.ParentID = parentID
}

func (p *Payment) SetProduct(productID uint) {
	p.s.ProductID = productID
}

func (p *Payment) SetDiscountCode(code string) {
	p.s.DiscountCode = code
}

func (p *Payment) SetGateway(gateway, gatewayPaymentID string, now time.Time) {
	p.s.Gateway = gateway
	p.s.GatewayPaymentID = gatewayPaymentID
	p.s.UpdatedAt = now
}

func (p *Payment) SetCancelMembershipOnRefund(cancel bool) {
	p.s.CancelMembershipOnRefund = &cancel
}

// AssignInvoiceNumber stores a sequential invoice number. An already
// numbered payment keeps its number.
func (p *Payment) AssignInvoiceNumber(n int) bool {
	if p.s.InvoiceNumber != nil || n <= 0 {
		return false
	}
	p.s.InvoiceNumber = &n
	return true
}

func (p *Payment) SetStatus(target vo.PaymentStatus, now time.Time) error {
	if !target.IsValid() {
		return fmt.Errorf("invalid payment status: %s", target)
	}
	if p.s.Status == target {
		return nil
	}
	if !p.s.Status.CanTransitionTo(target) {
		return ErrInvalidTransition(p.s.Status.String(), target.String())
	}
	p.s.Status = target
	p.s.UpdatedAt = now
	return nil
}

// LineItems returns the items in insertion order.
func (p *Payment) LineItems() []LineItem {
	items := make([]LineItem, len(p.s.LineItems))
	copy(items, p.s.LineItems)
	return items
}

// AddLineItem appends li, or replaces the item with the same ID. Items
// without an ID get a random one.
func (p *Payment) AddLineItem(li LineItem) {
	if li.ID == "" {
		li.ID = uuid.NewString()
	}
	for i := range p.s.LineItems {
		if p.s.LineItems[i].ID == li.ID {
			p.s.LineItems[i] = li
			return
		}
	}
	p.s.LineItems = append(p.s.LineItems, li)
}

// SetLineItems replaces all line items.
func (p *Payment) SetLineItems(items []LineItem) {
	p.s.LineItems = nil
	for _, li := range items {
		p.AddLineItem(li)
	}
}

// RecalculateTotals recomputes every line item and the payment totals.
func (p *Payment) RecalculateTotals() {
	subtotal, tax, discount, total, refund := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero

	for i := range p.s.LineItems {
		li := &p.s.LineItems[i]
		li.RecalculateTotals()

		tax = tax.Add(li.TaxTotal)
		subtotal = subtotal.Add(li.Subtotal)
		discount = discount.Add(li.DiscountTotal)
		total = total.Add(li.Total)
		if li.IsRefund() {
			refund = refund.Add(li.Subtotal)
		}
	}

	p.s.Subtotal = subtotal
	p.s.TaxTotal = tax
	p.s.DiscountTotal = discount
	p.s.Total = total
	p.s.RefundTotal = refund
}

// RemoveNonRecurringItems drops setup fees and other one-off lines.
func (p *Payment) RemoveNonRecurringItems() {
	kept := p.s.LineItems[:0]
	for _, li := range p.s.LineItems {
		if li.Recurring {
			kept = append(kept, li)
		}
	}
	p.s.LineItems = kept
	p.RecalculateTotals()
}

func (p *Payment) IsPayable() bool {
	return p.s.Total.IsPositive() && p.s.Status.IsPayable()
}

// PaymentURL returns the link where the customer can pay this payment.
func (p *Payment) PaymentURL(registrationURL string) (string, bool) {
	if !p.IsPayable() {
		return "", false
	}
	u := BuildPaymentURL(registrationURL, p.s.Hash)
	return u, u != ""
}

// BuildPaymentURL adds the payment hash to the registration page address.
// It returns "" when registrationURL does not parse.
func BuildPaymentURL(registrationURL, hash string) string {
	u, err := url.Parse(registrationURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("payment", hash)
	u.RawQuery = q.Encode()
	return u.String()
}

// TaxBreakthrough sums tax per rate. Lines without a rate are skipped.
func (p *Payment) TaxBreakthrough() map[string]decimal.Decimal {
	brackets := make(map[string]decimal.Decimal)
	for _, li := range p.s.LineItems {
		if li.TaxRate.IsZero() {
			continue
		}
		key := li.TaxRate.String()
		brackets[key] = brackets[key].Add(li.TaxTotal)
	}
	return brackets
}

// InvoiceSettings are the billing settings that shape invoice numbers.
type InvoiceSettings struct {
	Scheme     vo.InvoiceScheme
	Prefix     string
	NextNumber int
}

var prefixTokens = []string{"%%YEAR%%", "%%MONTH%%", "%%DAY%%", "%YEAR%", "%MONTH%", "%DAY%"}

// InvoiceNumber renders the number shown on the invoice. Under the sequential
// scheme an unnumbered payment shows the next number marked provisional.
func (p *Payment) InvoiceNumber(settings InvoiceSettings, now time.Time) string {
	if settings.Scheme != vo.InvoiceSchemeSequential {
		return p.s.Hash
	}

	provisional := false
	number := 0
	if p.s.InvoiceNumber != nil {
		number = *p.s.InvoiceNumber
	} else {
		provisional = true
		number = settings.NextNumber
		if number <= 0 {
			number = 1
		}
	}

	now = now.UTC()
	values := map[string]string{
		"YEAR":  now.Format("2006"),
		"MONTH": now.Format("01"),
		"DAY":   now.Format("02"),
	}
	prefix := settings.Prefix
	for _, token := range prefixTokens {
		prefix = strings.ReplaceAll(prefix, token, values[strings.Trim(token, "%")])
	}

	suffix := ""
	if provisional {
		suffix = "(provisional)"
	}
	return strings.TrimSpace(fmt.Sprintf("%s%s %s", prefix, strconv.Itoa(number), suffix))
}

// Refund records a refund of amount. A zero amount refunds the whole total.
// cancelMembership overrides the payment setting when non-nil. It reports
// whether the related membership must be cancelled.
func (p *Payment) Refund(amount decimal.Decimal, cancelMembership *bool, now time.Time) (bool, error) {
	if amount.IsNegative() {
		return false, ErrInvalidRefundAmount
	}
	if amount.IsZero() {
		amount = p.s.Total
	}

	shouldCancel := false
	switch {
	case cancelMembership != nil:
		shouldCancel = *cancelMembership
	case p.s.CancelMembershipOnRefund != nil:
		shouldCancel = *p.s.CancelMembershipOnRefund
	}

	title := "Partial Refund"
	status := vo.PaymentStatusPartiallyRefunded
	if amount.GreaterThanOrEqual(p.s.Total) {
		title = "Full Refund"
		status = vo.PaymentStatusRefunded
	}

	if err := p.SetStatus(status, now); err != nil {
		return false, err
	}

	p.AddLineItem(LineItem{
		ID:          uuid.NewString(),
		Type:        vo.LineItemTypeRefund,
		Title:       title,
		Description: "Processed on " + biztime.FormatDate(now),
		UnitPrice:   amount.Neg(),
		Quantity:    1,
	})
	p.RecalculateTotals()
	p.s.UpdatedAt = now

	return shouldCancel, nil
}

// Duplicate returns an unsaved copy with its own reference code.
func (p *Payment) Duplicate(now time.Time) (*Payment, error) {
	dup, err := NewPayment(p.s.CustomerID, p.s.Currency, now)
	if err != nil {
		return nil, err
	}

	hash := dup.s.Hash
	dup.s = p.Snapshot()
	dup.s.ID = 0
	dup.s.Hash = hash
	dup.s.InvoiceNumber = nil
	dup.s.Version = 1
	dup.s.CreatedAt = now
	dup.s.UpdatedAt = now
	return dup, nil
}
