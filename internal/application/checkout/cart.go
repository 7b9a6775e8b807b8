package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/siteforge/siteforge/internal/domain/discount"
	"github.com/siteforge/siteforge/internal/domain/membership"
	membershipvo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/product"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// Cart is the priced result of a checkout request. It is never persisted;
// memberships and payments are derived from it.
type Cart struct {
	cartType       CartType
	plan           *product.Product
	products       []*product.Product
	quantities     map[uint]int
	period         shared.Period
	currency       string
	discountCode   *discount.DiscountCode
	lineItems      []payment.LineItem
	recurringItems []payment.LineItem
	hasTrial       bool
	trial          shared.Period
	errs           []Error
}

func (c *Cart) Type() CartType                       { return c.cartType }
func (c *Cart) Plan() *product.Product               { return c.plan }
func (c *Cart) Products() []*product.Product         { return c.products }
func (c *Cart) Period() shared.Period                { return c.period }
func (c *Cart) Currency() string                     { return c.currency }
func (c *Cart) DiscountCode() *discount.DiscountCode { return c.discountCode }
func (c *Cart) HasTrial() bool                       { return c.hasTrial }
func (c *Cart) Errors() []Error                      { return c.errs }
func (c *Cart) IsValid() bool                        { return len(c.errs) == 0 }

// LineItems returns the lines of the first payment.
func (c *Cart) LineItems() []payment.LineItem {
	items := make([]payment.LineItem, len(c.lineItems))
	copy(items, c.lineItems)
	return items
}

// Total is what the first payment charges.
func (c *Cart) Total() decimal.Decimal {
	return sumTotals(c.lineItems)
}

// RecurringTotal is what every renewal charges.
func (c *Cart) RecurringTotal() decimal.Decimal {
	return sumTotals(c.recurringItems)
}

func (c *Cart) IsRecurring() bool {
	return len(c.recurringItems) > 0
}

// TrialEnd is when the free trial started at now ends.
func (c *Cart) TrialEnd(now time.Time) *time.Time {
	if !c.hasTrial {
		return nil
	}
	t := c.trial.AddTo(now).UTC()
	return &t
}

func (c *Cart) addError(code, format string, args ...any) {
	c.errs = append(c.errs, Error{Code: code, Message: fmt.Sprintf(format, args...)})
}

// MembershipData is the membership a checkout produces.
type MembershipData struct {
	Terms          membership.Terms
	Status         membershipvo.MembershipStatus
	DateTrialEnd   *time.Time
	DateExpiration *time.Time
	DiscountCode   string
}

func (c *Cart) ToMembershipData(now time.Time) MembershipData {
	terms := membership.Terms{
		Currency:      c.currency,
		Period:        c.period,
		Amount:        c.RecurringTotal(),
		InitialAmount: c.Total(),
		Recurring:     c.IsRecurring(),
	}
	if c.plan != nil {
		terms.PlanID = c.plan.ID()
		terms.BillingCycles = c.plan.BillingCycles()
	}
	for _, p := range c.products {
		if c.plan != nil && p.ID() == c.plan.ID() {
			continue
		}
		terms.Addons = append(terms.Addons, membership.Addon{ProductID: p.ID(), Quantity: c.quantity(p.ID())})
	}

	data := MembershipData{
		Terms:        terms,
		Status:       membershipvo.StatusPending,
		DateTrialEnd: c.TrialEnd(now),
	}
	switch {
	case data.DateTrialEnd != nil:
		exp := *data.DateTrialEnd
		data.DateExpiration = &exp
	case terms.Recurring && c.period.IsValid():
		exp := c.period.AddTo(now).UTC()
		data.DateExpiration = &exp
	}
	if c.discountCode != nil {
		data.DiscountCode = c.discountCode.Code()
	}
	return data
}

// PaymentData is the first payment a checkout produces.
type PaymentData struct {
	Currency     string
	LineItems    []payment.LineItem
	ProductID    uint
	DiscountCode string
	Status       paymentvo.PaymentStatus
}

func (c *Cart) ToPaymentData() PaymentData {
	data := PaymentData{
		Currency:  c.currency,
		LineItems: c.LineItems(),
		Status:    paymentvo.PaymentStatusPending,
	}
	if c.plan != nil {
		data.ProductID = c.plan.ID()
	}
	if c.discountCode != nil {
		data.DiscountCode = c.discountCode.Code()
	}
	return data
}

// NewPayment builds an unsaved pending payment for customerID from d.
func (d PaymentData) NewPayment(customerID uint, now time.Time) (*payment.Payment, error) {
	p, err := payment.NewPayment(customerID, d.Currency, now)
	if err != nil {
		return nil, err
	}
	p.SetLineItems(d.LineItems)
	p.SetProduct(d.ProductID)
	p.SetDiscountCode(d.DiscountCode)
	p.RecalculateTotals()
	return p, nil
}

func (c *Cart) quantity(productID uint) int {
	if q := c.quantities[productID]; q > 0 {
		return q
	}
	return 1
}

// Builder prices carts against the product catalog.
type Builder struct {
	catalog         ProductCatalog
	discounts       DiscountLookup
	taxes           TaxRates
	defaultCurrency string
	logger          logger.Interface
}

func NewBuilder(
	catalog ProductCatalog,
	discounts DiscountLookup,
	taxes TaxRates,
	defaultCurrency string,
	logger logger.Interface,
) *Builder {
	return &Builder{
		catalog:         catalog,
		discounts:       discounts,
		taxes:           taxes,
		defaultCurrency: strings.ToUpper(defaultCurrency),
		logger:          logger,
	}
}

// Build prices in. Problems the customer can fix are reported through
// Cart.Errors; the returned error is reserved for lookup failures.
func (b *Builder) Build(ctx context.Context, in Input, now time.Time) (*Cart, error) {
	if in.Type == "" {
		in.Type = CartTypeNew
	}
	cart := &Cart{cartType: in.Type, quantities: make(map[uint]int)}

	m := in.Membership
	if m == nil && in.Type != CartTypeNew && in.Type != CartTypeDisplay {
		cart.addError("missing_membership", "A membership is required for %s carts.", in.Type)
		return cart, nil
	}

	refs := in.Products
	if len(refs) == 0 && m != nil && in.Type != CartTypeRetry {
		refs = membershipProductRefs(m, cart.quantities)
	}
	if err := b.resolveProducts(ctx, cart, refs); err != nil {
		return nil, err
	}

	if err := b.resolvePeriod(cart, in, m); err != nil {
		cart.addError("invalid_duration", "%s", err.Error())
	}
	cart.currency = b.resolveCurrency(cart, in, m)

	if err := b.resolveDiscount(ctx, cart, in, m, now); err != nil {
		return nil, err
	}

	if in.Type == CartTypeRetry {
		b.copyRetryItems(cart, in.RetryPayment)
		return cart, nil
	}

	if in.Type == CartTypeNew && cart.plan == nil && len(cart.products) > 0 {
		cart.addError("no_plan", "The cart must contain a plan.")
	}

	b.buildLineItems(cart, in)

	if in.Type == CartTypeUpgrade && m != nil {
		addUpgradeCredit(cart, m, now)
	}

	if in.Type == CartTypeNew && cart.plan != nil && cart.plan.HasTrial() && !in.HadTrial {
		cart.hasTrial = true
		cart.trial = cart.plan.Trial()
		for i := range cart.lineItems {
			if cart.lineItems[i].Type == paymentvo.LineItemTypeProduct {
				cart.lineItems[i].UnitPrice = decimal.Zero
			}
		}
	}

	recalculate(cart.lineItems)
	recalculate(cart.recurringItems)
	return cart, nil
}

func membershipProductRefs(m *membership.Membership, quantities map[uint]int) []string {
	terms := m.Terms()
	var refs []string
	if terms.PlanID != 0 {
		refs = append(refs, strconv.FormatUint(uint64(terms.PlanID), 10))
	}
	for _, a := range terms.Addons {
		refs = append(refs, strconv.FormatUint(uint64(a.ProductID), 10))
		quantities[a.ProductID] = a.Quantity
	}
	return refs
}

func (b *Builder) resolveProducts(ctx context.Context, cart *Cart, refs []string) error {
	seen := make(map[uint]bool)
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}

		var (
			p   *product.Product
			err error
		)
		if id, convErr := strconv.ParseUint(ref, 10, 64); convErr == nil {
			p, err = b.catalog.GetByID(ctx, uint(id))
		} else {
			p, err = b.catalog.GetBySlug(ctx, ref)
		}
		if err != nil {
			if errors.Is(err, product.ErrProductNotFound) {
				cart.addError("invalid_product", "The product %s does not exist.", ref)
				continue
			}
			return fmt.Errorf("failed to load product %s: %w", ref, err)
		}

		if seen[p.ID()] {
			continue
		}
		seen[p.ID()] = true
		cart.products = append(cart.products, p)
		if cart.plan == nil && p.Type() == product.TypePlan {
			cart.plan = p
		}
	}
	return nil
}

func (b *Builder) resolvePeriod(cart *Cart, in Input, m *membership.Membership) error {
	if in.Duration > 0 {
		unit, err := shared.ParseDurationUnit(in.DurationUnit)
		if err != nil {
			return err
		}
		cart.period = shared.Period{Duration: in.Duration, Unit: unit}
		return nil
	}
	if m != nil && m.Period().IsValid() {
		cart.period = m.Period()
		return nil
	}
	if cart.plan != nil {
		cart.period = cart.plan.Period()
	}
	return nil
}

func (b *Builder) resolveCurrency(cart *Cart, in Input, m *membership.Membership) string {
	switch {
	case in.Currency != "":
		return strings.ToUpper(in.Currency)
	case m != nil && m.Currency() != "":
		return m.Currency()
	case cart.plan != nil && cart.plan.Currency() != "":
		return cart.plan.Currency()
	}
	return b.defaultCurrency
}

func (b *Builder) resolveDiscount(ctx context.Context, cart *Cart, in Input, m *membership.Membership, now time.Time) error {
	code := in.DiscountCode
	if code == "" && m != nil && in.Type.IsRenewalLike() {
		code = m.DiscountCode()
	}
	code = discount.NormalizeCode(code)
	if code == "" || b.discounts == nil {
		return nil
	}
	inherited := carriesMembershipDiscount(in, m, code)

	dc, err := b.discounts.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, discount.ErrDiscountNotFound) {
			if inherited {
				b.logger.Warnw("membership discount code no longer exists", "code", code, "membership_id", m.ID())
				return nil
			}
			cart.addError("discount_code", "This coupon code is not valid.")
			return nil
		}
		return fmt.Errorf("failed to load discount code: %w", err)
	}

	// A code the membership signed up with stays honored after it expires,
	// is deactivated or runs out of uses.
	if !inherited {
		if err := dc.Validate(now); err != nil {
			cart.addError("discount_code", "%s", capitalize(err.Error()))
			return nil
		}
	}
	if in.Type.IsRenewalLike() && !dc.ApplyToRenewals() {
		return nil
	}
	cart.discountCode = dc
	return nil
}

// carriesMembershipDiscount reports whether code is the membership's own
// discount code being priced into one of its later payments.
func carriesMembershipDiscount(in Input, m *membership.Membership, code string) bool {
	if m == nil || code != discount.NormalizeCode(m.DiscountCode()) {
		return false
	}
	return in.Type.IsRenewalLike() || (in.Type == CartTypeNew && in.HadTrial)
}

func (b *Builder) buildLineItems(cart *Cart, in Input) {
	dc := cart.discountCode

	for _, p := range cart.products {
		price, ok := p.PriceFor(cart.period)
		if !ok {
			cart.addError("invalid_period", "%s is not available for %s.", p.Name(), cart.period.Label())
			continue
		}

		rate, label := decimal.Zero, ""
		if p.IsTaxable() && b.taxes != nil {
			rate, label = b.taxes.RateFor(in.Country, p.TaxCategory())
		}

		item := payment.LineItem{
			Type:         paymentvo.LineItemTypeProduct,
			Title:        p.Name(),
			ProductID:    p.ID(),
			Quantity:     cart.quantity(p.ID()),
			UnitPrice:    price,
			Discountable: true,
			Taxable:      p.IsTaxable(),
			TaxRate:      rate,
			TaxLabel:     label,
			Recurring:    p.IsRecurring(),
		}
		if p.IsRecurring() {
			item.Period = cart.period
			item.Description = cart.period.Label()
		}
		if dc != nil {
			item.DiscountRate = dc.Value()
			item.DiscountType = dc.Type()
			item.ApplyDiscountToRenewals = dc.ApplyToRenewals()
		}
		cart.lineItems = append(cart.lineItems, item)

		if item.Recurring {
			renewal := item
			if !item.ApplyDiscountToRenewals {
				renewal.DiscountRate = decimal.Zero
			}
			cart.recurringItems = append(cart.recurringItems, renewal)
		}

		if cart.cartType == CartTypeNew && p.SetupFee().IsPositive() {
			fee := payment.LineItem{
				Type:         paymentvo.LineItemTypeFee,
				Title:        "Signup Fee - " + p.Name(),
				ProductID:    p.ID(),
				Quantity:     1,
				UnitPrice:    p.SetupFee(),
				Discountable: true,
				Taxable:      p.IsTaxable(),
				TaxRate:      rate,
				TaxLabel:     label,
			}
			if dc != nil {
				fee.DiscountRate = dc.SetupFeeValue()
				fee.DiscountType = dc.SetupFeeType()
			}
			cart.lineItems = append(cart.lineItems, fee)
		}
	}
}

func (b *Builder) copyRetryItems(cart *Cart, p *payment.Payment) {
	if p == nil {
		cart.addError("missing_payment", "A payment is required for retry carts.")
		return
	}
	for _, li := range p.LineItems() {
		if li.IsRefund() {
			continue
		}
		cart.lineItems = append(cart.lineItems, li)
		if li.Recurring {
			cart.recurringItems = append(cart.recurringItems, li)
		}
	}
	cart.currency = p.Currency()
	recalculate(cart.lineItems)
	recalculate(cart.recurringItems)
}

// addUpgradeCredit credits the unused part of the current period.
func addUpgradeCredit(cart *Cart, m *membership.Membership, now time.Time) {
	exp := m.DateExpiration()
	period := m.Period()
	if exp == nil || !exp.After(now) || !period.IsValid() || !m.Amount().IsPositive() {
		return
	}

	start := shared.Period{Duration: -period.Duration, Unit: period.Unit}.AddTo(*exp)
	total := exp.Sub(start)
	if total <= 0 {
		return
	}
	remaining := exp.Sub(now)
	ratio := decimal.NewFromInt(int64(remaining)).Div(decimal.NewFromInt(int64(total)))
	credit := m.Amount().Mul(ratio).Round(2)
	if !credit.IsPositive() {
		return
	}

	cart.lineItems = append(cart.lineItems, payment.LineItem{
		Type:        paymentvo.LineItemTypeCredit,
		Title:       "Credit",
		Description: "Unused time on the current plan",
		Quantity:    1,
		UnitPrice:   credit.Neg(),
	})
}

func recalculate(items []payment.LineItem) {
	for i := range items {
		items[i].RecalculateTotals()
	}
}

func sumTotals(items []payment.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Total)
	}
	return total
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
