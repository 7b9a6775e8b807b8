package product

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
)

type Type string

const (
	TypePlan    Type = "plan"
	TypePackage Type = "package"
	TypeService Type = "service"
)

func (t Type) IsValid() bool {
	return t == TypePlan || t == TypePackage || t == TypeService
}

type PricingType string

const (
	PricingPaid      PricingType = "paid"
	PricingFree      PricingType = "free"
	PricingContactUs PricingType = "contact_us"
)

func (t PricingType) IsValid() bool {
	return t == PricingPaid || t == PricingFree || t == PricingContactUs
}

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PriceVariation is an alternative price for a different billing period.
type PriceVariation struct {
	Duration int                 `json:"duration" yaml:"duration"`
	Unit     shared.DurationUnit `json:"duration_unit" yaml:"duration_unit"`
	Amount   decimal.Decimal     `json:"amount" yaml:"amount"`
}

func (v PriceVariation) Period() shared.Period {
	return shared.Period{Duration: v.Duration, Unit: v.Unit}
}

// Attributes hold every editable product field.
type Attributes struct {
	Slug            string
	Name            string
	Description     string
	Type            Type
	PricingType     PricingType
	Currency        string
	Amount          decimal.Decimal
	SetupFee        decimal.Decimal
	Recurring       bool
	Period          shared.Period
	BillingCycles   int
	Trial           shared.Period
	Taxable         bool
	TaxCategory     string
	Active          bool
	PriceVariations []PriceVariation
}

// Product is a sellable plan, package or service.
type Product struct {
	id        uint
	attrs     Attributes
	version   int
	createdAt time.Time
	updatedAt time.Time
}

func NewProduct(attrs Attributes, now time.Time) (*Product, error) {
	attrs.Currency = strings.ToUpper(attrs.Currency)
	if attrs.PricingType == "" {
		attrs.PricingType = PricingPaid
	}
	if err := validate(attrs); err != nil {
		return nil, err
	}
	return &Product{attrs: attrs, version: 1, createdAt: now, updatedAt: now}, nil
}

func ReconstructProduct(id uint, attrs Attributes, version int, createdAt, updatedAt time.Time) (*Product, error) {
	if id == 0 {
		return nil, fmt.Errorf("product ID cannot be zero")
	}
	return &Product{id: id, attrs: attrs, version: version, createdAt: createdAt, updatedAt: updatedAt}, nil
}

func validate(a Attributes) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !slugRegex.MatchString(a.Slug) {
		return fmt.Errorf("%w: invalid slug %q", ErrInvalidProduct, a.Slug)
	}
	if !a.Type.IsValid() {
		return fmt.Errorf("%w: invalid type %q", ErrInvalidProduct, a.Type)
	}
	if !a.PricingType.IsValid() {
		return fmt.Errorf("%w: invalid pricing type %q", ErrInvalidProduct, a.PricingType)
	}
	if a.Amount.IsNegative() || a.SetupFee.IsNegative() {
		return fmt.Errorf("%w: amounts cannot be negative", ErrInvalidProduct)
	}
	if a.Recurring && !a.Period.IsValid() {
		return fmt.Errorf("%w: recurring products need a billing period", ErrInvalidProduct)
	}
	if !a.Trial.IsZero() && !a.Trial.IsValid() {
		return fmt.Errorf("%w: invalid trial period", ErrInvalidProduct)
	}
	for _, v := range a.PriceVariations {
		if !v.Period().IsValid() || v.Amount.IsNegative() {
			return fmt.Errorf("%w: invalid price variation %d %s", ErrInvalidProduct, v.Duration, v.Unit)
		}
	}
	return nil
}

func (p *Product) ID() uint                          { return p.id }
func (p *Product) Attributes() Attributes            { return p.attrs }
func (p *Product) Slug() string                      { return p.attrs.Slug }
func (p *Product) Name() string                      { return p.attrs.Name }
func (p *Product) Type() Type                        { return p.attrs.Type }
func (p *Product) PricingType() PricingType          { return p.attrs.PricingType }
func (p *Product) Currency() string                  { return p.attrs.Currency }
func (p *Product) Amount() decimal.Decimal           { return p.attrs.Amount }
func (p *Product) SetupFee() decimal.Decimal         { return p.attrs.SetupFee }
func (p *Product) IsRecurring() bool                 { return p.attrs.Recurring }
func (p *Product) Period() shared.Period             { return p.attrs.Period }
func (p *Product) BillingCycles() int                { return p.attrs.BillingCycles }
func (p *Product) Trial() shared.Period              { return p.attrs.Trial }
func (p *Product) HasTrial() bool                    { return p.attrs.Trial.IsValid() }
func (p *Product) IsTaxable() bool                   { return p.attrs.Taxable }
func (p *Product) TaxCategory() string               { return p.attrs.TaxCategory }
func (p *Product) IsActive() bool                    { return p.attrs.Active }
func (p *Product) IsFree() bool                      { return p.attrs.PricingType == PricingFree }
func (p *Product) PriceVariations() []PriceVariation { return p.attrs.PriceVariations }
func (p *Product) Version() int                      { return p.version }
func (p *Product) CreatedAt() time.Time              { return p.createdAt }
func (p *Product) UpdatedAt() time.Time              { return p.updatedAt }

// SetID sets the product ID (only for persistence layer use)
func (p *Product) SetID(id uint) {
	p.id = id
}

// Update replaces the editable fields, keeping identity and timestamps.
func (p *Product) Update(attrs Attributes, now time.Time) error {
	attrs.Currency = strings.ToUpper(attrs.Currency)
	if attrs.PricingType == "" {
		attrs.PricingType = PricingPaid
	}
	if err := validate(attrs); err != nil {
		return err
	}
	p.attrs = attrs
	p.updatedAt = now
	return nil
}

// PriceFor returns the price charged for period. Free products cost nothing
// for any period; one-off products ignore the period.
func (p *Product) PriceFor(period shared.Period) (decimal.Decimal, bool) {
	if p.IsFree() {
		return decimal.Zero, true
	}
	if !p.attrs.Recurring || period.IsZero() || period.Equal(p.attrs.Period) {
		return p.attrs.Amount, true
	}
	for _, v := range p.attrs.PriceVariations {
		if v.Period().Equal(period) {
			return v.Amount, true
		}
	}
	return decimal.Zero, false
}
