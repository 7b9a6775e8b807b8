package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/siteforge/siteforge/internal/domain/discount"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/product"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
)

// Catalog is the YAML document accepted by the seed command.
type Catalog struct {
	Products  []ProductEntry  `yaml:"products"`
	Discounts []DiscountEntry `yaml:"discounts"`
}

type PeriodEntry struct {
	Duration int    `yaml:"duration"`
	Unit     string `yaml:"unit"`
}

type VariationEntry struct {
	Duration int    `yaml:"duration"`
	Unit     string `yaml:"unit"`
	Amount   string `yaml:"amount"`
}

type ProductEntry struct {
	Slug          string           `yaml:"slug"`
	Name          string           `yaml:"name"`
	Description   string           `yaml:"description"`
	Type          string           `yaml:"type"`
	PricingType   string           `yaml:"pricing_type"`
	Currency      string           `yaml:"currency"`
	Amount        string           `yaml:"amount"`
	SetupFee      string           `yaml:"setup_fee"`
	Recurring     bool             `yaml:"recurring"`
	Period        PeriodEntry      `yaml:"period"`
	BillingCycles int              `yaml:"billing_cycles"`
	Trial         *PeriodEntry     `yaml:"trial"`
	Taxable       bool             `yaml:"taxable"`
	TaxCategory   string           `yaml:"tax_category"`
	Active        *bool            `yaml:"active"`
	Variations    []VariationEntry `yaml:"price_variations"`
}

type DiscountEntry struct {
	Code            string     `yaml:"code"`
	Name            string     `yaml:"name"`
	Value           string     `yaml:"value"`
	Type            string     `yaml:"type"`
	SetupFeeValue   string     `yaml:"setup_fee_value"`
	SetupFeeType    string     `yaml:"setup_fee_type"`
	ApplyToRenewals bool       `yaml:"apply_to_renewals"`
	Active          *bool      `yaml:"active"`
	MaxUses         int        `yaml:"max_uses"`
	DateStart       *time.Time `yaml:"date_start"`
	DateExpiration  *time.Time `yaml:"date_expiration"`
}

// ProductWriter stores catalog products.
type ProductWriter interface {
	Upsert(ctx context.Context, p *product.Product) error
}

// DiscountWriter stores discount codes.
type DiscountWriter interface {
	Upsert(ctx context.Context, d *discount.DiscountCode) error
}

// Result counts the records written.
type Result struct {
	Products  int
	Discounts int
}

// LoadCatalog decodes a catalog document. Unknown keys are rejected.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &c, nil
}

// Apply validates every entry before writing any of them.
func (c *Catalog) Apply(ctx context.Context, products ProductWriter, discounts DiscountWriter, now time.Time) (Result, error) {
	ps := make([]*product.Product, 0, len(c.Products))
	for i, e := range c.Products {
		p, err := e.build(now)
		if err != nil {
			return Result{}, fmt.Errorf("products[%d] %q: %w", i, e.Slug, err)
		}
		ps = append(ps, p)
	}

	ds := make([]*discount.DiscountCode, 0, len(c.Discounts))
	for i, e := range c.Discounts {
		d, err := e.build(now)
		if err != nil {
			return Result{}, fmt.Errorf("discounts[%d] %q: %w", i, e.Code, err)
		}
		ds = append(ds, d)
	}

	var res Result
	for _, p := range ps {
		if err := products.Upsert(ctx, p); err != nil {
			return res, err
		}
		res.Products++
	}
	for _, d := range ds {
		if err := discounts.Upsert(ctx, d); err != nil {
			return res, err
		}
		res.Discounts++
	}
	return res, nil
}

func (e ProductEntry) build(now time.Time) (*product.Product, error) {
	amount, err := parseAmount(e.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	setupFee, err := parseAmount(e.SetupFee)
	if err != nil {
		return nil, fmt.Errorf("setup_fee: %w", err)
	}

	attrs := product.Attributes{
		Slug:          e.Slug,
		Name:          e.Name,
		Description:   e.Description,
		Type:          product.Type(orDefault(e.Type, string(product.TypePlan))),
		PricingType:   product.PricingType(e.PricingType),
		Currency:      e.Currency,
		Amount:        amount,
		SetupFee:      setupFee,
		Recurring:     e.Recurring,
		BillingCycles: e.BillingCycles,
		Taxable:       e.Taxable,
		TaxCategory:   e.TaxCategory,
		Active:        e.Active == nil || *e.Active,
	}

	if e.Recurring || e.Period.Duration > 0 {
		if attrs.Period, err = parsePeriod(e.Period.Duration, e.Period.Unit); err != nil {
			return nil, fmt.Errorf("period: %w", err)
		}
	}
	if e.Trial != nil {
		if attrs.Trial, err = parsePeriod(e.Trial.Duration, e.Trial.Unit); err != nil {
			return nil, fmt.Errorf("trial: %w", err)
		}
	}
	for _, v := range e.Variations {
		period, err := parsePeriod(v.Duration, v.Unit)
		if err != nil {
			return nil, fmt.Errorf("price_variations: %w", err)
		}
		amount, err := parseAmount(v.Amount)
		if err != nil {
			return nil, fmt.Errorf("price_variations: %w", err)
		}
		attrs.PriceVariations = append(attrs.PriceVariations, product.PriceVariation{
			Duration: period.Duration,
			Unit:     period.Unit,
			Amount:   amount,
		})
	}

	return product.NewProduct(attrs, now)
}

func (e DiscountEntry) build(now time.Time) (*discount.DiscountCode, error) {
	value, err := parseAmount(e.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	setupFeeValue, err := parseAmount(e.SetupFeeValue)
	if err != nil {
		return nil, fmt.Errorf("setup_fee_value: %w", err)
	}

	return discount.NewDiscountCode(discount.Attributes{
		Code:            e.Code,
		Name:            e.Name,
		Value:           value,
		Type:            paymentvo.DiscountType(e.Type),
		SetupFeeValue:   setupFeeValue,
		SetupFeeType:    paymentvo.DiscountType(e.SetupFeeType),
		ApplyToRenewals: e.ApplyToRenewals,
		Active:          e.Active == nil || *e.Active,
		MaxUses:         e.MaxUses,
		DateStart:       e.DateStart,
		DateExpiration:  e.DateExpiration,
	}, now)
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parsePeriod(duration int, unit string) (shared.Period, error) {
	u, err := shared.ParseDurationUnit(unit)
	if err != nil {
		return shared.Period{}, err
	}
	return shared.NewPeriod(duration, u)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
