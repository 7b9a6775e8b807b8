package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/siteforge/siteforge/internal/domain/discount"
	"github.com/siteforge/siteforge/internal/domain/membership"
	"github.com/siteforge/siteforge/internal/domain/payment"
	"github.com/siteforge/siteforge/internal/domain/product"
)

// CartType tells the cart what kind of checkout it prices.
type CartType string

const (
	CartTypeNew       CartType = "new"
	CartTypeRenewal   CartType = "renewal"
	CartTypeUpgrade   CartType = "upgrade"
	CartTypeDowngrade CartType = "downgrade"
	CartTypeRetry     CartType = "retry"
	CartTypeAddon     CartType = "addon"
	CartTypeDisplay   CartType = "display"
)

func ParseCartType(s string) (CartType, error) {
	if s == "" {
		return CartTypeNew, nil
	}
	t := CartType(s)
	switch t {
	case CartTypeNew, CartTypeRenewal, CartTypeUpgrade, CartTypeDowngrade,
		CartTypeRetry, CartTypeAddon, CartTypeDisplay:
		return t, nil
	}
	return "", fmt.Errorf("invalid cart type: %s", s)
}

// IsRenewalLike reports whether discounts only apply when they carry over
// to renewals.
func (t CartType) IsRenewalLike() bool {
	return t == CartTypeRenewal || t == CartTypeRetry
}

// ProductCatalog resolves products by ID or slug.
type ProductCatalog interface {
	GetByID(ctx context.Context, id uint) (*product.Product, error)
	GetBySlug(ctx context.Context, slug string) (*product.Product, error)
}

// DiscountLookup finds discount codes.
type DiscountLookup interface {
	GetByCode(ctx context.Context, code string) (*discount.DiscountCode, error)
}

// TaxRates resolves the tax rate for a country and tax category.
type TaxRates interface {
	RateFor(country, category string) (rate decimal.Decimal, label string)
}

// Input describes what the customer is checking out.
type Input struct {
	Type         CartType
	Products     []string
	Duration     int
	DurationUnit string
	DiscountCode string
	Country      string
	Currency     string
	// HadTrial disables free trials for customers that already used one.
	HadTrial bool
	// Membership is required for every type other than new and display.
	Membership *membership.Membership
	// RetryPayment is the payment a retry cart copies its items from.
	RetryPayment *payment.Payment
}

// Error is a cart problem reported back to the customer.
type Error struct {
	Code    string
	Message string
}

func (e Error) Error() string {
	return e.Message
}

// ConfigTaxRates looks rates up in a map keyed by "country" or
// "country:category", lower-cased. Category specific rates win.
type ConfigTaxRates map[string]float64

func (r ConfigTaxRates) RateFor(country, category string) (decimal.Decimal, string) {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		return decimal.Zero, ""
	}
	if category != "" {
		if rate, ok := r[country+":"+strings.ToLower(category)]; ok {
			return decimal.NewFromFloat(rate), strings.ToUpper(country) + " Tax"
		}
	}
	if rate, ok := r[country]; ok {
		return decimal.NewFromFloat(rate), strings.ToUpper(country) + " Tax"
	}
	return decimal.Zero, ""
}
