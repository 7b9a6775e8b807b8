package mappers

import (
	"gorm.io/datatypes"

	"github.com/siteforge/siteforge/internal/domain/product"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
)

func ProductToModel(p *product.Product) *models.ProductModel {
	a := p.Attributes()
	variations := make([]models.PriceVariation, 0, len(a.PriceVariations))
	for _, v := range a.PriceVariations {
		variations = append(variations, models.PriceVariation{
			Duration:     v.Duration,
			DurationUnit: string(v.Unit),
			Amount:       v.Amount,
		})
	}
	return &models.ProductModel{
		ID:              p.ID(),
		Slug:            a.Slug,
		Name:            a.Name,
		Description:     a.Description,
		Type:            string(a.Type),
		PricingType:     string(a.PricingType),
		Currency:        a.Currency,
		Amount:          a.Amount,
		SetupFee:        a.SetupFee,
		Recurring:       a.Recurring,
		Duration:        a.Period.Duration,
		DurationUnit:    string(a.Period.Unit),
		BillingCycles:   a.BillingCycles,
		TrialDuration:   a.Trial.Duration,
		TrialUnit:       string(a.Trial.Unit),
		Taxable:         a.Taxable,
		TaxCategory:     a.TaxCategory,
		Active:          a.Active,
		PriceVariations: datatypes.NewJSONSlice(variations),
		Version:         p.Version(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	}
}

func ProductToDomain(m *models.ProductModel) (*product.Product, error) {
	variations := make([]product.PriceVariation, 0, len(m.PriceVariations))
	for _, v := range m.PriceVariations {
		variations = append(variations, product.PriceVariation{
			Duration: v.Duration,
			Unit:     shared.DurationUnit(v.DurationUnit),
			Amount:   v.Amount,
		})
	}
	return product.ReconstructProduct(m.ID, product.Attributes{
		Slug:            m.Slug,
		Name:            m.Name,
		Description:     m.Description,
		Type:            product.Type(m.Type),
		PricingType:     product.PricingType(m.PricingType),
		Currency:        m.Currency,
		Amount:          m.Amount,
		SetupFee:        m.SetupFee,
		Recurring:       m.Recurring,
		Period:          shared.Period{Duration: m.Duration, Unit: shared.DurationUnit(m.DurationUnit)},
		BillingCycles:   m.BillingCycles,
		Trial:           shared.Period{Duration: m.TrialDuration, Unit: shared.DurationUnit(m.TrialUnit)},
		Taxable:         m.Taxable,
		TaxCategory:     m.TaxCategory,
		Active:          m.Active,
		PriceVariations: variations,
	}, m.Version, m.CreatedAt, m.UpdatedAt)
}
