package mappers

import (
	"github.com/siteforge/siteforge/internal/domain/discount"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
)

func DiscountCodeToModel(d *discount.DiscountCode) *models.DiscountCodeModel {
	a := d.Attributes()
	return &models.DiscountCodeModel{
		ID:              d.ID(),
		Code:            a.Code,
		Name:            a.Name,
		Value:           a.Value,
		Type:            string(a.Type),
		SetupFeeValue:   a.SetupFeeValue,
		SetupFeeType:    string(a.SetupFeeType),
		ApplyToRenewals: a.ApplyToRenewals,
		Active:          a.Active,
		MaxUses:         a.MaxUses,
		Uses:            d.Uses(),
		DateStart:       a.DateStart,
		DateExpiration:  a.DateExpiration,
		CreatedAt:       d.CreatedAt(),
		UpdatedAt:       d.UpdatedAt(),
	}
}

func DiscountCodeToDomain(m *models.DiscountCodeModel) *discount.DiscountCode {
	return discount.ReconstructDiscountCode(m.ID, discount.Attributes{
		Code:            m.Code,
		Name:            m.Name,
		Value:           m.Value,
		Type:            paymentvo.DiscountType(m.Type),
		SetupFeeValue:   m.SetupFeeValue,
		SetupFeeType:    paymentvo.DiscountType(m.SetupFeeType),
		ApplyToRenewals: m.ApplyToRenewals,
		Active:          m.Active,
		MaxUses:         m.MaxUses,
		DateStart:       m.DateStart,
		DateExpiration:  m.DateExpiration,
	}, m.Uses, m.CreatedAt, m.UpdatedAt)
}
