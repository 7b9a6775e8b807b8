package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductModel struct {
	ID              uint            `gorm:"primaryKey"`
	Slug            string          `gorm:"uniqueIndex;size:100;not null"`
	Name            string          `gorm:"size:255;not null"`
	Description     string          `gorm:"type:text"`
	Type            string          `gorm:"size:20;not null;index"`
	PricingType     string          `gorm:"size:20;not null"`
	Currency        string          `gorm:"size:3;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	SetupFee        decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	Recurring       bool            `gorm:"not null;default:false"`
	Duration        int             `gorm:"not null;default:0"`
	DurationUnit    string          `gorm:"size:10"`
	BillingCycles   int             `gorm:"not null;default:0"`
	TrialDuration   int             `gorm:"not null;default:0"`
	TrialUnit       string          `gorm:"size:10"`
	Taxable         bool            `gorm:"not null;default:false"`
	TaxCategory     string          `gorm:"size:50"`
	Active          bool            `gorm:"not null;default:true;index"`
	PriceVariations datatypes.JSONSlice[PriceVariation]
	Version         int `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ProductModel) TableName() string {
	return "products"
}

type PriceVariation struct {
	Duration     int             `json:"duration"`
	DurationUnit string          `json:"duration_unit"`
	Amount       decimal.Decimal `json:"amount"`
}
