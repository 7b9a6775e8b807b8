package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountCodeModel struct {
	ID              uint            `gorm:"primaryKey"`
	Code            string          `gorm:"uniqueIndex;size:64;not null"`
	Name            string          `gorm:"size:255"`
	Value           decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	Type            string          `gorm:"size:20;not null"`
	SetupFeeValue   decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	SetupFeeType    string          `gorm:"size:20;not null"`
	ApplyToRenewals bool            `gorm:"not null;default:false"`
	Active          bool            `gorm:"not null;default:true"`
	MaxUses         int             `gorm:"not null;default:0"`
	Uses            int             `gorm:"not null;default:0"`
	DateStart       *time.Time
	DateExpiration  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (DiscountCodeModel) TableName() string {
	return "discount_codes"
}
