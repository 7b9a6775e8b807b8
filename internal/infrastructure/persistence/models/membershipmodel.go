package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type MembershipModel struct {
	ID                       uint   `gorm:"primaryKey"`
	Hash                     string `gorm:"uniqueIndex;size:32;not null"`
	CustomerID               uint   `gorm:"index;not null"`
	PlanID                   uint   `gorm:"index;not null"`
	Addons                   datatypes.JSONSlice[MembershipAddon]
	Currency                 string          `gorm:"size:3;not null"`
	Duration                 int             `gorm:"not null;default:0"`
	DurationUnit             string          `gorm:"size:10"`
	Amount                   decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	InitialAmount            decimal.Decimal `gorm:"type:decimal(13,4);not null;default:0"`
	Recurring                bool            `gorm:"not null;default:false"`
	BillingCycles            int             `gorm:"not null;default:0"`
	AutoRenew                bool            `gorm:"index;not null;default:false"`
	TimesBilled              int             `gorm:"not null;default:0"`
	Status                   string          `gorm:"size:20;not null;index"`
	DateActivated            *time.Time
	DateTrialEnd             *time.Time `gorm:"index"`
	DateRenewed              *time.Time
	DateCancellation         *time.Time
	DateExpiration           *time.Time `gorm:"index"`
	DatePaymentPlanCompleted *time.Time
	Gateway                  string `gorm:"size:50"`
	GatewayCustomerID        string `gorm:"size:128"`
	GatewaySubscriptionID    string `gorm:"size:128;index"`
	DiscountCode             string `gorm:"size:64"`
	ScheduledSwap            *datatypes.JSONType[ScheduledSwap]
	Version                  int `gorm:"not null;default:1"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (MembershipModel) TableName() string {
	return "memberships"
}

type MembershipAddon struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// ScheduledSwap stores the terms a downgrade switches to.
type ScheduledSwap struct {
	PlanID        uint              `json:"plan_id"`
	Addons        []MembershipAddon `json:"addons,omitempty"`
	Currency      string            `json:"currency"`
	Duration      int               `json:"duration"`
	DurationUnit  string            `json:"duration_unit"`
	Amount        decimal.Decimal   `json:"amount"`
	InitialAmount decimal.Decimal   `json:"initial_amount"`
	Recurring     bool              `json:"recurring"`
	BillingCycles int               `json:"billing_cycles"`
	Date          time.Time         `json:"date"`
}
