package discount

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
)

// Attributes hold every editable discount code field.
type Attributes struct {
	Code            string
	Name            string
	Value           decimal.Decimal
	Type            paymentvo.DiscountType
	SetupFeeValue   decimal.Decimal
	SetupFeeType    paymentvo.DiscountType
	ApplyToRenewals bool
	Active          bool
	MaxUses         int
	DateStart       *time.Time
	DateExpiration  *time.Time
}

// DiscountCode is a coupon that lowers the price of discountable line items.
type DiscountCode struct {
	id        uint
	attrs     Attributes
	uses      int
	createdAt time.Time
	updatedAt time.Time
}

func NewDiscountCode(attrs Attributes, now time.Time) (*DiscountCode, error) {
	attrs.Code = NormalizeCode(attrs.Code)
	if attrs.Code == "" {
		return nil, fmt.Errorf("discount code is required")
	}
	if attrs.Type == "" {
		attrs.Type = paymentvo.DiscountTypePercentage
	}
	if attrs.SetupFeeType == "" {
		attrs.SetupFeeType = paymentvo.DiscountTypePercentage
	}
	if !attrs.Type.IsValid() || !attrs.SetupFeeType.IsValid() {
		return nil, fmt.Errorf("invalid discount type: %s", attrs.Type)
	}
	if attrs.Value.IsNegative() || attrs.SetupFeeValue.IsNegative() {
		return nil, fmt.Errorf("discount values cannot be negative")
	}
	if attrs.MaxUses < 0 {
		return nil, fmt.Errorf("max uses cannot be negative")
	}
	return &DiscountCode{attrs: attrs, createdAt: now, updatedAt: now}, nil
}

func ReconstructDiscountCode(id uint, attrs Attributes, uses int, createdAt, updatedAt time.Time) *DiscountCode {
	return &DiscountCode{id: id, attrs: attrs, uses: uses, createdAt: createdAt, updatedAt: updatedAt}
}

// NormalizeCode upper-cases a code and strips surrounding spaces.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (d *DiscountCode) ID() uint                             { return d.id }
func (d *DiscountCode) Attributes() Attributes               { return d.attrs }
func (d *DiscountCode) Code() string                         { return d.attrs.Code }
func (d *DiscountCode) Name() string                         { return d.attrs.Name }
func (d *DiscountCode) Value() decimal.Decimal               { return d.attrs.Value }
func (d *DiscountCode) Type() paymentvo.DiscountType         { return d.attrs.Type }
func (d *DiscountCode) SetupFeeValue() decimal.Decimal       { return d.attrs.SetupFeeValue }
func (d *DiscountCode) SetupFeeType() paymentvo.DiscountType { return d.attrs.SetupFeeType }
func (d *DiscountCode) ApplyToRenewals() bool                { return d.attrs.ApplyToRenewals }
func (d *DiscountCode) Uses() int                            { return d.uses }
func (d *DiscountCode) CreatedAt() time.Time                 { return d.createdAt }
func (d *DiscountCode) UpdatedAt() time.Time                 { return d.updatedAt }

// SetID sets the discount code ID (only for persistence layer use)
func (d *DiscountCode) SetID(id uint) {
	d.id = id
}

// Validate reports why the code cannot be used at now, or nil.
func (d *DiscountCode) Validate(now time.Time) error {
	switch {
	case !d.attrs.Active:
		return ErrInactive
	case d.attrs.DateStart != nil && now.Before(*d.attrs.DateStart):
		return ErrNotStarted
	case d.attrs.DateExpiration != nil && now.After(*d.attrs.DateExpiration):
		return ErrExpired
	case d.attrs.MaxUses > 0 && d.uses >= d.attrs.MaxUses:
		return ErrMaxUsesReached
	}
	return nil
}

func (d *DiscountCode) IsValid(now time.Time) bool {
	return d.Validate(now) == nil
}
