package valueobjects

import "fmt"

// LineItemType classifies a payment line.
type LineItemType string

const (
	LineItemTypeProduct  LineItemType = "product"
	LineItemTypeFee      LineItemType = "fee"
	LineItemTypeDiscount LineItemType = "discount"
	LineItemTypeCredit   LineItemType = "credit"
	LineItemTypeRefund   LineItemType = "refund"
	LineItemTypeTax      LineItemType = "tax"
)

func ParseLineItemType(s string) (LineItemType, error) {
	t := LineItemType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid line item type: %s", s)
	}
	return t, nil
}

func (t LineItemType) IsValid() bool {
	switch t {
	case LineItemTypeProduct, LineItemTypeFee, LineItemTypeDiscount,
		LineItemTypeCredit, LineItemTypeRefund, LineItemTypeTax:
		return true
	}
	return false
}

func (t LineItemType) String() string {
	return string(t)
}

// DiscountType tells whether a discount rate is a percentage or a fixed amount.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeAbsolute   DiscountType = "absolute"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeAbsolute
}

// InvoiceScheme selects how invoice numbers are produced.
type InvoiceScheme string

const (
	InvoiceSchemeReferenceCode InvoiceScheme = "reference_code"
	InvoiceSchemeSequential    InvoiceScheme = "sequential_number"
)

func (s InvoiceScheme) IsValid() bool {
	return s == InvoiceSchemeReferenceCode || s == InvoiceSchemeSequential
}
