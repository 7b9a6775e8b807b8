// Package money formats decimal amounts for invoices and emails.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts in a display locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter returns a formatter for locale, falling back to English for
// an empty or unknown tag.
func NewFormatter(locale string) *Formatter {
	tag := language.English
	if locale != "" {
		if parsed, err := language.Parse(strings.ReplaceAll(locale, "_", "-")); err == nil {
			tag = parsed
		}
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

// Format renders amount with the currency symbol and the currency's standard
// number of decimals. Unknown currency codes are printed as a prefix.
func (f *Formatter) Format(amount decimal.Decimal, currencyCode string) string {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return strings.TrimSpace(code + " " + f.Number(amount, 2))
	}

	scale, _ := currency.Standard.Rounding(unit)
	symbol := f.printer.Sprint(currency.NarrowSymbol(unit))

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	return sign + symbol + f.Number(amount, scale)
}

// Number renders amount with locale grouping and exactly scale decimals.
func (f *Formatter) Number(amount decimal.Decimal, scale int) string {
	rounded := amount.Round(int32(scale)).InexactFloat64()
	return f.printer.Sprint(number.Decimal(rounded, number.Scale(scale)))
}

// Percent renders a tax rate such as 8.25 as "8.25%".
func (f *Formatter) Percent(rate decimal.Decimal) string {
	return rate.String() + "%"
}
