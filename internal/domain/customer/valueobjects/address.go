package valueobjects

import "strings"

// BillingAddress is printed on invoices and used to pick tax rates.
type BillingAddress struct {
	CompanyName string `json:"company_name,omitempty"`
	Email       string `json:"billing_email,omitempty"`
	Address1    string `json:"billing_address_line_1,omitempty"`
	Address2    string `json:"billing_address_line_2,omitempty"`
	City        string `json:"billing_city,omitempty"`
	State       string `json:"billing_state,omitempty"`
	ZipCode     string `json:"billing_zip_code,omitempty"`
	Country     string `json:"billing_country,omitempty"`
}

// Normalize upper-cases the country code and trims every field.
func (a BillingAddress) Normalize() BillingAddress {
	a.CompanyName = strings.TrimSpace(a.CompanyName)
	a.Email = strings.TrimSpace(a.Email)
	a.Address1 = strings.TrimSpace(a.Address1)
	a.Address2 = strings.TrimSpace(a.Address2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
	return a
}

func (a BillingAddress) IsEmpty() bool {
	return a == BillingAddress{}
}

// Lines returns the non-empty address lines in print order.
func (a BillingAddress) Lines() []string {
	var lines []string
	for _, l := range []string{a.CompanyName, a.Address1, a.Address2, a.City, a.State, a.ZipCode, a.Country} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
