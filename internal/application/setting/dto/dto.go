package dto

import "time"

// Setting value origins.
const (
	SourceDatabase = "database"
	SourceConfig   = "config"
)

// SettingWithSource reports a value and where it came from.
type SettingWithSource struct {
	Value     any        `json:"value"`
	Source    string     `json:"source"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// BillingSettingsResponse lists the effective billing settings.
type BillingSettingsResponse struct {
	EnableRegistration     SettingWithSource `json:"enable_registration"`
	InvoiceNumberingScheme SettingWithSource `json:"invoice_numbering_scheme"`
	NextInvoiceNumber      SettingWithSource `json:"next_invoice_number"`
	InvoicePrefix          SettingWithSource `json:"invoice_prefix"`
}

// UpdateBillingSettingsRequest changes billing settings. Nil fields are left untouched.
type UpdateBillingSettingsRequest struct {
	EnableRegistration     *bool   `json:"enable_registration"`
	InvoiceNumberingScheme *string `json:"invoice_numbering_scheme" validate:"omitempty,oneof=reference_code sequential_number"`
	NextInvoiceNumber      *int    `json:"next_invoice_number" validate:"omitempty,gte=1"`
	InvoicePrefix          *string `json:"invoice_prefix" validate:"omitempty,max=50"`
}

// RegistrationStatusResponse is the body of GET /register.
type RegistrationStatusResponse struct {
	RegistrationStatus string `json:"registration_status"`
}
