package setting

// CategoryBilling groups the billing options stored in the database.
const CategoryBilling = "billing"

const (
	KeyEnableRegistration     = "enable_registration"
	KeyInvoiceNumberingScheme = "invoice_numbering_scheme"
	KeyNextInvoiceNumber      = "next_invoice_number"
	KeyInvoicePrefix          = "invoice_prefix"
)

// KeyTypes lists the value type of every known billing key.
var KeyTypes = map[string]ValueType{
	KeyEnableRegistration:     ValueTypeBool,
	KeyInvoiceNumberingScheme: ValueTypeString,
	KeyNextInvoiceNumber:      ValueTypeInt,
	KeyInvoicePrefix:          ValueTypeString,
}
