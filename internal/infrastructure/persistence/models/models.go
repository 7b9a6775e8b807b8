// Package models holds the gorm row types of the billing tables.
package models

// All lists every model in migration order.
func All() []any {
	return []any{
		&CustomerModel{},
		&ProductModel{},
		&DiscountCodeModel{},
		&MembershipModel{},
		&PaymentModel{},
		&SiteModel{},
		&NoteModel{},
		&SettingModel{},
	}
}
