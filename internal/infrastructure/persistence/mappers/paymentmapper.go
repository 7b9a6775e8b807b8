package mappers

import (
	"gorm.io/datatypes"

	"github.com/siteforge/siteforge/internal/domain/payment"
	vo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *payment.Payment) *models.PaymentModel {
	s := p.Snapshot()

	items := make([]models.LineItem, 0, len(s.LineItems))
	for _, li := range s.LineItems {
		items = append(items, models.LineItem{
			ID:                      li.ID,
			Type:                    string(li.Type),
			Title:                   li.Title,
			Description:             li.Description,
			ProductID:               li.ProductID,
			Quantity:                li.Quantity,
			UnitPrice:               li.UnitPrice,
			Discountable:            li.Discountable,
			DiscountRate:            li.DiscountRate,
			DiscountType:            string(li.DiscountType),
			ApplyDiscountToRenewals: li.ApplyDiscountToRenewals,
			Taxable:                 li.Taxable,
			TaxRate:                 li.TaxRate,
			TaxLabel:                li.TaxLabel,
			TaxInclusive:            li.TaxInclusive,
			Recurring:               li.Recurring,
			Duration:                li.Period.Duration,
			DurationUnit:            string(li.Period.Unit),
			Subtotal:                li.Subtotal,
			DiscountTotal:           li.DiscountTotal,
			TaxTotal:                li.TaxTotal,
			Total:                   li.Total,
		})
	}

	return &models.PaymentModel{
		ID:                       s.ID,
		Hash:                     s.Hash,
		CustomerID:               s.CustomerID,
		MembershipID:             s.MembershipID,
		ParentID:                 s.ParentID,
		ProductID:                s.ProductID,
		Currency:                 s.Currency,
		LineItems:                datatypes.NewJSONSlice(items),
		Subtotal:                 s.Subtotal,
		RefundTotal:              s.RefundTotal,
		TaxTotal:                 s.TaxTotal,
		DiscountTotal:            s.DiscountTotal,
		Total:                    s.Total,
		DiscountCode:             s.DiscountCode,
		Status:                   s.Status.String(),
		Gateway:                  s.Gateway,
		GatewayPaymentID:         s.GatewayPaymentID,
		InvoiceNumber:            s.InvoiceNumber,
		CancelMembershipOnRefund: s.CancelMembershipOnRefund,
		Version:                  s.Version,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
}

func PaymentToDomain(model *models.PaymentModel) (*payment.Payment, error) {
	items := make([]payment.LineItem, 0, len(model.LineItems))
	for _, li := range model.LineItems {
		items = append(items, payment.LineItem{
			ID:                      li.ID,
			Type:                    vo.LineItemType(li.Type),
			Title:                   li.Title,
			Description:             li.Description,
			ProductID:               li.ProductID,
			Quantity:                li.Quantity,
			UnitPrice:               li.UnitPrice,
			Discountable:            li.Discountable,
			DiscountRate:            li.DiscountRate,
			DiscountType:            vo.DiscountType(li.DiscountType),
			ApplyDiscountToRenewals: li.ApplyDiscountToRenewals,
			Taxable:                 li.Taxable,
			TaxRate:                 li.TaxRate,
			TaxLabel:                li.TaxLabel,
			TaxInclusive:            li.TaxInclusive,
			Recurring:               li.Recurring,
			Period:                  shared.Period{Duration: li.Duration, Unit: shared.DurationUnit(li.DurationUnit)},
			Subtotal:                li.Subtotal,
			DiscountTotal:           li.DiscountTotal,
			TaxTotal:                li.TaxTotal,
			Total:                   li.Total,
		})
	}

	return payment.ReconstructPayment(payment.Snapshot{
		ID:                       model.ID,
		Hash:                     model.Hash,
		CustomerID:               model.CustomerID,
		MembershipID:             model.MembershipID,
		ParentID:                 model.ParentID,
		ProductID:                model.ProductID,
		Currency:                 model.Currency,
		LineItems:                items,
		Subtotal:                 model.Subtotal,
		RefundTotal:              model.RefundTotal,
		TaxTotal:                 model.TaxTotal,
		DiscountTotal:            model.DiscountTotal,
		Total:                    model.Total,
		DiscountCode:             model.DiscountCode,
		Status:                   vo.PaymentStatus(model.Status),
		Gateway:                  model.Gateway,
		GatewayPaymentID:         model.GatewayPaymentID,
		InvoiceNumber:            model.InvoiceNumber,
		CancelMembershipOnRefund: model.CancelMembershipOnRefund,
		Version:                  model.Version,
		CreatedAt:                model.CreatedAt,
		UpdatedAt:                model.UpdatedAt,
	})
}
