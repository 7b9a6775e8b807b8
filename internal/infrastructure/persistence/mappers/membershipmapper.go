package mappers

import (
	"gorm.io/datatypes"

	"github.com/siteforge/siteforge/internal/domain/membership"
	vo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
)

func MembershipToModel(m *membership.Membership) *models.MembershipModel {
	s := m.Snapshot()
	model := &models.MembershipModel{
		ID:                       s.ID,
		Hash:                     s.Hash,
		CustomerID:               s.CustomerID,
		PlanID:                   s.Terms.PlanID,
		Addons:                   addonsToModel(s.Terms.Addons),
		Currency:                 s.Terms.Currency,
		Duration:                 s.Terms.Period.Duration,
		DurationUnit:             string(s.Terms.Period.Unit),
		Amount:                   s.Terms.Amount,
		InitialAmount:            s.Terms.InitialAmount,
		Recurring:                s.Terms.Recurring,
		BillingCycles:            s.Terms.BillingCycles,
		AutoRenew:                s.AutoRenew,
		TimesBilled:              s.TimesBilled,
		Status:                   s.Status.String(),
		DateActivated:            s.DateActivated,
		DateTrialEnd:             s.DateTrialEnd,
		DateRenewed:              s.DateRenewed,
		DateCancellation:         s.DateCancellation,
		DateExpiration:           s.DateExpiration,
		DatePaymentPlanCompleted: s.DatePaymentPlanCompleted,
		Gateway:                  s.Gateway,
		GatewayCustomerID:        s.GatewayCustomerID,
		GatewaySubscriptionID:    s.GatewaySubscriptionID,
		DiscountCode:             s.DiscountCode,
		Version:                  s.Version,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
	if s.ScheduledSwap != nil {
		t := s.ScheduledSwap.Terms
		swap := datatypes.NewJSONType(models.ScheduledSwap{
			PlanID:        t.PlanID,
			Addons:        addonsToModel(t.Addons),
			Currency:      t.Currency,
			Duration:      t.Period.Duration,
			DurationUnit:  string(t.Period.Unit),
			Amount:        t.Amount,
			InitialAmount: t.InitialAmount,
			Recurring:     t.Recurring,
			BillingCycles: t.BillingCycles,
			Date:          s.ScheduledSwap.Date,
		})
		model.ScheduledSwap = &swap
	}
	return model
}

func MembershipToDomain(model *models.MembershipModel) (*membership.Membership, error) {
	s := membership.Snapshot{
		ID:         model.ID,
		Hash:       model.Hash,
		CustomerID: model.CustomerID,
		Terms: membership.Terms{
			PlanID:        model.PlanID,
			Addons:        addonsToDomain(model.Addons),
			Currency:      model.Currency,
			Period:        shared.Period{Duration: model.Duration, Unit: shared.DurationUnit(model.DurationUnit)},
			Amount:        model.Amount,
			InitialAmount: model.InitialAmount,
			Recurring:     model.Recurring,
			BillingCycles: model.BillingCycles,
		},
		AutoRenew:                model.AutoRenew,
		TimesBilled:              model.TimesBilled,
		Status:                   vo.MembershipStatus(model.Status),
		DateActivated:            model.DateActivated,
		DateTrialEnd:             model.DateTrialEnd,
		DateRenewed:              model.DateRenewed,
		DateCancellation:         model.DateCancellation,
		DateExpiration:           model.DateExpiration,
		DatePaymentPlanCompleted: model.DatePaymentPlanCompleted,
		Gateway:                  model.Gateway,
		GatewayCustomerID:        model.GatewayCustomerID,
		GatewaySubscriptionID:    model.GatewaySubscriptionID,
		DiscountCode:             model.DiscountCode,
		Version:                  model.Version,
		CreatedAt:                model.CreatedAt,
		UpdatedAt:                model.UpdatedAt,
	}
	if model.ScheduledSwap != nil {
		sw := model.ScheduledSwap.Data()
		s.ScheduledSwap = &membership.ScheduledSwap{
			Terms: membership.Terms{
				PlanID:        sw.PlanID,
				Addons:        addonsToDomain(sw.Addons),
				Currency:      sw.Currency,
				Period:        shared.Period{Duration: sw.Duration, Unit: shared.DurationUnit(sw.DurationUnit)},
				Amount:        sw.Amount,
				InitialAmount: sw.InitialAmount,
				Recurring:     sw.Recurring,
				BillingCycles: sw.BillingCycles,
			},
			Date: sw.Date,
		}
	}
	return membership.ReconstructMembership(s)
}

func addonsToModel(addons []membership.Addon) datatypes.JSONSlice[models.MembershipAddon] {
	out := make([]models.MembershipAddon, 0, len(addons))
	for _, a := range addons {
		out = append(out, models.MembershipAddon{ProductID: a.ProductID, Quantity: a.Quantity})
	}
	return datatypes.NewJSONSlice(out)
}

func addonsToDomain(addons []models.MembershipAddon) []membership.Addon {
	if len(addons) == 0 {
		return nil
	}
	out := make([]membership.Addon, 0, len(addons))
	for _, a := range addons {
		out = append(out, membership.Addon{ProductID: a.ProductID, Quantity: a.Quantity})
	}
	return out
}
