package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/siteforge/siteforge/internal/domain/membership"
)

type MembershipResponse struct {
	ID                       uint            `json:"id"`
	Hash                     string          `json:"reference_code"`
	CustomerID               uint            `json:"customer_id"`
	PlanID                   uint            `json:"plan_id"`
	Addons                   []AddonResponse `json:"addon_products,omitempty"`
	Currency                 string          `json:"currency"`
	Duration                 int             `json:"duration"`
	DurationUnit             string          `json:"duration_unit"`
	Amount                   decimal.Decimal `json:"amount"`
	InitialAmount            decimal.Decimal `json:"initial_amount"`
	Recurring                bool            `json:"recurring"`
	AutoRenew                bool            `json:"auto_renew"`
	TimesBilled              int             `json:"times_billed"`
	BillingCycles            int             `json:"billing_cycles"`
	Status                   string          `json:"status"`
	StatusLabel              string          `json:"status_label"`
	Gateway                  string          `json:"gateway"`
	GatewayCustomerID        string          `json:"gateway_customer_id"`
	GatewaySubscriptionID    string          `json:"gateway_subscription_id"`
	DiscountCode             string          `json:"discount_code,omitempty"`
	DateActivated            *time.Time      `json:"date_activated"`
	DateTrialEnd             *time.Time      `json:"date_trial_end"`
	DateRenewed              *time.Time      `json:"date_renewed"`
	DateCancellation         *time.Time      `json:"date_cancellation"`
	DateExpiration           *time.Time      `json:"date_expiration"`
	DatePaymentPlanCompleted *time.Time      `json:"date_payment_plan_completed"`
	ScheduledSwapDate        *time.Time      `json:"scheduled_swap_date,omitempty"`
	CreatedAt                time.Time       `json:"date_created"`
	UpdatedAt                time.Time       `json:"date_modified"`
}

type AddonResponse struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

func ToMembershipResponse(m *membership.Membership) *MembershipResponse {
	terms := m.Terms()
	addons := make([]AddonResponse, 0, len(terms.Addons))
	for _, a := range terms.Addons {
		addons = append(addons, AddonResponse{ProductID: a.ProductID, Quantity: a.Quantity})
	}

	resp := &MembershipResponse{
		ID:                       m.ID(),
		Hash:                     m.Hash(),
		CustomerID:               m.CustomerID(),
		PlanID:                   terms.PlanID,
		Addons:                   addons,
		Currency:                 terms.Currency,
		Duration:                 terms.Period.Duration,
		DurationUnit:             string(terms.Period.Unit),
		Amount:                   terms.Amount,
		InitialAmount:            terms.InitialAmount,
		Recurring:                terms.Recurring,
		AutoRenew:                m.AutoRenew(),
		TimesBilled:              m.TimesBilled(),
		BillingCycles:            terms.BillingCycles,
		Status:                   m.Status().String(),
		StatusLabel:              m.Status().Label(),
		Gateway:                  m.Gateway(),
		GatewayCustomerID:        m.GatewayCustomerID(),
		GatewaySubscriptionID:    m.GatewaySubscriptionID(),
		DiscountCode:             m.DiscountCode(),
		DateActivated:            m.DateActivated(),
		DateTrialEnd:             m.DateTrialEnd(),
		DateRenewed:              m.DateRenewed(),
		DateCancellation:         m.DateCancellation(),
		DateExpiration:           m.DateExpiration(),
		DatePaymentPlanCompleted: m.DatePaymentPlanCompleted(),
		CreatedAt:                m.CreatedAt(),
		UpdatedAt:                m.UpdatedAt(),
	}
	if swap := m.ScheduledSwap(); swap != nil {
		d := swap.Date
		resp.ScheduledSwapDate = &d
	}
	return resp
}

type CancelMembershipResponse struct {
	Membership *MembershipResponse `json:"membership"`
}
