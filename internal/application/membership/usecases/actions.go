package usecases

import "context"

// Async actions enqueued by the membership sweeps.
const (
	ActionCreateRenewalPayment  = "create_renewal_payment"
	ActionMarkMembershipExpired = "mark_membership_expired"
)

// RenewalPaymentTask asks for a pending renewal payment for a membership.
type RenewalPaymentTask struct {
	MembershipID uint `json:"membership_id"`
	Trial        bool `json:"trial,omitempty"`
}

// ExpireMembershipTask asks for a membership to be marked expired.
type ExpireMembershipTask struct {
	MembershipID uint `json:"membership_id"`
}

// ActionEnqueuer schedules a follow-up action for asynchronous processing.
type ActionEnqueuer interface {
	Enqueue(ctx context.Context, action string, payload any) error
}
