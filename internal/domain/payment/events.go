package payment

import (
	"time"

	"github.com/siteforge/siteforge/internal/domain/shared/events"
)

const (
	EventTypeRenewalPaymentCreated = "payment.renewal_created"
	EventTypePaymentCompleted      = "payment.completed"
	EventTypePaymentRefunded       = "payment.refunded"
)

// RenewalPaymentCreatedEvent is raised when a pending renewal payment is
// created for a membership.
type RenewalPaymentCreatedEvent struct {
	events.BaseEvent
	PaymentID         uint   `json:"payment_id"`
	PaymentHash       string `json:"payment_hash"`
	MembershipID      uint   `json:"membership_id"`
	CustomerID        uint   `json:"customer_id"`
	DefaultPaymentURL string `json:"default_payment_url"`
}

func NewRenewalPaymentCreatedEvent(p *Payment, paymentURL string, at time.Time) *RenewalPaymentCreatedEvent {
	return &RenewalPaymentCreatedEvent{
		BaseEvent:         events.NewBaseEvent(p.Hash(), EventTypeRenewalPaymentCreated, at),
		PaymentID:         p.ID(),
		PaymentHash:       p.Hash(),
		MembershipID:      p.MembershipID(),
		CustomerID:        p.CustomerID(),
		DefaultPaymentURL: paymentURL,
	}
}

type PaymentCompletedEvent struct {
	events.BaseEvent
	PaymentID    uint   `json:"payment_id"`
	MembershipID uint   `json:"membership_id"`
	CustomerID   uint   `json:"customer_id"`
	Total        string `json:"total"`
}

func NewPaymentCompletedEvent(p *Payment, at time.Time) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent:    events.NewBaseEvent(p.Hash(), EventTypePaymentCompleted, at),
		PaymentID:    p.ID(),
		MembershipID: p.MembershipID(),
		CustomerID:   p.CustomerID(),
		Total:        p.Total().StringFixed(2),
	}
}

type PaymentRefundedEvent struct {
	events.BaseEvent
	PaymentID uint   `json:"payment_id"`
	Status    string `json:"status"`
}

func NewPaymentRefundedEvent(p *Payment, at time.Time) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseEvent: events.NewBaseEvent(p.Hash(), EventTypePaymentRefunded, at),
		PaymentID: p.ID(),
		Status:    p.Status().String(),
	}
}
