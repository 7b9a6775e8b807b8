package valueobjects

import "fmt"

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially-refunded"
	PaymentStatusPartiallyPaid     PaymentStatus = "partially-paid"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusCancelled         PaymentStatus = "cancelled"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusRefunded,
		PaymentStatusPartiallyRefunded, PaymentStatusPartiallyPaid,
		PaymentStatusFailed, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) IsPending() bool {
	return s == PaymentStatusPending
}

func (s PaymentStatus) IsCompleted() bool {
	return s == PaymentStatusCompleted
}

// IsPayable reports whether a customer can still pay a payment in this status.
func (s PaymentStatus) IsPayable() bool {
	return s == PaymentStatusPending || s == PaymentStatusFailed
}

// CanTransitionTo only forbids leaving a fully refunded payment.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if s == PaymentStatusRefunded {
		return target == PaymentStatusRefunded
	}
	return target.IsValid()
}

func (s PaymentStatus) Label() string {
	switch s {
	case PaymentStatusPending:
		return "Pending"
	case PaymentStatusCompleted:
		return "Completed"
	case PaymentStatusRefunded:
		return "Refunded"
	case PaymentStatusPartiallyRefunded:
		return "Partially Refunded"
	case PaymentStatusPartiallyPaid:
		return "Partially Paid"
	case PaymentStatusFailed:
		return "Failed"
	case PaymentStatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

func (s PaymentStatus) String() string {
	return string(s)
}
