package payment

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrCustomerRequired        = errors.New("customer ID is required")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidRefundAmount     = errors.New("refund amount must not be negative")
	ErrVersionConflict = errors.New("payment was modified concurrently")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}
