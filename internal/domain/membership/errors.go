package membership

import (
	"errors"
	"fmt"
)

var (
	ErrMembershipNotFound      = errors.New("membership not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrCustomerRequired        = errors.New("customer ID is required")
	ErrInvalidPeriod           = errors.New("invalid billing period")
	ErrNothingScheduled        = errors.New("no scheduled swap")
	ErrVersionConflict = errors.New("membership was modified concurrently")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}
