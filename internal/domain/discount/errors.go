package discount

import "errors"

var (
	ErrDiscountNotFound = errors.New("discount code not found")
	ErrInactive         = errors.New("this coupon code is not valid")
	ErrNotStarted       = errors.New("this coupon code is not available yet")
	ErrExpired          = errors.New("this coupon code is not valid anymore")
	ErrMaxUsesReached   = errors.New("this discount code was already redeemed the maximum amount of times allowed")
)
