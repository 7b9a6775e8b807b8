package customer

import "errors"

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerExists   = errors.New("customer already exists")
	ErrInvalidUsername  = errors.New("username must be at least 4 characters")
	ErrInvalidPassword  = errors.New("password must be at least 6 characters")
	ErrWrongPassword    = errors.New("invalid password")
	ErrVersionConflict = errors.New("customer was modified concurrently")
)
