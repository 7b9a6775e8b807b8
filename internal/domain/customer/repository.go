package customer

import "context"

type Repository interface {
	// Create returns ErrCustomerExists when the username or email is taken.
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uint) (*Customer, error)
	GetByUserID(ctx context.Context, userID uint) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	GetByUsername(ctx context.Context, username string) (*Customer, error)
}
