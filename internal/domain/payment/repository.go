package payment

import "context"

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, id uint) (*Payment, error)
	GetByHash(ctx context.Context, hash string) (*Payment, error)
	GetByGatewayPaymentID(ctx context.Context, gateway, gatewayPaymentID string) (*Payment, error)
	// GetLastPendingByMembership returns nil without error when none exists.
	GetLastPendingByMembership(ctx context.Context, membershipID uint) (*Payment, error)
	ListByMembership(ctx context.Context, membershipID uint) ([]*Payment, error)
}
