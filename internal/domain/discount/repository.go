package discount

import "context"

type Repository interface {
	GetByCode(ctx context.Context, code string) (*DiscountCode, error)
	// IncrementUses records one redemption. It fails with ErrMaxUsesReached
	// when the code has no uses left.
	IncrementUses(ctx context.Context, id uint) error
	Upsert(ctx context.Context, d *DiscountCode) error
}
