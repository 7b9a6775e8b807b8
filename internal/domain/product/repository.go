package product

import "context"

type ListFilter struct {
	Type       Type
	ActiveOnly bool
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	// Upsert inserts or updates by slug and sets the ID.
	Upsert(ctx context.Context, p *Product) error
}
