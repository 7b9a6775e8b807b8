package setting

import (
	"context"
)

// Repository defines the interface for setting persistence
type Repository interface {
	// GetByKey returns ErrSettingNotFound when the key was never stored.
	GetByKey(ctx context.Context, category, key string) (*Setting, error)

	GetByCategory(ctx context.Context, category string) ([]*Setting, error)

	// Upsert creates or updates a setting by category and key.
	Upsert(ctx context.Context, setting *Setting) error

	Delete(ctx context.Context, category, key string) error

	// Increment atomically adds one to an int setting and returns the value
	// before the increment. A missing setting starts at start.
	Increment(ctx context.Context, category, key string, start int) (int, error)
}
