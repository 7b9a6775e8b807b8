package membership

import (
	"context"
	"time"

	vo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
)

// Filter selects memberships for the cron sweeps. Time bounds are inclusive
// and nil fields are ignored.
type Filter struct {
	Statuses          []vo.MembershipStatus
	AutoRenew         *bool
	ExpirationAfter   *time.Time
	ExpirationBefore  *time.Time
	ExpirationNotNull bool
	TrialEndBefore    *time.Time
	CustomerID        uint
	Limit             int
}

type Repository interface {
	Create(ctx context.Context, m *Membership) error
	Update(ctx context.Context, m *Membership) error
	GetByID(ctx context.Context, id uint) (*Membership, error)
	GetByHash(ctx context.Context, hash string) (*Membership, error)
	Find(ctx context.Context, filter Filter) ([]*Membership, error)
}
