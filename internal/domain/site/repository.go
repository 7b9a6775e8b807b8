package site

import "context"

type Repository interface {
	Create(ctx context.Context, s *Site) error
	Update(ctx context.Context, s *Site) error
	GetByID(ctx context.Context, id uint) (*Site, error)
	// GetPendingByMembership returns nil without error when none exists.
	GetPendingByMembership(ctx context.Context, membershipID uint) (*Site, error)
	ListByMembership(ctx context.Context, membershipID uint) ([]*Site, error)
	ExistsByDomainPath(ctx context.Context, domain, path string) (bool, error)
	// NextBlogID allocates the network blog ID for a published site.
	NextBlogID(ctx context.Context) (uint, error)
}
