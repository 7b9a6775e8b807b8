// Package cache provides in-process and Redis backed caches.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/siteforge/siteforge/internal/domain/product"
)

const (
	defaultProductCacheSize = 256
	productCacheTTL         = 5 * time.Minute
)

// ProductCache is a read-through LRU in front of the product repository.
// Cached products are shared, so callers must treat them as read-only.
type ProductCache struct {
	repo product.Repository
	byID   *expirable.LRU[uint, *product.Product]
	bySlug *expirable.LRU[string, uint]
}

var _ product.Repository = (*ProductCache)(nil)

func NewProductCache(repo product.Repository, size int) *ProductCache {
	if size <= 0 {
		size = defaultProductCacheSize
	}
	return &ProductCache{
		repo:   repo,
		byID:   expirable.NewLRU[uint, *product.Product](size, nil, productCacheTTL),
		bySlug: expirable.NewLRU[string, uint](size, nil, productCacheTTL),
	}
}

func (c *ProductCache) GetByID(ctx context.Context, id uint) (*product.Product, error) {
	if p, ok := c.byID.Get(id); ok {
		return p, nil
	}
	p, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(p)
	return p, nil
}

func (c *ProductCache) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	if id, ok := c.bySlug.Get(slug); ok {
		if p, ok := c.byID.Get(id); ok {
			return p, nil
		}
	}
	p, err := c.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.store(p)
	return p, nil
}

// List always reads through; listings are admin and seed operations.
func (c *ProductCache) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	return c.repo.List(ctx, filter)
}

func (c *ProductCache) Upsert(ctx context.Context, p *product.Product) error {
	if err := c.repo.Upsert(ctx, p); err != nil {
		return err
	}
	c.byID.Remove(p.ID())
	c.bySlug.Remove(p.Slug())
	return nil
}

// Purge drops every cached product.
func (c *ProductCache) Purge() {
	c.byID.Purge()
	c.bySlug.Purge()
}

func (c *ProductCache) Len() int {
	return c.byID.Len()
}

func (c *ProductCache) store(p *product.Product) {
	c.byID.Add(p.ID(), p)
	c.bySlug.Add(p.Slug(), p.ID())
}
