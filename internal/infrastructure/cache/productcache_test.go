package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge/siteforge/internal/domain/product"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
)

type countingRepo struct {
	products map[uint]*product.Product
	reads    int
}

func (r *countingRepo) GetByID(_ context.Context, id uint) (*product.Product, error) {
	r.reads++
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, product.ErrProductNotFound
}

func (r *countingRepo) GetBySlug(_ context.Context, slug string) (*product.Product, error) {
	r.reads++
	for _, p := range r.products {
		if p.Slug() == slug {
			return p, nil
		}
	}
	return nil, product.ErrProductNotFound
}

func (r *countingRepo) List(context.Context, product.ListFilter) ([]*product.Product, error) {
	return nil, nil
}

func (r *countingRepo) Upsert(_ context.Context, p *product.Product) error {
	r.products[p.ID()] = p
	return nil
}

func newPlan(t *testing.T, id uint, slug string) *product.Product {
	t.Helper()
	p, err := product.NewProduct(product.Attributes{
		Slug:      slug,
		Name:      "Plan " + slug,
		Type:      product.TypePlan,
		Currency:  "USD",
		Amount:    decimal.NewFromInt(29),
		Recurring: true,
		Period:    shared.Period{Duration: 1, Unit: shared.DurationUnitMonth},
		Active:    true,
	}, time.Now())
	require.NoError(t, err)
	p.SetID(id)
	return p
}

func TestProductCache_ReadThrough(t *testing.T) {
	repo := &countingRepo{products: map[uint]*product.Product{1: newPlan(t, 1, "starter")}}
	c := NewProductCache(repo, 10)
	ctx := context.Background()

	p, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "starter", p.Slug())

	_, err = c.GetByID(ctx, 1)
	require.NoError(t, err)
	_, err = c.GetBySlug(ctx, "starter")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.reads)

	_, err = c.GetByID(ctx, 99)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Equal(t, 1, c.Len())
}

func TestProductCache_UpsertInvalidates(t *testing.T) {
	repo := &countingRepo{products: map[uint]*product.Product{1: newPlan(t, 1, "starter")}}
	c := NewProductCache(repo, 10)
	ctx := context.Background()

	_, err := c.GetBySlug(ctx, "starter")
	require.NoError(t, err)

	require.NoError(t, c.Upsert(ctx, newPlan(t, 1, "starter")))
	_, err = c.GetBySlug(ctx, "starter")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads)

	c.Purge()
	assert.Zero(t, c.Len())
}
