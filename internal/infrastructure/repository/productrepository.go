package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/siteforge/siteforge/internal/domain/product"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/mappers"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
	"github.com/siteforge/siteforge/internal/shared/db"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

var _ product.Repository = (*ProductRepository)(nil)

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*product.Product, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("id = ?", id))
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("slug = ?", slug))
}

func (r *ProductRepository) first(query *gorm.DB) (*product.Product, error) {
	var model models.ProductModel
	if err := query.First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return mappers.ProductToDomain(&model)
}

func (r *ProductRepository) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ProductModel{})
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var rows []models.ProductModel
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*product.Product, 0, len(rows))
	for i := range rows {
		p, err := mappers.ProductToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	model := mappers.ProductToModel(p)
	model.ID = 0

	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "type", "pricing_type", "currency", "amount", "setup_fee",
			"recurring", "duration", "duration_unit", "billing_cycles", "trial_duration", "trial_unit",
			"taxable", "tax_category", "active", "price_variations", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", model.Slug, err)
	}

	// The insert ID is not reported on conflict by every driver.
	var stored models.ProductModel
	if err := tx.Select("id").Where("slug = ?", model.Slug).First(&stored).Error; err != nil {
		return fmt.Errorf("failed to read product id: %w", err)
	}
	p.SetID(stored.ID)
	return nil
}
