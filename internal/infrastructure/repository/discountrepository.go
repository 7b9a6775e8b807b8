package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/siteforge/siteforge/internal/domain/discount"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/mappers"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
	"github.com/siteforge/siteforge/internal/shared/db"
)

type DiscountCodeRepository struct {
	db *gorm.DB
}

func NewDiscountCodeRepository(db *gorm.DB) *DiscountCodeRepository {
	return &DiscountCodeRepository{db: db}
}

var _ discount.Repository = (*DiscountCodeRepository)(nil)

func (r *DiscountCodeRepository) GetByCode(ctx context.Context, code string) (*discount.DiscountCode, error) {
	var model models.DiscountCodeModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("code = ?", discount.NormalizeCode(code)).
		First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, discount.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("failed to get discount code: %w", err)
	}
	return mappers.DiscountCodeToDomain(&model), nil
}

func (r *DiscountCodeRepository) IncrementUses(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.DiscountCodeModel{}).
		Where("id = ? AND (max_uses = 0 OR uses < max_uses)", id).
		UpdateColumn("uses", gorm.Expr("uses + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment discount uses: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.DiscountCodeModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check discount code: %w", err)
	}
	if count == 0 {
		return discount.ErrDiscountNotFound
	}
	return discount.ErrMaxUsesReached
}

func (r *DiscountCodeRepository) Upsert(ctx context.Context, d *discount.DiscountCode) error {
	model := mappers.DiscountCodeToModel(d)
	model.ID = 0

	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "value", "type", "setup_fee_value", "setup_fee_type", "apply_to_renewals",
			"active", "max_uses", "date_start", "date_expiration", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert discount code %s: %w", model.Code, err)
	}

	var stored models.DiscountCodeModel
	if err := tx.Select("id").Where("code = ?", model.Code).First(&stored).Error; err != nil {
		return fmt.Errorf("failed to read discount code id: %w", err)
	}
	d.SetID(stored.ID)
	return nil
}
