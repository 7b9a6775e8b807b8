package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/siteforge/siteforge/internal/domain/setting"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/mappers"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/db"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

const maxIncrementAttempts = 8

// SettingRepository implements setting.Repository
type SettingRepository struct {
	db     *gorm.DB
	logger logger.Interface
	mapper mappers.SettingMapper
}

// NewSettingRepository creates a new SettingRepository
func NewSettingRepository(db *gorm.DB, logger logger.Interface) *SettingRepository {
	return &SettingRepository{
		db:     db,
		logger: logger,
		mapper: mappers.NewSettingMapper(),
	}
}

var _ setting.Repository = (*SettingRepository)(nil)

// GetByKey retrieves a setting by category and key
func (r *SettingRepository) GetByKey(ctx context.Context, category, key string) (*setting.Setting, error) {
	var model models.SettingModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("category = ? AND setting_key = ?", category, key).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, setting.ErrSettingNotFound
		}
		r.logger.Errorw("failed to get setting by key", "category", category, "key", key, "error", err)
		return nil, fmt.Errorf("failed to get setting by key: %w", err)
	}

	return r.mapper.ToDomain(&model), nil
}

// GetByCategory retrieves all settings in a category
func (r *SettingRepository) GetByCategory(ctx context.Context, category string) ([]*setting.Setting, error) {
	var modelList []*models.SettingModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("category = ?", category).
		Order("setting_key ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to get settings by category", "category", category, "error", err)
		return nil, fmt.Errorf("failed to get settings by category: %w", err)
	}

	return r.mapper.ToDomainList(modelList), nil
}

// Upsert creates or updates a setting
func (r *SettingRepository) Upsert(ctx context.Context, s *setting.Setting) error {
	model := r.mapper.ToModel(s)

	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}, {Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "value_type", "version", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert setting", "category", s.Category(), "key", s.Key(), "error", err)
		return fmt.Errorf("failed to upsert setting: %w", err)
	}

	if s.ID() == 0 {
		s.SetID(model.ID)
	}

	return nil
}

// Delete removes a setting by category and key
func (r *SettingRepository) Delete(ctx context.Context, category, key string) error {
	result := db.GetTxFromContext(ctx, r.db).
		Where("category = ? AND setting_key = ?", category, key).
		Delete(&models.SettingModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete setting", "category", category, "key", key, "error", result.Error)
		return fmt.Errorf("failed to delete setting: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return setting.ErrSettingNotFound
	}

	return nil
}

// Increment bumps an int setting with a version compare-and-swap so that
// concurrent callers never observe the same value.
func (r *SettingRepository) Increment(ctx context.Context, category, key string, start int) (int, error) {
	for attempt := 0; attempt < maxIncrementAttempts; attempt++ {
		current, err := r.GetByKey(ctx, category, key)
		if errors.Is(err, setting.ErrSettingNotFound) {
			if err := r.seedCounter(ctx, category, key, start); err != nil {
				return 0, err
			}
			continue
		}
		if err != nil {
			return 0, err
		}

		value, err := current.IntValue()
		if err != nil {
			return 0, fmt.Errorf("setting %s.%s is not an integer: %w", category, key, err)
		}
		if !current.HasValue() {
			value = start
		}

		result := db.GetTxFromContext(ctx, r.db).
			Model(&models.SettingModel{}).
			Where("id = ? AND version = ?", current.ID(), current.Version()).
			Updates(map[string]any{
				"value":      strconv.Itoa(value + 1),
				"version":    current.Version() + 1,
				"updated_at": biztime.NowUTC(),
			})
		if result.Error != nil {
			return 0, fmt.Errorf("failed to increment setting: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return value, nil
		}
		time.Sleep(time.Duration(attempt+1) * 5 * time.Millisecond)
	}
	return 0, fmt.Errorf("failed to increment setting %s.%s: too much contention", category, key)
}

func (r *SettingRepository) seedCounter(ctx context.Context, category, key string, start int) error {
	s, err := setting.NewSetting(category, key, setting.ValueTypeInt, biztime.NowUTC())
	if err != nil {
		return err
	}
	if err := s.SetInt(start, biztime.NowUTC()); err != nil {
		return err
	}
	err = db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(r.mapper.ToModel(s)).Error
	if err != nil {
		return fmt.Errorf("failed to create counter setting: %w", err)
	}
	return nil
}
