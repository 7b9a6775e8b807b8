package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/siteforge/siteforge/internal/domain/membership"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/mappers"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
	"github.com/siteforge/siteforge/internal/shared/db"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

type MembershipRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewMembershipRepository(db *gorm.DB, logger logger.Interface) *MembershipRepository {
	return &MembershipRepository{db: db, logger: logger}
}

var _ membership.Repository = (*MembershipRepository)(nil)

func (r *MembershipRepository) Create(ctx context.Context, m *membership.Membership) error {
	model := mappers.MembershipToModel(m)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create membership", "customer_id", model.CustomerID, "error", err)
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return m.SetID(model.ID)
}

// Update saves the membership when its version still matches the stored row.
func (r *MembershipRepository) Update(ctx context.Context, m *membership.Membership) error {
	model := mappers.MembershipToModel(m)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.MembershipModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Select("*").
		Omit("id", "hash", "created_at").
		Updates(withVersion(model, model.Version+1))
	if result.Error != nil {
		r.logger.Errorw("failed to update membership", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update membership: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, model.ID); err != nil {
			return err
		}
		return membership.ErrVersionConflict
	}

	m.IncrementVersion()
	return nil
}

func withVersion(model *models.MembershipModel, version int) *models.MembershipModel {
	next := *model
	next.Version = version
	return &next
}

func (r *MembershipRepository) GetByID(ctx context.Context, id uint) (*membership.Membership, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *MembershipRepository) GetByHash(ctx context.Context, hash string) (*membership.Membership, error) {
	return r.first(ctx, "hash = ?", hash)
}

func (r *MembershipRepository) first(ctx context.Context, query string, arg any) (*membership.Membership, error) {
	var model models.MembershipModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, membership.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return mappers.MembershipToDomain(&model)
}

// Find lists memberships matching filter ordered by ID.
func (r *MembershipRepository) Find(ctx context.Context, f membership.Filter) ([]*membership.Membership, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.MembershipModel{})

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = s.String()
		}
		query = query.Where("status IN ?", statuses)
	}
	if f.AutoRenew != nil {
		query = query.Where("auto_renew = ?", *f.AutoRenew)
	}
	if f.ExpirationAfter != nil {
		query = query.Where("date_expiration >= ?", *f.ExpirationAfter)
	}
	if f.ExpirationBefore != nil {
		query = query.Where("date_expiration <= ?", *f.ExpirationBefore)
	}
	if f.ExpirationNotNull {
		query = query.Where("date_expiration IS NOT NULL")
	}
	if f.TrialEndBefore != nil {
		query = query.Where("date_trial_end <= ?", *f.TrialEndBefore)
	}
	if f.CustomerID != 0 {
		query = query.Where("customer_id = ?", f.CustomerID)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var rows []models.MembershipModel
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to find memberships", "error", err)
		return nil, fmt.Errorf("failed to find memberships: %w", err)
	}

	out := make([]*membership.Membership, 0, len(rows))
	for i := range rows {
		m, err := mappers.MembershipToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
