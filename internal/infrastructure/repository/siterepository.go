package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/siteforge/siteforge/internal/domain/site"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/mappers"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
	"github.com/siteforge/siteforge/internal/shared/db"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

type SiteRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSiteRepository(db *gorm.DB, logger logger.Interface) *SiteRepository {
	return &SiteRepository{db: db, logger: logger}
}

var _ site.Repository = (*SiteRepository)(nil)

func (r *SiteRepository) Create(ctx context.Context, s *site.Site) error {
	model := mappers.SiteToModel(s)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicate(err) {
			return site.ErrSiteTaken
		}
		r.logger.Errorw("failed to create site", "domain", model.Domain, "path", model.Path, "error", err)
		return fmt.Errorf("failed to create site: %w", err)
	}

	s.SetID(model.ID)
	return nil
}

func (r *SiteRepository) Update(ctx context.Context, s *site.Site) error {
	model := mappers.SiteToModel(s)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SiteModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"blog_id":        model.BlogID,
			"title":          model.Title,
			"status":         model.Status,
			"signup_meta":    model.SignupMeta,
			"signup_options": model.SignupOptions,
			"published_at":   model.PublishedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update site", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update site: %w", result.Error)
	}

	// RowsAffected may be 0 on mysql when nothing changed.
	return nil
}

func (r *SiteRepository) GetByID(ctx context.Context, id uint) (*site.Site, error) {
	var model models.SiteModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, site.ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return mappers.SiteToDomain(&model), nil
}

func (r *SiteRepository) GetPendingByMembership(ctx context.Context, membershipID uint) (*site.Site, error) {
	var model models.SiteModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("membership_id = ? AND status = ?", membershipID, string(site.StatusPending)).
		Order("id ASC").
		First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending site: %w", err)
	}
	return mappers.SiteToDomain(&model), nil
}

func (r *SiteRepository) ListByMembership(ctx context.Context, membershipID uint) ([]*site.Site, error) {
	var rows []models.SiteModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("membership_id = ?", membershipID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	sites := make([]*site.Site, 0, len(rows))
	for i := range rows {
		sites = append(sites, mappers.SiteToDomain(&rows[i]))
	}
	return sites, nil
}

func (r *SiteRepository) ExistsByDomainPath(ctx context.Context, domain, path string) (bool, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SiteModel{}).
		Where("domain = ? AND path = ?", domain, path).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check site url: %w", err)
	}
	return count > 0, nil
}

// NextBlogID returns one past the highest allocated blog ID. The unique index
// on blog_id rejects a concurrent publish that raced for the same number.
func (r *SiteRepository) NextBlogID(ctx context.Context) (uint, error) {
	var maxID *uint
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SiteModel{}).
		Select("MAX(blog_id)").
		Scan(&maxID).Error; err != nil {
		return 0, fmt.Errorf("failed to allocate blog id: %w", err)
	}
	if maxID == nil {
		return 1, nil
	}
	return *maxID + 1, nil
}
