package mappers

import (
	"gorm.io/datatypes"

	"github.com/siteforge/siteforge/internal/domain/site"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
)

func SiteToModel(s *site.Site) *models.SiteModel {
	model := &models.SiteModel{
		ID:            s.ID(),
		CustomerID:    s.CustomerID(),
		MembershipID:  s.MembershipID(),
		Domain:        s.Domain(),
		Path:          s.Path(),
		Title:         s.Title(),
		TemplateID:    s.TemplateID(),
		Type:          string(s.Type()),
		Status:        string(s.Status()),
		SignupMeta:    datatypes.JSONMap(s.SignupMeta()),
		SignupOptions: datatypes.JSONMap(s.SignupOptions()),
		CreatedAt:     s.CreatedAt(),
		PublishedAt:   s.PublishedAt(),
	}
	if blogID := s.BlogID(); blogID != 0 {
		model.BlogID = &blogID
	}
	return model
}

func SiteToDomain(m *models.SiteModel) *site.Site {
	var blogID uint
	if m.BlogID != nil {
		blogID = *m.BlogID
	}
	return site.ReconstructSite(
		m.ID, blogID, m.CustomerID, m.MembershipID,
		m.Domain, m.Path, m.Title,
		m.TemplateID,
		site.Type(m.Type),
		site.Status(m.Status),
		map[string]any(m.SignupMeta), map[string]any(m.SignupOptions),
		m.CreatedAt,
		m.PublishedAt,
	)
}
