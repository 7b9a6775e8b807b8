package mappers

import (
	"github.com/siteforge/siteforge/internal/domain/setting"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
)

// SettingMapper handles conversion between domain entities and persistence models
type SettingMapper interface {
	ToDomain(model *models.SettingModel) *setting.Setting
	ToModel(entity *setting.Setting) *models.SettingModel
	ToDomainList(models []*models.SettingModel) []*setting.Setting
}

type settingMapper struct{}

func NewSettingMapper() SettingMapper {
	return &settingMapper{}
}

func (m *settingMapper) ToDomain(model *models.SettingModel) *setting.Setting {
	if model == nil {
		return nil
	}
	return setting.ReconstructSetting(
		model.ID,
		model.SID,
		model.Category,
		model.SettingKey,
		model.Value,
		setting.ValueType(model.ValueType),
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (m *settingMapper) ToModel(entity *setting.Setting) *models.SettingModel {
	if entity == nil {
		return nil
	}
	return &models.SettingModel{
		ID:         entity.ID(),
		SID:        entity.SID(),
		Category:   entity.Category(),
		SettingKey: entity.Key(),
		Value:      entity.Value(),
		ValueType:  string(entity.ValueType()),
		Version:    entity.Version(),
		CreatedAt:  entity.CreatedAt(),
		UpdatedAt:  entity.UpdatedAt(),
	}
}

func (m *settingMapper) ToDomainList(list []*models.SettingModel) []*setting.Setting {
	out := make([]*setting.Setting, 0, len(list))
	for _, model := range list {
		if s := m.ToDomain(model); s != nil {
			out = append(out, s)
		}
	}
	return out
}
