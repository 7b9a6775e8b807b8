package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/siteforge/siteforge/internal/application/setting/dto"
	"github.com/siteforge/siteforge/internal/domain/setting"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

// UpdateSettingsUseCase handles updating billing settings
type UpdateSettingsUseCase struct {
	settingRepo setting.Repository
	logger      logger.Interface
}

// NewUpdateSettingsUseCase creates a new UpdateSettingsUseCase
func NewUpdateSettingsUseCase(settingRepo setting.Repository, logger logger.Interface) *UpdateSettingsUseCase {
	return &UpdateSettingsUseCase{
		settingRepo: settingRepo,
		logger:      logger,
	}
}

func (uc *UpdateSettingsUseCase) Execute(ctx context.Context, req dto.UpdateBillingSettingsRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	now := biztime.NowUTC()
	changes := make(map[string]any)

	if req.EnableRegistration != nil {
		if err := uc.updateSingleSetting(ctx, setting.KeyEnableRegistration, *req.EnableRegistration, now); err != nil {
			return err
		}
		changes[setting.KeyEnableRegistration] = *req.EnableRegistration
	}
	if req.InvoiceNumberingScheme != nil {
		if err := uc.updateSingleSetting(ctx, setting.KeyInvoiceNumberingScheme, *req.InvoiceNumberingScheme, now); err != nil {
			return err
		}
		changes[setting.KeyInvoiceNumberingScheme] = *req.InvoiceNumberingScheme
	}
	if req.NextInvoiceNumber != nil {
		if err := uc.updateSingleSetting(ctx, setting.KeyNextInvoiceNumber, *req.NextInvoiceNumber, now); err != nil {
			return err
		}
		changes[setting.KeyNextInvoiceNumber] = *req.NextInvoiceNumber
	}
	if req.InvoicePrefix != nil {
		if err := uc.updateSingleSetting(ctx, setting.KeyInvoicePrefix, *req.InvoicePrefix, now); err != nil {
			return err
		}
		changes[setting.KeyInvoicePrefix] = *req.InvoicePrefix
	}

	if len(changes) > 0 {
		uc.logger.Infow("billing settings updated", "changes", changes)
	}
	return nil
}

// updateSingleSetting updates or creates a single billing setting
func (uc *UpdateSettingsUseCase) updateSingleSetting(ctx context.Context, key string, value any, now time.Time) error {
	s, err := uc.settingRepo.GetByKey(ctx, setting.CategoryBilling, key)
	if err != nil && !errors.Is(err, setting.ErrSettingNotFound) {
		return fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	if s == nil {
		vt, ok := setting.KeyTypes[key]
		if !ok {
			return setting.ErrInvalidSettingKey
		}
		if s, err = setting.NewSetting(setting.CategoryBilling, key, vt, now); err != nil {
			return err
		}
	}

	switch v := value.(type) {
	case bool:
		err = s.SetBool(v, now)
	case int:
		err = s.SetInt(v, now)
	case string:
		err = s.SetString(v, now)
	default:
		err = fmt.Errorf("%w: %T", setting.ErrInvalidValueType, value)
	}
	if err != nil {
		return err
	}

	if err := uc.settingRepo.Upsert(ctx, s); err != nil {
		uc.logger.Errorw("failed to update setting",
			"category", setting.CategoryBilling,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}
	return nil
}
