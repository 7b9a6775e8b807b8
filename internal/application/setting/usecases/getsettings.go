package usecases

import (
	"context"

	"github.com/siteforge/siteforge/internal/application/setting/dto"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// GetSettingsUseCase handles retrieval of billing settings
type GetSettingsUseCase struct {
	provider *SettingProvider
	logger   logger.Interface
}

// NewGetSettingsUseCase creates a new GetSettingsUseCase
func NewGetSettingsUseCase(provider *SettingProvider, logger logger.Interface) *GetSettingsUseCase {
	return &GetSettingsUseCase{
		provider: provider,
		logger:   logger,
	}
}

func (uc *GetSettingsUseCase) Execute(ctx context.Context) *dto.BillingSettingsResponse {
	resp := uc.provider.BillingSettings(ctx)
	return &resp
}

// RegistrationStatus reports whether POST /register accepts new signups.
func (uc *GetSettingsUseCase) RegistrationStatus(ctx context.Context) *dto.RegistrationStatusResponse {
	status := "closed"
	if uc.provider.RegistrationEnabled(ctx) {
		status = "open"
	}
	return &dto.RegistrationStatusResponse{RegistrationStatus: status}
}
