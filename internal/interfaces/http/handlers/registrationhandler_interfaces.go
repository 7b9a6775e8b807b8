package handlers

import (
	"context"

	"github.com/siteforge/siteforge/internal/application/registration/dto"
	settingdto "github.com/siteforge/siteforge/internal/application/setting/dto"
)

// Use case interfaces for RegistrationHandler

type registerUseCase interface {
	Execute(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
}

type registrationStatusUseCase interface {
	RegistrationStatus(ctx context.Context) *settingdto.RegistrationStatusResponse
}
