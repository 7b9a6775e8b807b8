package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/application/setting/dto"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

type getSettingsUseCase interface {
	Execute(ctx context.Context) *dto.BillingSettingsResponse
}

type updateSettingsUseCase interface {
	Execute(ctx context.Context, req dto.UpdateBillingSettingsRequest) error
}

// SettingHandler exposes the billing settings.
type SettingHandler struct {
	getSettingsUC    getSettingsUseCase
	updateSettingsUC updateSettingsUseCase
	logger           logger.Interface
}

func NewSettingHandler(getSettingsUC getSettingsUseCase, updateSettingsUC updateSettingsUseCase, logger logger.Interface) *SettingHandler {
	return &SettingHandler{
		getSettingsUC:    getSettingsUC,
		updateSettingsUC: updateSettingsUC,
		logger:           logger,
	}
}

// @Summary		Get billing settings
// @Description	Effective billing settings with their source (database or config)
// @Tags			settings
// @Produce		json
// @Security		APIKey
// @Success		200	{object}	utils.APIResponse{data=dto.BillingSettingsResponse}
// @Router			/api/v1/settings/billing [get]
func (h *SettingHandler) GetBillingSettings(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.getSettingsUC.Execute(c.Request.Context()))
}

// @Summary		Update billing settings
// @Tags			settings
// @Accept			json
// @Produce		json
// @Security		APIKey
// @Param			settings	body		dto.UpdateBillingSettingsRequest	true	"Settings to change"
// @Success		200			{object}	utils.APIResponse{data=dto.BillingSettingsResponse}
// @Failure		400			{object}	utils.APIResponse	"Validation failed"
// @Router			/api/v1/settings/billing [patch]
func (h *SettingHandler) UpdateBillingSettings(c *gin.Context) {
	var req dto.UpdateBillingSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if err := h.updateSettingsUC.Execute(c.Request.Context(), req); err != nil {
		h.logger.Errorw("failed to update billing settings", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "settings updated successfully", h.getSettingsUC.Execute(c.Request.Context()))
}
