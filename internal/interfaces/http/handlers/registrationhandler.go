package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/application/registration/dto"
	"github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

// RegistrationHandler serves the network registration endpoint. Successful
// responses are written unwrapped so existing registration clients can read
// them directly.
type RegistrationHandler struct {
	registerUC registerUseCase
	statusUC   registrationStatusUseCase
	logger     logger.Interface
}

func NewRegistrationHandler(
	registerUC registerUseCase,
	statusUC registrationStatusUseCase,
	logger logger.Interface,
) *RegistrationHandler {
	return &RegistrationHandler{
		registerUC: registerUC,
		statusUC:   statusUC,
		logger:     logger,
	}
}

// @Summary		Registration status
// @Description	Report whether new registrations are accepted
// @Tags			registration
// @Produce		json
// @Security		APIKey
// @Success		200	{object}	settingdto.RegistrationStatusResponse
// @Router			/register [get]
func (h *RegistrationHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.statusUC.RegistrationStatus(c.Request.Context()))
}

// @Summary		Register
// @Description	Create a customer, membership, payment and optional pending site
// @Tags			registration
// @Accept			json
// @Produce		json
// @Security		APIKey
// @Param			registration	body		dto.RegisterRequest	true	"Registration data"
// @Success		200				{object}	dto.RegisterResponse
// @Failure		400				{object}	utils.APIResponse	"Validation failed"
// @Failure		403				{object}	utils.APIResponse	"Registration closed"
// @Failure		500				{object}	utils.APIResponse	"Registration error"
// @Router			/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid registration payload", "error", err, "client_ip", c.ClientIP())
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("Invalid request body", err.Error()))
		return
	}
	req.IP = c.ClientIP()

	resp, err := h.registerUC.Execute(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
