package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

// maxWebhookBody bounds the payload read from a gateway notification.
const maxWebhookBody = 64 << 10

type handleWebhookUseCase interface {
	Execute(ctx context.Context, gatewayID string, payload []byte, signature string) error
}

// WebhookHandler receives gateway notifications. The signature header is
// passed through unchanged for the gateway to verify.
type WebhookHandler struct {
	handleWebhookUC handleWebhookUseCase
	logger          logger.Interface
}

func NewWebhookHandler(handleWebhookUC handleWebhookUseCase, logger logger.Interface) *WebhookHandler {
	return &WebhookHandler{
		handleWebhookUC: handleWebhookUC,
		logger:          logger,
	}
}

// Gateway returns a handler for gatewayID that reads the signature from header.
//
// @Summary		Gateway webhook
// @Tags			webhooks
// @Accept			json
// @Produce		json
// @Success		200	{object}	utils.APIResponse	"Webhook processed"
// @Failure		400	{object}	utils.APIResponse	"Invalid payload or signature"
// @Router			/webhooks/stripe [post]
func (h *WebhookHandler) Gateway(gatewayID, header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			h.logger.Warnw("failed to read webhook body", "gateway", gatewayID, "error", err)
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "failed to read request body")
			return
		}

		if err := h.handleWebhookUC.Execute(c.Request.Context(), gatewayID, payload, c.GetHeader(header)); err != nil {
			h.logger.Warnw("webhook rejected", "gateway", gatewayID, "error", err)
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.SuccessResponse(c, http.StatusOK, "webhook processed", nil)
	}
}
