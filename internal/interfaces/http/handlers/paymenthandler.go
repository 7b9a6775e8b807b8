package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/application/payment/dto"
	"github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

type PaymentHandler struct {
	getPaymentUC     getPaymentUseCase
	refundPaymentUC  refundPaymentUseCase
	checkoutUC       processCheckoutUseCase
	getInvoiceLinkUC getInvoiceLinkUseCase
	viewInvoiceUC    viewInvoiceUseCase
	logger           logger.Interface
}

func NewPaymentHandler(
	getPaymentUC getPaymentUseCase,
	refundPaymentUC refundPaymentUseCase,
	checkoutUC processCheckoutUseCase,
	getInvoiceLinkUC getInvoiceLinkUseCase,
	viewInvoiceUC viewInvoiceUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		getPaymentUC:     getPaymentUC,
		refundPaymentUC:  refundPaymentUC,
		checkoutUC:       checkoutUC,
		getInvoiceLinkUC: getInvoiceLinkUC,
		viewInvoiceUC:    viewInvoiceUC,
		logger:           logger,
	}
}

// @Summary		Get payment
// @Description	Get a payment by its reference code
// @Tags			payments
// @Produce		json
// @Security		APIKey
// @Param			hash	path		string										true	"Payment reference code"
// @Success		200		{object}	utils.APIResponse{data=dto.PaymentResponse}	"Payment"
// @Failure		404		{object}	utils.APIResponse							"Payment not found"
// @Router			/api/v1/payments/{hash} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	hash, err := parsePaymentHash(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getPaymentUC.Execute(c.Request.Context(), hash)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// @Summary		Refund payment
// @Description	Refund a payment through its gateway and optionally cancel the membership
// @Tags			payments
// @Accept			json
// @Produce		json
// @Security		APIKey
// @Param			hash	path		string										true	"Payment reference code"
// @Param			refund	body		dto.RefundRequest							false	"Refund amount, zero for a full refund"
// @Success		200		{object}	utils.APIResponse{data=dto.PaymentResponse}	"Payment refunded"
// @Failure		400		{object}	utils.APIResponse							"Bad request"
// @Failure		404		{object}	utils.APIResponse							"Payment not found"
// @Router			/api/v1/payments/{hash}/refund [post]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	hash, err := parsePaymentHash(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req dto.RefundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warnw("invalid refund request", "error", err, "payment_hash", hash)
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	}

	result, err := h.refundPaymentUC.Execute(c.Request.Context(), hash, req)
	if err != nil {
		h.logger.Errorw("failed to refund payment", "error", err, "payment_hash", hash)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payment refunded successfully", result)
}

// @Summary		Checkout payment
// @Description	Send a pending payment to a gateway
// @Tags			payments
// @Accept			json
// @Produce		json
// @Security		APIKey
// @Param			hash		path		string										true	"Payment reference code"
// @Param			checkout	body		dto.CheckoutRequest							true	"Gateway selection"
// @Success		200			{object}	utils.APIResponse{data=dto.PaymentResponse}	"Checkout processed"
// @Failure		400			{object}	utils.APIResponse							"Bad request"
// @Router			/api/v1/payments/{hash}/checkout [post]
func (h *PaymentHandler) Checkout(c *gin.Context) {
	hash, err := parsePaymentHash(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.checkoutUC.Execute(c.Request.Context(), hash, req)
	if err != nil {
		h.logger.Errorw("checkout failed", "error", err, "payment_hash", hash, "gateway", req.Gateway)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "checkout processed successfully", result)
}

// @Summary		Invoice link
// @Description	Issue a signed link to the payment invoice
// @Tags			payments
// @Produce		json
// @Security		APIKey
// @Param			hash	path		string											true	"Payment reference code"
// @Success		200		{object}	utils.APIResponse{data=dto.InvoiceLinkResponse}	"Invoice link"
// @Router			/api/v1/payments/{hash}/invoice-link [get]
func (h *PaymentHandler) GetInvoiceLink(c *gin.Context) {
	hash, err := parsePaymentHash(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getInvoiceLinkUC.Execute(c.Request.Context(), hash)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// @Summary		View invoice
// @Description	Render an invoice for a signed invoice link
// @Tags			invoices
// @Produce		json
// @Param			reference	query		string										true	"Payment reference code"
// @Param			key			query		string										true	"Signed invoice key"
// @Success		200			{object}	utils.APIResponse{data=dto.InvoiceResponse}	"Invoice"
// @Failure		401			{object}	utils.APIResponse							"Invalid key"
// @Router			/invoice [get]
func (h *PaymentHandler) ViewInvoice(c *gin.Context) {
	reference := strings.TrimSpace(c.Query("reference"))
	key := strings.TrimSpace(c.Query("key"))
	if reference == "" || key == "" {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("reference and key are required"))
		return
	}

	result, err := h.viewInvoiceUC.Execute(c.Request.Context(), reference, key)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func parsePaymentHash(c *gin.Context) (string, error) {
	hash := strings.TrimSpace(c.Param("hash"))
	if hash == "" {
		return "", errors.NewValidationError("Payment reference code is required")
	}
	return hash, nil
}
