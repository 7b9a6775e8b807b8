package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/interfaces/http/handlers"
)

// WebhookEndpoint binds one gateway's webhook path to its signature header.
type WebhookEndpoint struct {
	GatewayID       string
	SignatureHeader string
}

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler *handlers.PaymentHandler
	WebhookHandler *handlers.WebhookHandler
	AuthMiddleware gin.HandlerFunc
	Webhooks       []WebhookEndpoint
}

// SetupPaymentRoutes configures payment, invoice and gateway webhook routes.
func SetupPaymentRoutes(engine *gin.Engine, cfg *PaymentRouteConfig) {
	payments := engine.Group("/api/v1/payments")
	payments.Use(cfg.AuthMiddleware)
	{
		payments.GET("/:hash", cfg.PaymentHandler.GetPayment)
		payments.POST("/:hash/refund", cfg.PaymentHandler.RefundPayment)
		payments.POST("/:hash/checkout", cfg.PaymentHandler.Checkout)
		payments.GET("/:hash/invoice-link", cfg.PaymentHandler.GetInvoiceLink)
	}

	// Signed links are the only credential for invoices.
	engine.GET("/invoice", cfg.PaymentHandler.ViewInvoice)

	if cfg.WebhookHandler == nil {
		return
	}
	webhooks := engine.Group("/webhooks")
	for _, wh := range cfg.Webhooks {
		webhooks.POST("/"+wh.GatewayID, cfg.WebhookHandler.Gateway(wh.GatewayID, wh.SignatureHeader))
	}
}
