package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/infrastructure/payment"
	"github.com/siteforge/siteforge/internal/infrastructure/ratelimit"
	"github.com/siteforge/siteforge/internal/interfaces/http/middleware"
	"github.com/siteforge/siteforge/internal/interfaces/http/routes"
	"github.com/siteforge/siteforge/internal/shared/version"
)

// webhookSignatureHeaders names the header each gateway signs webhooks with.
var webhookSignatureHeaders = map[string]string{
	payment.StripeGatewayID: "Stripe-Signature",
}

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	r := c.engine
	r.Use(middleware.Recovery(c.log))
	r.Use(middleware.Logger(c.log))
	r.Use(middleware.ErrorHandler(c.log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))

	r.GET("/health", c.hdlrs.healthHandler.HealthCheck)
	r.GET("/version", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"version": version.String()})
	})

	apiAuth := middleware.APIKeyAuth(c.cfg.API.Key, c.cfg.API.Secret, c.log)

	var registerLimit gin.HandlerFunc
	if rpm := c.cfg.API.RegisterRateRPM; rpm > 0 {
		registerLimit = middleware.RateLimit(
			c.svcs.limiter,
			ratelimit.RateLimitConfig{RequestsPerMinute: rpm},
			middleware.ByClientIP,
			c.log,
		)
	}

	routes.SetupRegistrationRoutes(r, &routes.RegistrationRouteConfig{
		Handler:        c.hdlrs.registrationHandler,
		AuthMiddleware: apiAuth,
		RateLimit:      registerLimit,
	})

	var webhooks []routes.WebhookEndpoint
	for _, v := range c.svcs.webhooks {
		if header, ok := webhookSignatureHeaders[v.ID()]; ok {
			webhooks = append(webhooks, routes.WebhookEndpoint{GatewayID: v.ID(), SignatureHeader: header})
		}
	}
	routes.SetupPaymentRoutes(r, &routes.PaymentRouteConfig{
		PaymentHandler: c.hdlrs.paymentHandler,
		WebhookHandler: c.hdlrs.webhookHandler,
		AuthMiddleware: apiAuth,
		Webhooks:       webhooks,
	})

	routes.SetupMembershipRoutes(r, &routes.MembershipRouteConfig{
		Handler:        c.hdlrs.membershipHandler,
		AuthMiddleware: apiAuth,
	})
	routes.SetupNoteRoutes(r, &routes.NoteRouteConfig{
		Handler:        c.hdlrs.noteHandler,
		AuthMiddleware: apiAuth,
	})
	routes.SetupSettingRoutes(r, &routes.SettingRouteConfig{
		Handler:        c.hdlrs.settingHandler,
		AuthMiddleware: apiAuth,
	})
}

// Engine returns the Gin engine
func (c *Container) Engine() *gin.Engine {
	return c.engine
}
