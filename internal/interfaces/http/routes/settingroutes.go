package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/interfaces/http/handlers"
)

// SettingRouteConfig holds the configuration for setting routes
type SettingRouteConfig struct {
	Handler        *handlers.SettingHandler
	AuthMiddleware gin.HandlerFunc
}

// SetupSettingRoutes configures billing setting routes
func SetupSettingRoutes(engine *gin.Engine, config *SettingRouteConfig) {
	settings := engine.Group("/api/v1/settings")
	settings.Use(config.AuthMiddleware)
	{
		settings.GET("/billing", config.Handler.GetBillingSettings)
		settings.PATCH("/billing", config.Handler.UpdateBillingSettings)
	}
}
