package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/interfaces/http/handlers"
)

// RegistrationRouteConfig holds dependencies for the registration endpoints.
type RegistrationRouteConfig struct {
	Handler        *handlers.RegistrationHandler
	AuthMiddleware gin.HandlerFunc
	RateLimit      gin.HandlerFunc
}

// SetupRegistrationRoutes configures GET and POST /register.
func SetupRegistrationRoutes(engine *gin.Engine, cfg *RegistrationRouteConfig) {
	register := engine.Group("/register")
	register.Use(cfg.AuthMiddleware)
	{
		register.GET("", cfg.Handler.GetStatus)
		if cfg.RateLimit != nil {
			register.POST("", cfg.RateLimit, cfg.Handler.Register)
		} else {
			register.POST("", cfg.Handler.Register)
		}
	}
}
