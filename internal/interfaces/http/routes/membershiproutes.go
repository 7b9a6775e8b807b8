package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/interfaces/http/handlers"
)

// MembershipRouteConfig holds dependencies for membership routes.
type MembershipRouteConfig struct {
	Handler        *handlers.MembershipHandler
	AuthMiddleware gin.HandlerFunc
}

// SetupMembershipRoutes configures membership routes.
func SetupMembershipRoutes(engine *gin.Engine, cfg *MembershipRouteConfig) {
	memberships := engine.Group("/api/v1/memberships")
	memberships.Use(cfg.AuthMiddleware)
	{
		memberships.GET("/:id", cfg.Handler.GetMembership)
		memberships.POST("/:id/cancel", cfg.Handler.CancelMembership)
	}
}
