package novels

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/auth"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// RegisterRoutes registers all novel routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	novelService := NewService(db)

	h := &handler{
		novelService: novelService,
	}

	novels := e.Group("/novels")

	// Reads work anonymously; a session only matters for owner views.
	novels.GET("", h.list, authMiddleware.AuthenticateOptional)
	novels.GET("/:id", h.retrieve, authMiddleware.AuthenticateOptional)

	// Writes require an author session; ownership is checked per novel.
	novels.POST("", h.create, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAuthor))
	novels.POST("/:id", h.update, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAuthor))
	novels.DELETE("/:id", h.delete, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAuthor))
	novels.GET("/:id/analytics", h.analytics, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAuthor))

	return novelService
}
