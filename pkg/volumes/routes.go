package volumes

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/auth"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// RegisterRoutes registers all volume routes nested under a novel.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	volumeService := NewService(db)

	h := &handler{
		volumeService: volumeService,
	}

	volumes := e.Group("/novels/:novelID/volumes")

	volumes.GET("", h.list, authMiddleware.AuthenticateOptional)
	volumes.GET("/:id", h.retrieve, authMiddleware.AuthenticateOptional)

	volumes.POST("", h.create, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAuthor))
	volumes.POST("/:id", h.update, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAuthor))
	volumes.DELETE("/:id", h.delete, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAuthor))

	return volumeService
}
