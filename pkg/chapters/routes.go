package chapters

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/auth"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// RegisterRoutes registers all chapter routes nested under a novel.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	chapterService := NewService(db)

	h := &handler{
		chapterService: chapterService,
	}

	chapters := e.Group("/novels/:novelID/chapters")

	chapters.GET("", h.list, authMiddleware.AuthenticateOptional)
	chapters.GET("/:id", h.retrieve, authMiddleware.AuthenticateOptional)

	chapters.POST("", h.create, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAuthor))
	chapters.POST("/:id", h.update, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAuthor))
	chapters.DELETE("/:id", h.delete, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAuthor))

	return chapterService
}
