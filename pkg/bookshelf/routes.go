package bookshelf

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/auth"
)

// RegisterRoutes registers all bookshelf routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	bookshelfService := NewService(db)

	h := &handler{
		bookshelfService: bookshelfService,
	}

	shelf := e.Group("/bookshelf")
	shelf.Use(authMiddleware.Authenticate)

	shelf.GET("", h.list)
	shelf.POST("", h.upsert)
	shelf.DELETE("/:id", h.delete)

	return bookshelfService
}
