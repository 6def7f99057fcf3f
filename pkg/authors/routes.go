package authors

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all author routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB) *Service {
	authorService := NewService(db)

	h := &handler{
		authorService: authorService,
	}

	e.GET("/authors/:userID", h.retrieve)

	return authorService
}
