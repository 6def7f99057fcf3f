package seo

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the crawler-facing pages.
func RegisterRoutes(e *echo.Echo, db *bun.DB, distDir string) *Service {
	seoService := NewService(db, distDir)

	h := &handler{
		seoService: seoService,
	}

	e.GET("/seo/novels/:id", h.novel)
	e.GET("/seo/authors/:userID", h.author)

	return seoService
}
