package media

import (
	"github.com/labstack/echo/v4"

	"github.com/inkstonebooks/inkstone/pkg/auth"
)

// RegisterRoutes registers the upload route and static serving of the media
// directory.
func RegisterRoutes(e *echo.Echo, mediaDir string, authMiddleware *auth.Middleware) *Service {
	mediaService := NewService(mediaDir)

	h := &handler{
		mediaService: mediaService,
	}

	e.POST("/images/upload", h.upload, authMiddleware.Authenticate)
	e.Static("/media", mediaDir)

	return mediaService
}
