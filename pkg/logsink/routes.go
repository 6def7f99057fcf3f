package logsink

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the frontend error reporting endpoint.
func RegisterRoutes(e *echo.Echo, sink Sink) {
	h := &handler{
		sink: sink,
	}

	e.POST("/log-frontend-error", h.frontendError)
}
