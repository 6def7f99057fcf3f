package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all auth routes and returns the service and
// middleware for other route groups to use.
func RegisterRoutes(e *echo.Echo, db *bun.DB, jwtSecret string) (*Service, *Middleware) {
	authService := NewService(db, jwtSecret)
	mw := NewMiddleware(authService)

	h := &handler{
		authService: authService,
	}

	auth := e.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.POST("/logout", h.logout)
	auth.GET("/me", h.me, mw.Authenticate)

	return authService, mw
}
