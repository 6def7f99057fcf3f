package users

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/auth"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// RegisterRoutes registers all user routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	e.GET("/profile", h.retrieveProfile, authMiddleware.Authenticate)
	e.POST("/profile", h.updateProfile, authMiddleware.Authenticate)

	// Role changes are admin only.
	e.POST("/users/:id/role", h.changeRole, authMiddleware.Authenticate, authMiddleware.RequireRole(models.RoleAdmin))

	return userService
}
