package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate extracts and validates the session token from the cookie. If
// valid, it verifies the user still exists and adds user info to the context.
// If not authenticated, it returns 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		cookie, err := c.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			return errcodes.Unauthorized("Authentication required")
		}

		claims, err := m.authService.ValidateToken(cookie.Value)
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		user, err := m.authService.GetUserByID(ctx, claims.UserID)
		if err != nil {
			return errcodes.Unauthorized("User not found")
		}

		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("user", user)

		return next(c)
	}
}

// AuthenticateOptional extracts user info if a valid session is present but
// doesn't require authentication. Anonymous requests proceed with no user in
// the context.
func (m *Middleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		cookie, err := c.Cookie(CookieName)
		if err == nil && cookie.Value != "" {
			claims, err := m.authService.ValidateToken(cookie.Value)
			if err == nil {
				user, err := m.authService.GetUserByID(ctx, claims.UserID)
				if err == nil {
					c.Set("user_id", user.ID)
					c.Set("username", user.Username)
					c.Set("user", user)
				}
			}
		}
		return next(c)
	}
}

// RequireRole returns middleware that checks if the user has one of the given
// roles. Must be used after Authenticate middleware.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get("user").(*models.User)
			if !ok {
				return errcodes.Unauthorized("Authentication required")
			}

			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}

			return errcodes.Forbidden("You don't have permission to perform this action")
		}
	}
}

// GetUserFromContext retrieves the user from the Echo context.
func GetUserFromContext(c echo.Context) *models.User {
	user, _ := c.Get("user").(*models.User)
	return user
}

// GetUserIDFromContext retrieves the user ID from the Echo context.
func GetUserIDFromContext(c echo.Context) (int, bool) {
	userID, ok := c.Get("user_id").(int)
	return userID, ok
}
