package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/inkstonebooks/inkstone/pkg/models"
)

// CookieName is the name of the session cookie.
const CookieName = "inkstone_session"

type handler struct {
	authService *Service
}

func setSessionCookie(c echo.Context, token string, maxAge time.Duration) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)
}

// register creates a new reader account and logs it in.
func (h *handler) register(c echo.Context) error {
	ctx := c.Request().Context()

	params := RegisterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Register(ctx, RegisterUserOptions{
		Username: params.Username,
		Email:    params.Email,
		Password: params.Password,
	})
	if err != nil {
		return err
	}

	token, expiry, err := h.authService.GenerateToken(user, false)
	if err != nil {
		return errors.WithStack(err)
	}
	setSessionCookie(c, token, expiry)

	return c.JSON(http.StatusCreated, user)
}

// login handles user login.
func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Authenticate(ctx, params.Username, params.Password)
	if err != nil {
		return err
	}

	token, expiry, err := h.authService.GenerateToken(user, params.RememberMe)
	if err != nil {
		return errors.WithStack(err)
	}
	setSessionCookie(c, token, expiry)

	return c.JSON(http.StatusOK, user)
}

// logout clears the session cookie.
func (h *handler) logout(c echo.Context) error {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// me returns the current authenticated user.
func (h *handler) me(c echo.Context) error {
	user, ok := c.Get("user").(*models.User)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}

	return c.JSON(http.StatusOK, user)
}
