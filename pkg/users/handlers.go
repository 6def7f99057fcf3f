package users

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/inkstonebooks/inkstone/pkg/auth"
	"github.com/inkstonebooks/inkstone/pkg/errcodes"
)

type handler struct {
	userService *Service
}

// retrieveProfile returns the caller's profile.
func (h *handler) retrieveProfile(c echo.Context) error {
	user := auth.GetUserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	return c.JSON(http.StatusOK, user)
}

// updateProfile updates the caller's avatar, pen name, and bio.
func (h *handler) updateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	user := auth.GetUserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	params := UpdateProfilePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	updated, err := h.userService.UpdateProfile(ctx, user, UpdateProfileOptions(params))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// changeRole sets a user's role. Admin only.
func (h *handler) changeRole(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	params := ChangeRolePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.ChangeRole(ctx, id, params.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}
