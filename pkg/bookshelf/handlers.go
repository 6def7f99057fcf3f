package bookshelf

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/inkstonebooks/inkstone/pkg/auth"
	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

type handler struct {
	bookshelfService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.GetUserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	entries, err := h.bookshelfService.List(ctx, userID)
	if err != nil {
		return err
	}

	resp := struct {
		Bookshelf []*models.ReadingProgress `json:"bookshelf"`
	}{entries}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) upsert(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.GetUserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	params := UpsertPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	entry, created, err := h.bookshelfService.Upsert(ctx, UpsertOptions{
		UserID:            userID,
		NovelID:           params.NovelID,
		LastReadChapterID: params.LastReadChapterID,
	})
	if err != nil {
		return err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	return c.JSON(status, entry)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.GetUserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Bookshelf entry")
	}

	if err := h.bookshelfService.Delete(ctx, id, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Removed from bookshelf"})
}
