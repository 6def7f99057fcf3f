package seo

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
)

type handler struct {
	seoService *Service
}

func (h *handler) novel(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Novel")
	}

	page, err := h.seoService.NovelPage(ctx, id)
	if err != nil {
		return err
	}

	return c.HTML(http.StatusOK, page)
}

func (h *handler) author(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	page, err := h.seoService.AuthorPage(ctx, userID)
	if err != nil {
		return err
	}

	return c.HTML(http.StatusOK, page)
}
