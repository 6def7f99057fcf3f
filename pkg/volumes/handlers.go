package volumes

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
	volumeService *Service
}

func (h *handler) novelID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("novelID"))
	if err != nil {
		return 0, errcodes.NotFound("Novel")
	}
	return id, nil
}

// requireOwnedNovel verifies the caller owns the parent novel.
func (h *handler) requireOwnedNovel(c echo.Context) (*models.Novel, error) {
	ctx := c.Request().Context()

	novelID, err := h.novelID(c)
	if err != nil {
		return nil, err
	}

	user := auth.GetUserFromContext(c)
	if user == nil {
		return nil, errcodes.Unauthorized("Authentication required")
	}

	novel, err := h.volumeService.RetrieveNovel(ctx, novelID)
	if err != nil {
		return nil, err
	}
	if !novel.OwnedBy(user.ID) {
		return nil, errcodes.Forbidden("You don't own this novel")
	}

	return novel, nil
}

// isNovelOwner reports whether the caller owns the parent novel, for read
// endpoints where ownership only widens visibility.
func (h *handler) isNovelOwner(c echo.Context, novelID int) bool {
	user := auth.GetUserFromContext(c)
	if user == nil {
		return false
	}
	novel, err := h.volumeService.RetrieveNovel(c.Request().Context(), novelID)
	if err != nil {
		return false
	}
	return novel.OwnedBy(user.ID)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	novelID, err := h.novelID(c)
	if err != nil {
		return err
	}

	volumes, err := h.volumeService.List(ctx, novelID)
	if err != nil {
		return err
	}

	resp := struct {
		Volumes []*models.Volume `json:"volumes"`
	}{volumes}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	novelID, err := h.novelID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Volume")
	}

	volume, err := h.volumeService.Retrieve(ctx, id, novelID, h.isNovelOwner(c, novelID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, volume)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	novel, err := h.requireOwnedNovel(c)
	if err != nil {
		return err
	}

	params := CreateVolumePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	volume, err := h.volumeService.Create(ctx, CreateVolumeOptions{
		NovelID:     novel.ID,
		Title:       params.Title,
		Description: params.Description,
		CoverPath:   params.CoverPath,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, volume)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	novel, err := h.requireOwnedNovel(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Volume")
	}

	volume, err := h.volumeService.Retrieve(ctx, id, novel.ID, true)
	if err != nil {
		return err
	}

	params := UpdateVolumePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateVolumeOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != volume.Title {
		volume.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Description != nil && *params.Description != volume.Description {
		volume.Description = *params.Description
		opts.Columns = append(opts.Columns, "description")
	}
	if params.CoverPath != nil {
		volume.CoverPath = params.CoverPath
		opts.Columns = append(opts.Columns, "cover_path")
	}

	if err := h.volumeService.Update(ctx, volume, opts); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, volume)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	novel, err := h.requireOwnedNovel(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Volume")
	}

	volume, err := h.volumeService.Retrieve(ctx, id, novel.ID, true)
	if err != nil {
		return err
	}

	if err := h.volumeService.Delete(ctx, volume); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Volume deleted successfully"})
}
