package novels

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
	novelService *Service
}

// requireOwnedNovel loads a novel in owner view and verifies the caller owns
// it.
func (h *handler) requireOwnedNovel(c echo.Context) (*models.Novel, error) {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, errcodes.NotFound("Novel")
	}

	user := auth.GetUserFromContext(c)
	if user == nil {
		return nil, errcodes.Unauthorized("Authentication required")
	}

	novel, err := h.novelService.Retrieve(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !novel.OwnedBy(user.ID) {
		return nil, errcodes.Forbidden("You don't own this novel")
	}

	return novel, nil
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListNovelsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListNovelsOptions{
		Category: params.Category,
		Status:   params.Status,
		Limit:    params.Limit,
		Offset:   params.Offset,
	}

	if params.MyNovels {
		user := auth.GetUserFromContext(c)
		if user == nil {
			return errcodes.Unauthorized("Authentication required")
		}
		if user.AuthorProfile == nil {
			// readers have no novels of their own
			return c.JSON(http.StatusOK, listResponse{Novels: []*models.Novel{}, Total: 0})
		}
		opts.AuthorID = &user.AuthorProfile.ID
		opts.OwnerView = true
	}

	novels, total, err := h.novelService.List(ctx, opts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listResponse{Novels: novels, Total: total})
}

type listResponse struct {
	Novels []*models.Novel `json:"novels"`
	Total  int             `json:"total"`
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("view") == "edit" {
		novel, err := h.requireOwnedNovel(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, novel)
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Novel")
	}

	novel, err := h.novelService.Retrieve(ctx, id, false)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, novel)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	user := auth.GetUserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}
	if user.AuthorProfile == nil {
		return errcodes.Forbidden("You need an author profile to publish novels")
	}

	params := CreateNovelPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	novel, err := h.novelService.Create(ctx, CreateNovelOptions{
		AuthorID:    user.AuthorProfile.ID,
		Title:       params.Title,
		Description: params.Description,
		CoverPath:   params.CoverPath,
		Status:      params.Status,
		Category:    params.Category,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, novel)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	novel, err := h.requireOwnedNovel(c)
	if err != nil {
		return err
	}

	params := UpdateNovelPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateNovelOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != novel.Title {
		novel.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Description != nil && *params.Description != novel.Description {
		novel.Description = *params.Description
		opts.Columns = append(opts.Columns, "description")
	}
	if params.CoverPath != nil {
		novel.CoverPath = params.CoverPath
		opts.Columns = append(opts.Columns, "cover_path")
	}
	if params.Status != nil && *params.Status != novel.Status {
		novel.Status = *params.Status
		opts.Columns = append(opts.Columns, "status")
	}
	if params.Category != nil && *params.Category != novel.Category {
		novel.Category = *params.Category
		opts.Columns = append(opts.Columns, "category")
	}

	if err := h.novelService.Update(ctx, novel, opts); err != nil {
		return err
	}

	novel, err = h.novelService.Retrieve(ctx, novel.ID, true)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, novel)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	novel, err := h.requireOwnedNovel(c)
	if err != nil {
		return err
	}

	if err := h.novelService.Delete(ctx, novel); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Novel deleted successfully"})
}

func (h *handler) analytics(c echo.Context) error {
	ctx := c.Request().Context()

	novel, err := h.requireOwnedNovel(c)
	if err != nil {
		return err
	}

	rows, err := h.novelService.Analytics(ctx, novel.ID)
	if err != nil {
		return err
	}

	resp := struct {
		NovelID    int                `json:"novel_id"`
		Title      string             `json:"title"`
		TotalViews int                `json:"total_views"`
		Chapters   []ChapterAnalytics `json:"chapters"`
	}{novel.ID, novel.Title, novel.TotalViews, rows}

	return c.JSON(http.StatusOK, resp)
}
