package chapters

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"

	"github.com/inkstonebooks/inkstone/pkg/auth"
	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

type handler struct {
	chapterService *Service
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

	novel, err := h.chapterService.RetrieveNovel(ctx, novelID)
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
	novel, err := h.chapterService.RetrieveNovel(c.Request().Context(), novelID)
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

	chapters, err := h.chapterService.List(ctx, novelID, h.isNovelOwner(c, novelID))
	if err != nil {
		return err
	}

	resp := struct {
		Chapters []*models.Chapter `json:"chapters"`
	}{chapters}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromEchoContext(c)

	novelID, err := h.novelID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Chapter")
	}

	chapter, err := h.chapterService.Retrieve(ctx, id, novelID)
	if err != nil {
		return err
	}

	// drafts are invisible to everyone but the owner
	if !chapter.Visible(h.isNovelOwner(c, novelID)) {
		return errcodes.NotFound("Chapter")
	}

	// reads must never fail because the counter bump did
	if err := h.chapterService.IncrementViews(ctx, chapter); err != nil {
		log.Err(err).Error("failed to increment view counters")
	} else {
		chapter.Views++
	}

	return c.JSON(http.StatusOK, chapter)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	novel, err := h.requireOwnedNovel(c)
	if err != nil {
		return err
	}

	params := CreateChapterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	chapter, err := h.chapterService.Create(ctx, CreateChapterOptions{
		NovelID:  novel.ID,
		VolumeID: params.VolumeID,
		Title:    params.Title,
		Content:  params.Content,
		Status:   params.Status,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, chapter)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	novel, err := h.requireOwnedNovel(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Chapter")
	}

	chapter, err := h.chapterService.Retrieve(ctx, id, novel.ID)
	if err != nil {
		return err
	}

	params := UpdateChapterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateChapterOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != chapter.Title {
		chapter.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Content != nil && *params.Content != chapter.Content {
		chapter.Content = *params.Content
		opts.Columns = append(opts.Columns, "content")
	}
	if params.Status != nil && *params.Status != chapter.Status {
		chapter.Status = *params.Status
		opts.Columns = append(opts.Columns, "status")
		if chapter.Status == models.ChapterStatusPublished {
			chapter.PublishedAt = time.Now()
			opts.Columns = append(opts.Columns, "published_at")
		}
	}
	if params.VolumeID != nil {
		if *params.VolumeID == 0 {
			chapter.VolumeID = nil
		} else {
			if err := h.chapterService.ValidateVolumeMembership(ctx, *params.VolumeID, novel.ID); err != nil {
				return err
			}
			chapter.VolumeID = params.VolumeID
		}
		opts.Columns = append(opts.Columns, "volume_id")
	}

	if err := h.chapterService.Update(ctx, chapter, opts); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, chapter)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	novel, err := h.requireOwnedNovel(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Chapter")
	}

	chapter, err := h.chapterService.Retrieve(ctx, id, novel.ID)
	if err != nil {
		return err
	}

	if err := h.chapterService.Delete(ctx, chapter); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Chapter deleted successfully"})
}
