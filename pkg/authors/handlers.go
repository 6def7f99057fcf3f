package authors

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
)

type handler struct {
	authorService *Service
}

// novelSummary is the public shape of a novel on an author page.
type novelSummary struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CoverPath   *string   `json:"cover_path"`
	Status      string    `json:"status"`
	Category    string    `json:"category"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type authorPageResponse struct {
	UserID     int            `json:"user_id"`
	Username   string         `json:"username"`
	PenName    string         `json:"pen_name"`
	Bio        string         `json:"bio"`
	AvatarPath *string        `json:"avatar_path"`
	Novels     []novelSummary `json:"novels"`
}

// retrieve returns the public author page for a user.
func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	profile, err := h.authorService.Retrieve(ctx, userID)
	if err != nil {
		return err
	}

	resp := authorPageResponse{
		UserID:  profile.UserID,
		PenName: profile.PenName,
		Bio:     profile.Bio,
		Novels:  make([]novelSummary, 0, len(profile.Novels)),
	}
	if profile.User != nil {
		resp.Username = profile.User.Username
		resp.AvatarPath = profile.User.AvatarPath
	}
	for _, novel := range profile.Novels {
		resp.Novels = append(resp.Novels, novelSummary{
			ID:          novel.ID,
			Title:       novel.Title,
			Description: novel.Description,
			CoverPath:   novel.CoverPath,
			Status:      novel.Status,
			Category:    novel.Category,
			UpdatedAt:   novel.UpdatedAt,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
