package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Novel statuses.
const (
	NovelStatusOngoing   = "ONGOING"
	NovelStatusCompleted = "COMPLETED"
	NovelStatusHiatus    = "HIATUS"
)

// Novel categories.
const (
	CategoryFantasy = "FANTASY"
	CategorySciFi   = "SCIFI"
	CategoryRomance = "ROMANCE"
	CategoryUrban   = "URBAN"
	CategoryHistory = "HISTORY"
	CategoryMartial = "MARTIAL"
	CategoryOthers  = "OTHERS"
)

type Novel struct {
	bun.BaseModel `bun:"table:novels,alias:n"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	AuthorID    int       `bun:",nullzero" json:"author_id"`
	Title       string    `bun:",nullzero" json:"title"`
	Description string    `json:"description"`
	CoverPath   *string   `json:"cover_path"`
	Status      string    `bun:",nullzero" json:"status"`
	Category    string    `bun:",nullzero" json:"category"`
	Views       int       `json:"views"`

	// Relations
	Author *AuthorProfile `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`

	// Assembled by the novels service, not scanned from a relation: volumes
	// carry their visibility-filtered chapters, and loose chapters are the
	// ones with no volume. TotalViews sums views of published chapters only.
	Volumes       []*Volume  `bun:"-" json:"volumes"`
	LooseChapters []*Chapter `bun:"-" json:"chapters_without_volume"`
	TotalViews    int        `bun:"-" json:"total_views"`
}

// OwnedBy reports whether the given user is the novel's owning author. The
// Author relation must be loaded.
func (n *Novel) OwnedBy(userID int) bool {
	return n.Author != nil && n.Author.UserID == userID
}
