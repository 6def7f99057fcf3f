package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Chapter statuses.
const (
	ChapterStatusDraft     = "DRAFT"
	ChapterStatusPublished = "PUBLISHED"
)

// Chapter belongs to a novel and optionally to one of its volumes. SortOrder
// is a single flat sequence per novel, independent of volume membership, and
// is assigned by the service on create.
type Chapter struct {
	bun.BaseModel `bun:"table:chapters,alias:c"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	NovelID     int       `bun:",nullzero" json:"novel_id"`
	VolumeID    *int      `json:"volume_id"`
	Title       string    `bun:",nullzero" json:"title"`
	Content     string    `json:"content"`
	SortOrder   int       `bun:",nullzero" json:"order"`
	Status      string    `bun:",nullzero" json:"status"`
	PublishedAt time.Time `json:"published_at"`
	Views       int       `json:"views"`

	// Relations
	Novel *Novel `bun:"rel:belongs-to,join:novel_id=id" json:"-"`
}

// Visible reports whether the chapter should be included for the given view
// mode. Owners see drafts; everyone else only sees published chapters.
func (c *Chapter) Visible(ownerView bool) bool {
	return ownerView || c.Status == ChapterStatusPublished
}
