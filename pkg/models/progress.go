package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ReadingProgress is a bookshelf entry: one row per (user, novel), optionally
// pointing at the last chapter read. The chapter pointer is cleared, not
// cascaded, when the chapter disappears.
type ReadingProgress struct {
	bun.BaseModel `bun:"table:reading_progress,alias:rp"`

	ID                int       `bun:",pk,nullzero" json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	UserID            int       `bun:",nullzero" json:"user_id"`
	NovelID           int       `bun:",nullzero" json:"novel_id"`
	LastReadChapterID *int      `json:"last_read_chapter_id"`
	AddedAt           time.Time `json:"added_to_bookshelf_at"`

	// Relations
	Novel           *Novel   `bun:"rel:belongs-to,join:novel_id=id" json:"novel_detail,omitempty"`
	LastReadChapter *Chapter `bun:"rel:belongs-to,join:last_read_chapter_id=id" json:"last_read_chapter_detail,omitempty"`
}
