package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Volume groups chapters within a novel. SortOrder is unique per novel and
// assigned by the service on create; it is never caller-supplied.
type Volume struct {
	bun.BaseModel `bun:"table:volumes,alias:v"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	NovelID     int       `bun:",nullzero" json:"novel_id"`
	Title       string    `bun:",nullzero" json:"title"`
	Description string    `json:"description"`
	CoverPath   *string   `json:"cover_path"`
	SortOrder   int       `bun:",nullzero" json:"order"`

	// Relations
	Novel *Novel `bun:"rel:belongs-to,join:novel_id=id" json:"-"`

	// Assembled by the novels service.
	Chapters []*Chapter `bun:"-" json:"chapters"`
}
