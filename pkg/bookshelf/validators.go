package bookshelf

// UpsertPayload represents the request body for adding or updating a
// bookshelf entry.
type UpsertPayload struct {
	NovelID           int  `json:"novel_id" validate:"required,min=1"`
	LastReadChapterID *int `json:"last_read_chapter_id" validate:"omitempty,min=1"`
}
