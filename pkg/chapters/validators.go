package chapters

// CreateChapterPayload represents the request body for creating a chapter.
type CreateChapterPayload struct {
	Title    string `json:"title" mod:"trim" validate:"required,min=1,max=200"`
	Content  string `json:"content" validate:"required"`
	VolumeID *int   `json:"volume_id" validate:"omitempty,min=1"`
	Status   string `json:"status" default:"DRAFT" validate:"oneof=DRAFT PUBLISHED"`
}

// UpdateChapterPayload represents the request body for updating a chapter.
// A volume_id of 0 moves the chapter out of its volume.
type UpdateChapterPayload struct {
	Title    *string `json:"title" mod:"trim" validate:"omitempty,min=1,max=200"`
	Content  *string `json:"content" validate:"omitempty"`
	VolumeID *int    `json:"volume_id" validate:"omitempty,min=0"`
	Status   *string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}
