package volumes

// CreateVolumePayload represents the request body for creating a volume.
type CreateVolumePayload struct {
	Title       string  `json:"title" mod:"trim" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	CoverPath   *string `json:"cover_path" validate:"omitempty,max=500"`
}

// UpdateVolumePayload represents the request body for updating a volume.
type UpdateVolumePayload struct {
	Title       *string `json:"title" mod:"trim" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	CoverPath   *string `json:"cover_path" validate:"omitempty,max=500"`
}
