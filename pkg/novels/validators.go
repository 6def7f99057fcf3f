package novels

// CreateNovelPayload represents the request body for creating a novel.
type CreateNovelPayload struct {
	Title       string  `json:"title" mod:"trim" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	CoverPath   *string `json:"cover_path" validate:"omitempty,max=500"`
	Status      string  `json:"status" default:"ONGOING" validate:"oneof=ONGOING COMPLETED HIATUS"`
	Category    string  `json:"category" default:"OTHERS" validate:"oneof=FANTASY SCIFI ROMANCE URBAN HISTORY MARTIAL OTHERS"`
}

// UpdateNovelPayload represents the request body for updating a novel.
type UpdateNovelPayload struct {
	Title       *string `json:"title" mod:"trim" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	CoverPath   *string `json:"cover_path" validate:"omitempty,max=500"`
	Status      *string `json:"status" validate:"omitempty,oneof=ONGOING COMPLETED HIATUS"`
	Category    *string `json:"category" validate:"omitempty,oneof=FANTASY SCIFI ROMANCE URBAN HISTORY MARTIAL OTHERS"`
}

// ListNovelsQuery represents the query parameters for listing novels.
type ListNovelsQuery struct {
	MyNovels bool    `query:"my_novels"`
	Category *string `query:"category" validate:"omitempty,oneof=FANTASY SCIFI ROMANCE URBAN HISTORY MARTIAL OTHERS"`
	Status   *string `query:"status" validate:"omitempty,oneof=ONGOING COMPLETED HIATUS"`
	Limit    int     `query:"limit" default:"50" validate:"min=1,max=100"`
	Offset   int     `query:"offset" default:"0" validate:"min=0"`
}
