package users

// UpdateProfilePayload represents the request body for updating a profile.
type UpdateProfilePayload struct {
	PenName    *string `json:"pen_name" mod:"trim" validate:"omitempty,min=1,max=100"`
	Bio        *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarPath *string `json:"avatar_path" validate:"omitempty,max=500"`
}

// ChangeRolePayload represents the request body for changing a user's role.
type ChangeRolePayload struct {
	Role string `json:"role" validate:"required,oneof=READER AUTHOR ADMIN"`
}
