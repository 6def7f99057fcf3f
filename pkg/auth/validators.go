package auth

// RegisterPayload represents the registration request body.
type RegisterPayload struct {
	Username  string `json:"username" mod:"trim" validate:"required,min=3,max=50"`
	Email     string `json:"email" mod:"trim" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

// LoginPayload represents the login request body.
type LoginPayload struct {
	Username   string `json:"username" mod:"trim" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}
