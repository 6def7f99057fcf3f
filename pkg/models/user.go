package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User roles. A user has exactly one role; capability checks dispatch on it.
const (
	RoleReader = "READER"
	RoleAuthor = "AUTHOR"
	RoleAdmin  = "ADMIN"
)

// ValidRoles lists every assignable role.
var ValidRoles = []string{RoleReader, RoleAuthor, RoleAdmin}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `bun:",nullzero" json:"username"`
	Email        string    `bun:",nullzero" json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash
	Role         string    `bun:",nullzero" json:"role"`
	AvatarPath   *string   `json:"avatar_path"`

	// Relations
	AuthorProfile *AuthorProfile `bun:"rel:has-one,join:id=user_id" json:"author_profile,omitempty"`
}

// IsAuthor reports whether the user may create top-level content.
func (u *User) IsAuthor() bool {
	return u.Role == RoleAuthor
}

// IsAdmin reports whether the user may manage other users.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthorProfile is the one-to-one author record attached to a user once their
// role becomes AUTHOR. It owns the user's novels.
type AuthorProfile struct {
	bun.BaseModel `bun:"table:author_profiles,alias:ap"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    int       `bun:",nullzero" json:"user_id"`
	PenName   string    `json:"pen_name"`
	Bio       string    `json:"bio"`

	// Relations
	User   *User    `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Novels []*Novel `bun:"rel:has-many,join:id=author_id" json:"novels,omitempty"`
}

// DisplayName returns the pen name, falling back to the username.
func (p *AuthorProfile) DisplayName() string {
	if p.PenName != "" {
		return p.PenName
	}
	if p.User != nil {
		return p.User.Username
	}
	return ""
}
