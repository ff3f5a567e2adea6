package models

import (
	"time"
)

// User represents a registered account in the system
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Nickname     string    `json:"nickname" db:"nickname"`
	AvatarURL    string    `json:"avatar_url,omitempty" db:"avatar_url"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser" db:"is_superuser"`
	IsModer      bool      `json:"is_moder" db:"is_moder"`
	IsBanned     bool      `json:"is_banned" db:"is_banned"`
	IsMuted      bool      `json:"is_muted" db:"is_muted"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Profile is the public projection of a user attached to articles and comments
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Profile returns the public view of the user
func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		AvatarURL: u.AvatarURL,
	}
}

// CanModerate reports whether the user may act on content they do not own
func (u *User) CanModerate() bool {
	return u.IsStaff || u.IsSuperuser || u.IsModer
}
