package user

import (
	"errors"
	"time"
)

const (
	DefaultBio       = "This user hasn't written a bio yet."
	DefaultAvatarRef = "default"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("username already exists")
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Bio          string    `json:"bio"`
	AvatarRef    string    `json:"avatar_ref"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasAvatar reports whether the user uploaded a picture.
func (u User) HasAvatar() bool {
	return u.AvatarRef != "" && u.AvatarRef != DefaultAvatarRef
}

// ProfileUpdate carries the editable profile fields; nil leaves a field as is.
type ProfileUpdate struct {
	Bio       *string
	AvatarRef *string
}

func (p ProfileUpdate) Empty() bool {
	return p.Bio == nil && p.AvatarRef == nil
}
