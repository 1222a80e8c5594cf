package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/session"
	"bookshelf/internal/user"
)

type Service struct {
	users UserFinder
}

func NewService(users UserFinder) *Service {
	return &Service{users: users}
}

// dummyHash is compared against when the username is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := crypto.HashPassword("bookshelf-unknown-user")
	return h
})

// Login checks the password and returns the identity to bind to the session.
func (s *Service) Login(ctx context.Context, username, password string) (session.Identity, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			crypto.VerifyPassword(dummyHash(), password)
			return session.Identity{}, ErrInvalidCredentials
		}
		return session.Identity{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return session.Identity{}, ErrInvalidCredentials
	}
	return session.Identity{UserID: u.ID, Username: u.Username}, nil
}
