package user

import (
	"context"
	"errors"
	"strings"

	"bookshelf/internal/platform/crypto"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user with the default bio and avatar. It does not log
// the user in.
func (s *Service) Register(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)

	// Short-circuit only; the unique constraint is what actually decides.
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return User{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	newUser := &User{
		Username:     username,
		PasswordHash: hash,
		Bio:          DefaultBio,
		AvatarRef:    DefaultAvatarRef,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}
	return *newUser, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (User, error) {
	return s.repo.UpdateProfile(ctx, id, upd)
}
