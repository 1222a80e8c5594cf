package user

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=user

// Repository persists users. Create must fail with ErrAlreadyExists when the
// username is taken, enforced by the store's unique constraint.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (User, error)
}
