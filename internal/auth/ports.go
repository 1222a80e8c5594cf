package auth

import (
	"context"

	"bookshelf/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=auth

type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}
