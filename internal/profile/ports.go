package profile

import (
	"context"

	"bookshelf/internal/book"
	"bookshelf/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=profile

type UserStore interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	UpdateProfile(ctx context.Context, id int64, upd user.ProfileUpdate) (user.User, error)
}

type BookLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]book.Book, error)
}
