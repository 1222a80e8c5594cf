package book

import (
	"context"

	"bookshelf/internal/catalog"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository persists books. Listings are ordered by id and carry the owner's
// username.
type Repository interface {
	ListAll(ctx context.Context) ([]Book, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Book, error)
	ExternalIDsByOwner(ctx context.Context, ownerID int64) ([]string, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	GetByOwnerAndExternalID(ctx context.Context, ownerID int64, externalID string) (Book, error)
	// Create fails with ErrDuplicate when the owner already has the external id.
	Create(ctx context.Context, b *Book) error
	// CreateBatch inserts atomically and returns the external ids skipped as
	// already owned.
	CreateBatch(ctx context.Context, books []*Book) (duplicates []string, err error)
	// Delete removes the book only if ownerID owns it; otherwise ErrNotFound.
	Delete(ctx context.Context, id, ownerID int64) error
}

// Catalog is the subset of catalog.Service the collection needs.
type Catalog interface {
	SearchStrict(ctx context.Context, query string, limit int) ([]catalog.Summary, error)
	Fetch(ctx context.Context, externalID string) (catalog.Record, error)
}
