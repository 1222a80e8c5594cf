package book

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookshelf/internal/platform/database"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const selectBooks = `
	SELECT b.id, b.owner_id, u.username, b.external_id, b.title, b.authors,
	       b.description, b.thumbnail, b.published_date, b.info_link, b.created_at
	FROM books b
	JOIN users u ON u.id = b.owner_id
	`

const insertBook = `
	INSERT INTO books (owner_id, external_id, title, authors, description, thumbnail, published_date, info_link)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (owner_id, external_id) DO NOTHING
	RETURNING id, created_at
	`

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.OwnerUsername, &b.ExternalID, &b.Title, &b.Authors,
		&b.Description, &b.Thumbnail, &b.PublishedDate, &b.InfoLink, &b.CreatedAt,
	)
	if b.Authors == nil {
		b.Authors = []string{}
	}
	return b, err
}

func (r *PostgresRepo) list(ctx context.Context, query string, args ...any) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *PostgresRepo) get(ctx context.Context, query string, args ...any) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) ListAll(ctx context.Context) ([]Book, error) {
	return r.list(ctx, selectBooks+`ORDER BY b.id`)
}

func (r *PostgresRepo) ListByOwner(ctx context.Context, ownerID int64) ([]Book, error) {
	return r.list(ctx, selectBooks+`WHERE b.owner_id = $1 ORDER BY b.id`, ownerID)
}

func (r *PostgresRepo) ExternalIDsByOwner(ctx context.Context, ownerID int64) ([]string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, `SELECT external_id FROM books WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	return r.get(ctx, selectBooks+`WHERE b.id = $1`, id)
}

func (r *PostgresRepo) GetByOwnerAndExternalID(ctx context.Context, ownerID int64, externalID string) (Book, error) {
	return r.get(ctx, selectBooks+`WHERE b.owner_id = $1 AND b.external_id = $2`, ownerID, externalID)
}

func insertArgs(b *Book) []any {
	authors := b.Authors
	if authors == nil {
		authors = []string{}
	}
	return []any{b.OwnerID, b.ExternalID, b.Title, authors, b.Description, b.Thumbnail, b.PublishedDate, b.InfoLink}
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(timeoutCtx, insertBook, insertArgs(b)...).Scan(&b.ID, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || database.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// CreateBatch pipelines the inserts; a batch runs as one implicit transaction.
func (r *PostgresRepo) CreateBatch(ctx context.Context, books []*Book) ([]string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	batch := &pgx.Batch{}
	for _, b := range books {
		batch.Queue(insertBook, insertArgs(b)...)
	}
	br := r.db.SendBatch(timeoutCtx, batch)

	duplicates := []string{}
	for _, b := range books {
		err := br.QueryRow().Scan(&b.ID, &b.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			duplicates = append(duplicates, b.ExternalID)
			continue
		}
		if err != nil {
			_ = br.Close()
			return nil, err
		}
	}
	return duplicates, br.Close()
}

func (r *PostgresRepo) Delete(ctx context.Context, id, ownerID int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
