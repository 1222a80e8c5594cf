package book

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"bookshelf/internal/platform/database"
)

// SQLiteRepo keeps authors as a JSON array in a TEXT column.
type SQLiteRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLiteRepo(db *sql.DB, timeout time.Duration) *SQLiteRepo {
	return &SQLiteRepo{db: db, timeout: timeout}
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const insertBookSQLite = `
	INSERT INTO books (owner_id, external_id, title, authors, description, thumbnail, published_date, info_link)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (owner_id, external_id) DO NOTHING
	RETURNING id, created_at
	`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteBook(row rowScanner) (Book, error) {
	var b Book
	var authors string
	var created database.Time
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.OwnerUsername, &b.ExternalID, &b.Title, &authors,
		&b.Description, &b.Thumbnail, &b.PublishedDate, &b.InfoLink, &created,
	)
	if err != nil {
		return Book{}, err
	}
	if err := json.Unmarshal([]byte(authors), &b.Authors); err != nil {
		return Book{}, err
	}
	if b.Authors == nil {
		b.Authors = []string{}
	}
	b.CreatedAt = created.Time
	return b, nil
}

func (r *SQLiteRepo) list(ctx context.Context, query string, args ...any) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		b, err := scanSQLiteBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *SQLiteRepo) get(ctx context.Context, query string, args ...any) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanSQLiteBook(r.db.QueryRowContext(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *SQLiteRepo) ListAll(ctx context.Context) ([]Book, error) {
	return r.list(ctx, selectBooks+`ORDER BY b.id`)
}

func (r *SQLiteRepo) ListByOwner(ctx context.Context, ownerID int64) ([]Book, error) {
	return r.list(ctx, selectBooks+`WHERE b.owner_id = ? ORDER BY b.id`, ownerID)
}

func (r *SQLiteRepo) ExternalIDsByOwner(ctx context.Context, ownerID int64) ([]string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(timeoutCtx, `SELECT external_id FROM books WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	return r.get(ctx, selectBooks+`WHERE b.id = ?`, id)
}

func (r *SQLiteRepo) GetByOwnerAndExternalID(ctx context.Context, ownerID int64, externalID string) (Book, error) {
	return r.get(ctx, selectBooks+`WHERE b.owner_id = ? AND b.external_id = ?`, ownerID, externalID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// insert reports inserted=false when the owner already has the external id.
func insertSQLite(ctx context.Context, q queryRower, b *Book) (inserted bool, err error) {
	authors := b.Authors
	if authors == nil {
		authors = []string{}
	}
	encoded, err := json.Marshal(authors)
	if err != nil {
		return false, err
	}

	var created database.Time
	err = q.QueryRowContext(ctx, insertBookSQLite,
		b.OwnerID, b.ExternalID, b.Title, string(encoded), b.Description, b.Thumbnail, b.PublishedDate, b.InfoLink,
	).Scan(&b.ID, &created)
	if errors.Is(err, sql.ErrNoRows) || database.IsUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	b.CreatedAt = created.Time
	return true, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, b *Book) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	inserted, err := insertSQLite(timeoutCtx, r.db, b)
	if err != nil {
		return err
	}
	if !inserted {
		return ErrDuplicate
	}
	return nil
}

func (r *SQLiteRepo) CreateBatch(ctx context.Context, books []*Book) ([]string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(timeoutCtx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	duplicates := []string{}
	for _, b := range books {
		inserted, err := insertSQLite(timeoutCtx, tx, b)
		if err != nil {
			return nil, err
		}
		if !inserted {
			duplicates = append(duplicates, b.ExternalID)
		}
	}
	return duplicates, tx.Commit()
}

func (r *SQLiteRepo) Delete(ctx context.Context, id, ownerID int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(timeoutCtx, `DELETE FROM books WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
