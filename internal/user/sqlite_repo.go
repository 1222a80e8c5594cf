package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookshelf/internal/platform/database"
)

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

func scanSQLiteUser(row *sql.Row) (User, error) {
	var u User
	var created, updated database.Time
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Bio, &u.AvatarRef, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.CreatedAt, u.UpdatedAt = created.Time, updated.Time
	return u, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (username, password_hash)
	VALUES (?, ?)
	RETURNING id, bio, avatar_ref, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var created, updated database.Time
	err := r.db.QueryRowContext(timeoutCtx, query, u.Username, u.PasswordHash).
		Scan(&u.ID, &u.Bio, &u.AvatarRef, &created, &updated)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	u.CreatedAt, u.UpdatedAt = created.Time, updated.Time
	return nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanSQLiteUser(r.db.QueryRowContext(timeoutCtx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanSQLiteUser(r.db.QueryRowContext(timeoutCtx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepo) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (User, error) {
	if upd.Empty() {
		return r.GetByID(ctx, id)
	}
	const query = `
	UPDATE users
	SET bio = COALESCE(?, bio),
	    avatar_ref = COALESCE(?, avatar_ref),
	    updated_at = CURRENT_TIMESTAMP
	WHERE id = ?
	RETURNING ` + userColumns
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanSQLiteUser(r.db.QueryRowContext(timeoutCtx, query, upd.Bio, upd.AvatarRef, id))
}
