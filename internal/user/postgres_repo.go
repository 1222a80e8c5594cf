package user

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

const userColumns = `id, username, password_hash, bio, avatar_ref, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Bio, &u.AvatarRef, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (username, password_hash)
	VALUES ($1, $2)
	RETURNING id, bio, avatar_ref, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, u.Username, u.PasswordHash).
		Scan(&u.ID, &u.Bio, &u.AvatarRef, &u.CreatedAt, &u.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanUser(r.db.QueryRow(timeoutCtx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanUser(r.db.QueryRow(timeoutCtx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *PostgresRepo) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (User, error) {
	if upd.Empty() {
		return r.GetByID(ctx, id)
	}
	const query = `
	UPDATE users
	SET bio = COALESCE($2, bio),
	    avatar_ref = COALESCE($3, avatar_ref),
	    updated_at = now()
	WHERE id = $1
	RETURNING ` + userColumns
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanUser(r.db.QueryRow(timeoutCtx, query, id, upd.Bio, upd.AvatarRef))
}
