package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/user"
)

const queryTimeout = 5 * time.Second

func loadEnvFiles() {
	// Do not override environment provided by the runtime (e.g. Docker).
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// migrationsDir is where `migrate create` writes new files for driver.
func migrationsDir(driver database.Driver) string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	sub := "postgres"
	if driver == database.DriverSQLite {
		sub = "sqlite"
	}
	return filepath.Join("db", "migrations", sub)
}

// conn is an open database with the repositories for its driver.
type conn struct {
	db     *sql.DB
	driver database.Driver
	users  user.Repository
	books  book.Repository
	close  func()
}

func openConn(ctx context.Context, dsn string) (*conn, error) {
	driver, target, err := database.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	if driver == database.DriverPostgres {
		pool, err := database.OpenPostgres(ctx, target)
		if err != nil {
			return nil, err
		}
		return &conn{
			db:     database.SQLDB(pool),
			driver: driver,
			users:  user.NewPostgresRepo(pool, queryTimeout),
			books:  book.NewPostgresRepo(pool, queryTimeout),
			close:  pool.Close,
		}, nil
	}

	db, err := database.OpenSQLite(target)
	if err != nil {
		return nil, err
	}
	return &conn{
		db:     db,
		driver: driver,
		users:  user.NewSQLiteRepo(db, queryTimeout),
		books:  book.NewSQLiteRepo(db, queryTimeout),
		close:  func() { _ = db.Close() },
	}, nil
}
