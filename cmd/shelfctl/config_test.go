package main

import (
	"os"
	"path/filepath"
	"testing"

	"bookshelf/internal/platform/database"
)

func TestMigrationsDir_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")

	if got := migrationsDir(database.DriverSQLite); got != "/custom/migrations" {
		t.Fatalf("expected MIGRATIONS_DIR override, got %q", got)
	}
}

func TestMigrationsDir_Default(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")

	if got := migrationsDir(database.DriverPostgres); got != filepath.Join("db", "migrations", "postgres") {
		t.Fatalf("unexpected postgres dir %q", got)
	}
	if got := migrationsDir(database.DriverSQLite); got != filepath.Join("db", "migrations", "sqlite") {
		t.Fatalf("unexpected sqlite dir %q", got)
	}
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, ".env")

	if err := os.WriteFile(p, []byte("DB_DSN=from_file\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("DB_DSN", "from_env")
	t.Chdir(tmp)

	loadEnvFiles()

	if got := os.Getenv("DB_DSN"); got != "from_env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
}
