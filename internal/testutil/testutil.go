package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/session"
)

// QuietLogger discards everything.
func QuietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// OpenSQLite returns a migrated database in a temp dir, closed on cleanup.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	conn, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := database.MigrateUp(context.Background(), conn, database.DriverSQLite); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// OpenPostgres connects to TEST_DB_DSN, migrates and empties the tables. The
// test is skipped when the variable is unset.
func OpenPostgres(t testing.TB) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := database.OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.MigrateUp(ctx, database.SQLDB(pool), database.DriverPostgres); err != nil {
		t.Fatalf("migrate postgres: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE books, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

// WithIdentity returns r acting as the given user.
func WithIdentity(r *http.Request, userID int64, username string) *http.Request {
	id := session.Identity{UserID: userID, Username: username}
	return r.WithContext(session.WithIdentity(r.Context(), id))
}

// NewRequest creates a request with an optional JSON body.
func NewRequest(method, path string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	bodyBytes, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// NewFormRequest creates a url-encoded form submission.
func NewFormRequest(method, path string, form url.Values) *http.Request {
	r := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// AsAPI marks r as coming from a script rather than a browser navigation.
func AsAPI(r *http.Request) *http.Request {
	r.Header.Set("X-Requested-With", "XMLHttpRequest")
	r.Header.Set("Accept", "application/json")
	return r
}

// SessionCookie signs a valid session cookie for the user.
func SessionCookie(t testing.TB, secret, name string, userID int64, username string) *http.Cookie {
	t.Helper()
	token, err := crypto.GenerateToken(secret, strconv.FormatInt(userID, 10), username, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return &http.Cookie{Name: name, Value: token}
}

// ExpiredSessionToken signs a token that expired an hour ago.
func ExpiredSessionToken(secret string, userID int64, username string) string {
	c := crypto.Claims{
		Sub:      strconv.FormatInt(userID, 10),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// RecordHTTPResponse decodes a JSON object body, if any.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// ErrorCode extracts error.code from an httpx error envelope.
func (r RecordResponse) ErrorCode() string {
	errBody, _ := r.Body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}
