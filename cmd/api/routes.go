package main

import (
	"context"
	"net/http"
	"time"

	"bookshelf/internal/httpx"
	"bookshelf/internal/platform/metrics"
	"bookshelf/internal/session"
	"bookshelf/internal/web"
)

// formBodyLimit caps every non-multipart request body.
const formBodyLimit = 1 << 20

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	limit := httpx.RequestSizeLimitMiddleware(formBodyLimit)
	post := func(pattern string, h http.HandlerFunc) {
		mux.Handle("POST "+pattern, limit(h))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		web.Text(w, http.StatusOK, "ok")
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			web.Text(w, http.StatusServiceUnavailable, "db not ready")
			return
		}
		web.Text(w, http.StatusOK, "ready")
	})
	if s.cfg.App.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	mux.Handle("GET /static/", web.StaticHandler())

	mux.HandleFunc("GET /{$}", s.books.Index)

	mux.HandleFunc("GET /register", s.users.RegisterPage)
	post("/register", s.users.Register)
	mux.HandleFunc("GET /login", s.auth.LoginPage)
	post("/login", s.auth.Login)
	mux.HandleFunc("GET /logout", s.auth.Logout)

	mux.HandleFunc("GET /my_books", s.books.MyBooks)
	mux.HandleFunc("GET /search_books", s.catalog.Search)
	mux.HandleFunc("GET /search_results", s.books.SearchResults)
	post("/add_book_by_id", s.books.AddByID)
	post("/add_books", s.books.AddBooks)
	post("/add_books_by_ids", s.books.AddByIDs)
	post("/delete_book/{id}", s.books.Delete)

	mux.HandleFunc("GET /profile/{username}", s.profiles.Show)
	mux.HandleFunc("GET /edit_profile", s.profiles.EditForm)
	mux.HandleFunc("POST /edit_profile", s.profiles.Edit)
	mux.HandleFunc("GET /avatars/{key...}", s.profiles.Avatar)

	// MetricsMiddleware reads r.Pattern, which only the mux sets, so it
	// must wrap the mux directly.
	return httpx.Chain(mux,
		httpx.RequestIDMiddleware,
		s.sessions.Middleware(s.logger),
		httpx.AccessLogMiddleware(s.logger, session.UserLabel),
		httpx.RecoveryMiddleware(s.logger),
		httpx.SecurityHeadersMiddleware(s.cfg.App.EnableHSTS),
		httpx.MetricsMiddleware,
	)
}
