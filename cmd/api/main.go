package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/catalog"
	"bookshelf/internal/config"
	"bookshelf/internal/platform/blobstore"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/logging"
	"bookshelf/internal/profile"
	"bookshelf/internal/session"
	"bookshelf/internal/user"
	"bookshelf/internal/web"
)

// editProfileBodyLimit bounds the whole multipart body of /edit_profile.
// Pictures between the upload policy size and this cap are read and ignored.
const editProfileBodyLimit = 8 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.App.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func run(cfg config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	handler := newServer(cfg, logger, st, blobs, renderer).routes()

	httpServer := &http.Server{
		Addr:         cfg.App.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.App.Addr).Info("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// stores holds whichever persistence backend DB_DSN selected.
type stores struct {
	users user.Repository
	books book.Repository
	ping  func(context.Context) error
	close func()
}

func openStores(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*stores, error) {
	driver, target, err := database.ParseDSN(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	switch driver {
	case database.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, target)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := database.MigrateUp(ctx, database.SQLDB(pool), driver); err != nil {
				pool.Close()
				return nil, err
			}
		}
		logger.WithField("dsn", database.RedactDSN(target)).Info("database connection OK")
		return &stores{
			users: user.NewPostgresRepo(pool, cfg.DB.Timeout),
			books: book.NewPostgresRepo(pool, cfg.DB.Timeout),
			ping:  pool.Ping,
			close: pool.Close,
		}, nil

	default:
		conn, err := database.OpenSQLite(target)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := database.MigrateUp(ctx, conn, driver); err != nil {
				conn.Close()
				return nil, err
			}
		}
		logger.WithField("path", target).Info("database connection OK")
		return &stores{
			users: user.NewSQLiteRepo(conn, cfg.DB.Timeout),
			books: book.NewSQLiteRepo(conn, cfg.DB.Timeout),
			ping:  conn.PingContext,
			close: func() { _ = conn.Close() },
		}, nil
	}
}

func openBlobStore(ctx context.Context, cfg config.Config) (blobstore.Store, error) {
	if cfg.Blob.Backend == "minio" {
		m := cfg.Blob.MinIO
		return blobstore.NewMinIO(ctx, blobstore.MinIOConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			UseSSL:    m.UseSSL,
		})
	}
	return blobstore.NewFS(cfg.Upload.Dir)
}

type server struct {
	cfg      config.Config
	logger   *logrus.Logger
	ping     func(context.Context) error
	sessions *session.Manager

	users    *user.HTTPHandler
	auth     *auth.HTTPHandler
	books    *book.HTTPHandler
	catalog  *catalog.HTTPHandler
	profiles *profile.HTTPHandler
}

func newServer(cfg config.Config, logger *logrus.Logger, st *stores, blobs blobstore.Store, renderer *web.Renderer) *server {
	provider := googlebooks.NewClient(googlebooks.Options{
		BaseURL:    cfg.Catalog.BaseURL,
		APIKey:     cfg.Catalog.APIKey,
		Timeout:    cfg.Catalog.Timeout,
		RPS:        cfg.Catalog.RPS,
		MaxRetries: cfg.Catalog.MaxRetries,
	})
	catalogService := catalog.NewService(provider, logger)

	userService := user.NewService(st.users)
	bookService := book.NewService(st.books, catalogService, logger)
	authService := auth.NewService(st.users)
	profileService := profile.NewService(st.users, st.books, blobs, profile.UploadPolicy{
		MaxBytes:    cfg.Upload.MaxBytes,
		AllowedExts: cfg.Upload.AllowedExts,
	}, logger)

	sessions := session.NewManager(session.Options{
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.CookieSecure,
	})

	return &server{
		cfg:      cfg,
		logger:   logger,
		ping:     st.ping,
		sessions: sessions,
		users:    user.NewHTTPHandler(userService, renderer, logger),
		auth:     auth.NewHTTPHandler(authService, sessions, renderer, logger),
		books:    book.NewHTTPHandler(bookService, renderer, logger),
		catalog:  catalog.NewHTTPHandler(catalogService),
		profiles: profile.NewHTTPHandler(profileService, renderer, logger, editProfileBodyLimit),
	}
}
