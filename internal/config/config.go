package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingSessionSecret is returned when SESSION_SECRET is unset.
var ErrMissingSessionSecret = errors.New("missing required environment variable: SESSION_SECRET")

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	DB      DBConfig      `mapstructure:"db"`
	Session SessionConfig `mapstructure:"session"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Blob    BlobConfig    `mapstructure:"blob"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

type AppConfig struct {
	Addr           string `mapstructure:"addr"`
	LogLevel       string `mapstructure:"log_level"`
	EnableHSTS     bool   `mapstructure:"enable_hsts"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

type DBConfig struct {
	DSN         string        `mapstructure:"dsn"`
	Timeout     time.Duration `mapstructure:"timeout"`
	AutoMigrate bool          `mapstructure:"auto_migrate"`
}

type SessionConfig struct {
	Secret       string        `mapstructure:"secret"`
	TTL          time.Duration `mapstructure:"ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

type UploadConfig struct {
	Dir         string   `mapstructure:"dir"`
	MaxBytes    int64    `mapstructure:"max_bytes"`
	AllowedExts []string `mapstructure:"allowed_exts"`
}

type BlobConfig struct {
	Backend string      `mapstructure:"backend"`
	MinIO   MinIOConfig `mapstructure:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type CatalogConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RPS        float64       `mapstructure:"rps"`
	MaxRetries int           `mapstructure:"max_retries"`
}

var bindings = map[string]string{
	"app.addr":              "APP_ADDR",
	"app.log_level":         "LOG_LEVEL",
	"app.enable_hsts":       "ENABLE_HSTS",
	"app.metrics_enabled":   "METRICS_ENABLED",
	"db.dsn":                "DB_DSN",
	"db.timeout":            "DB_TIMEOUT",
	"db.auto_migrate":       "DB_AUTO_MIGRATE",
	"session.secret":        "SESSION_SECRET",
	"session.ttl":           "SESSION_TTL",
	"session.cookie_name":   "SESSION_COOKIE",
	"session.cookie_secure": "COOKIE_SECURE",
	"upload.dir":            "UPLOAD_DIR",
	"upload.max_bytes":      "UPLOAD_MAX_BYTES",
	"upload.allowed_exts":   "UPLOAD_ALLOWED_EXT",
	"blob.backend":          "BLOB_BACKEND",
	"blob.minio.endpoint":   "MINIO_ENDPOINT",
	"blob.minio.access_key": "MINIO_ACCESS_KEY",
	"blob.minio.secret_key": "MINIO_SECRET_KEY",
	"blob.minio.bucket":     "MINIO_BUCKET",
	"blob.minio.use_ssl":    "MINIO_USE_SSL",
	"catalog.base_url":      "CATALOG_BASE_URL",
	"catalog.api_key":       "CATALOG_API_KEY",
	"catalog.timeout":       "CATALOG_TIMEOUT",
	"catalog.rps":           "CATALOG_RPS",
	"catalog.max_retries":   "CATALOG_MAX_RETRIES",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.addr", ":8080")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.enable_hsts", false)
	v.SetDefault("app.metrics_enabled", true)

	v.SetDefault("db.dsn", "sqlite://bookshelf.db")
	v.SetDefault("db.timeout", 5*time.Second)
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("session.cookie_name", "bookshelf_session")
	v.SetDefault("session.cookie_secure", false)

	v.SetDefault("upload.dir", "static/profile_pics")
	v.SetDefault("upload.max_bytes", 2*1024*1024)
	v.SetDefault("upload.allowed_exts", []string{"png", "jpg", "jpeg", "gif"})

	v.SetDefault("blob.backend", "fs")
	v.SetDefault("blob.minio.endpoint", "")
	v.SetDefault("blob.minio.access_key", "")
	v.SetDefault("blob.minio.secret_key", "")
	v.SetDefault("blob.minio.bucket", "avatars")
	v.SetDefault("blob.minio.use_ssl", false)

	v.SetDefault("catalog.base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.timeout", 5*time.Second)
	v.SetDefault("catalog.rps", 5.0)
	v.SetDefault("catalog.max_retries", 1)
}

// Load reads .env files (without overriding the real environment) and
// decodes the environment into a Config. The result is meant to be built
// once at startup and passed by value afterwards.
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	setDefaults(v)
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Session.Secret == "" {
		return ErrMissingSessionSecret
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.Upload.MaxBytes)
	}
	switch c.Blob.Backend {
	case "fs":
	case "minio":
		if c.Blob.MinIO.Endpoint == "" {
			return errors.New("MINIO_ENDPOINT is required when BLOB_BACKEND=minio")
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", c.Blob.Backend)
	}
	return nil
}
