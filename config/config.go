package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full process configuration, read from the environment.
type Config struct {
	Port                string        `env:"PORT" envDefault:"8080"`
	ReadTimeoutSeconds  int           `env:"READ_TIMEOUT_SECONDS" envDefault:"180"`
	WriteTimeoutSeconds int           `env:"WRITE_TIMEOUT_SECONDS" envDefault:"180"`
	IdleTimeoutSeconds  int           `env:"IDLE_TIMEOUT_SECONDS" envDefault:"180"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	AcceptedOrigins []string `env:"ACCEPTED_ORIGINS" envSeparator:"," envDefault:"*"`
	MaxUploadBytes  int64    `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	StaticDir       string   `env:"STATIC_DIR"`

	DB   DBConfig
	Blob BlobConfig
	S3   S3Config
	Auth AuthConfig

	FeedbackRequireAdmin bool `env:"FEEDBACK_REQUIRE_ADMIN" envDefault:"false"`

	ResendAPIKey    string `env:"RESEND_API_KEY"`
	ResendFromEmail string `env:"RESEND_FROM_EMAIL"`
	NotifyEmail     string `env:"NOTIFY_EMAIL"`
}

type DBConfig struct {
	Type       string `env:"DB_TYPE" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"portfolio.db"`

	// Postgres / Supabase
	Host     string `env:"SUPABASE_DB_HOST"`
	User     string `env:"SUPABASE_DB_USER"`
	Password string `env:"SUPABASE_DB_PASSWORD"`
	Name     string `env:"SUPABASE_DB_NAME"`
	DBPort   string `env:"SUPABASE_DB_PORT" envDefault:"5432"`
	SSLMode  string `env:"SUPABASE_DB_SSLMODE" envDefault:"require"`
}

// DSN builds the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.DBPort, c.SSLMode)
}

type BlobConfig struct {
	Backend   string `env:"BLOB_BACKEND" envDefault:"disk"`
	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`
	// BaseURL prefixes disk-stored names when resolving them.
	BaseURL string `env:"UPLOAD_BASE_URL" envDefault:"/uploads"`
}

type S3Config struct {
	Bucket        string        `env:"S3_BUCKET" envDefault:"portfolio"`
	Region        string        `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint      string        `env:"S3_ENDPOINT"`
	AccessKey     string        `env:"S3_ACCESS_KEY"`
	SecretKey     string        `env:"S3_SECRET_KEY"`
	UsePathStyle  bool          `env:"S3_USE_PATH_STYLE" envDefault:"true"`
	PresignExpire time.Duration `env:"S3_PRESIGN_EXPIRE" envDefault:"24h"`
	CreateBucket  bool          `env:"S3_CREATE_BUCKET" envDefault:"true"`
}

type AuthConfig struct {
	Username     string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	Password     string        `env:"ADMIN_PASSWORD"`
	PasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	SSMParam     string        `env:"ADMIN_PASSWORD_SSM_PARAM"`
	SSMCacheTTL  time.Duration `env:"ADMIN_SSM_CACHE_TTL" envDefault:"5m"`
	TokenSecret  string        `env:"ADMIN_TOKEN_SECRET"`
	TokenTTL     time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load(envFiles ...string) (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)
	return Parse()
}

// Parse reads Config from the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.DB.Type = strings.ToLower(strings.TrimSpace(c.DB.Type))
	switch c.DB.Type {
	case "sqlite", "postgres", "supa":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DB.Type)
	}

	c.Blob.Backend = strings.ToLower(strings.TrimSpace(c.Blob.Backend))
	switch c.Blob.Backend {
	case "disk", "s3", "inline":
	default:
		return fmt.Errorf("unsupported BLOB_BACKEND %q", c.Blob.Backend)
	}
	if c.Blob.Backend == "s3" && c.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when BLOB_BACKEND=s3")
	}

	if c.Auth.Password == "" && c.Auth.PasswordHash == "" && c.Auth.SSMParam == "" {
		return fmt.Errorf("one of ADMIN_PASSWORD, ADMIN_PASSWORD_HASH or ADMIN_PASSWORD_SSM_PARAM is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// NotificationsEnabled reports whether new feedback should be emailed.
func (c Config) NotificationsEnabled() bool {
	return c.ResendAPIKey != "" && c.ResendFromEmail != "" && c.NotifyEmail != ""
}
