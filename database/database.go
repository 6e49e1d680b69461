package database

import (
	"context"
	"fmt"
	stdlog "log"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/portfolio-site/backend/config"
)

type Database struct {
	db           *gorm.DB
	projectRepo  *ProjectRepo
	feedbackRepo *FeedbackRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		projectRepo:  NewProjectRepo(db),
		feedbackRepo: NewFeedbackRepo(db),
	}
}

// Open connects to the configured backend: a local sqlite file by default, or
// Postgres/Supabase.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite", "":
		// writers wait on the file lock instead of failing with SQLITE_BUSY
		dialector = sqlite.Open(cfg.SQLitePath + "?_pragma=busy_timeout(5000)")
	case "postgres", "supa":
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DSN(),
			PreferSimpleProtocol: true,
		})
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: false,
		Logger:      newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}
	return db, nil
}

// newGormLogger routes gorm's output through the global zerolog logger.
func newGormLogger() logger.Interface {
	return logger.New(
		stdlog.New(log.Logger, "", 0),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) FeedbackRepo() *FeedbackRepo {
	return d.feedbackRepo
}

// EnsureSchema creates every table that does not exist yet.
func (d Database) EnsureSchema(ctx context.Context) error {
	if err := d.projectRepo.EnsureSchema(ctx); err != nil {
		return err
	}
	return d.feedbackRepo.EnsureSchema(ctx)
}

func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
