package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	_ "github.com/lib/pq"
	"task-tracker/internal/config"
	"task-tracker/pkg/logger"
)

var (
	pool *sql.DB
	once sync.Once
)

// DB returns the global database connection pool (initialized on first use).
// It returns nil when DATABASE_URL is unset or cannot be opened.
func DB(ctx context.Context) *sql.DB {
	once.Do(func() {
		cfg := config.Get()
		if cfg.DatabaseURL == "" {
			logger.Debug(ctx, "DATABASE_URL is not set")
			return
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error(ctx, "Failed to open database", "error", err)
			return
		}
		db.SetMaxOpenConns(cfg.DBPoolSize)
		db.SetMaxIdleConns(cfg.DBPoolSize / 2)
		pool = db
		logger.Info(ctx, "Database pool initialized", "max_open", cfg.DBPoolSize)
	})
	return pool
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv_slots (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS task_activity (
		id          BIGSERIAL PRIMARY KEY,
		type        TEXT NOT NULL,
		task_id     TEXT NOT NULL,
		payload     JSONB,
		occurred_at TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS task_activity_occurred_at_idx ON task_activity (occurred_at DESC)`,
}

// Migrate creates the tables this service uses. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// MigrateOrCreateSchema runs Migrate against the global pool.
func MigrateOrCreateSchema(ctx context.Context) error {
	db := DB(ctx)
	if db == nil {
		return errors.New("database not configured")
	}
	if err := Migrate(ctx, db); err != nil {
		logger.Error(ctx, "Schema migration failed", "error", err)
		return err
	}
	logger.Info(ctx, "Database schema ready")
	return nil
}
