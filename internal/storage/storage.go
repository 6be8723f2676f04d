// Package storage picks the slot backend named in STORAGE_BACKEND.
package storage

import (
	"context"
	"errors"
	"fmt"

	"task-tracker/internal/cache"
	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/slot"
	"task-tracker/internal/tasks"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend is a task slot that can report its health.
type Backend interface {
	tasks.Slot
	Ping(ctx context.Context) error
}

// Open returns the configured backend, connecting and migrating as needed.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		rdb := cache.Client(ctx)
		if rdb == nil {
			return nil, errors.New("redis not available")
		}
		return cache.NewSlot(rdb, cfg.TasksKey), nil
	case config.BackendPostgres:
		if err := database.MigrateOrCreateSchema(ctx); err != nil {
			return nil, err
		}
		return database.NewSlot(database.DB(ctx), cfg.TasksKey), nil
	case config.BackendFile:
		return slot.NewFile(cfg.TasksFile), nil
	case config.BackendMemory:
		return slot.NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StorageBackend)
	}
}
