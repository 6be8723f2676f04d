package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Slot keeps the task list as one JSONB row in kv_slots.
type Slot struct {
	db  *sql.DB
	key string
}

func NewSlot(db *sql.DB, key string) *Slot {
	return &Slot{db: db, key: key}
}

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	var b []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE key = $1`, s.key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", s.key, err)
	}
	return b, nil
}

func (s *Slot) Save(ctx context.Context, b []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_slots (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		s.key, string(b))
	if err != nil {
		return fmt.Errorf("save slot %s: %w", s.key, err)
	}
	return nil
}

func (s *Slot) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
