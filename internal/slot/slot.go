// Package slot holds the local backends for the single key-value
// location the task list is persisted to. Network backends live next to
// their clients in internal/cache (Redis) and internal/database (Postgres).
package slot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Memory keeps the slot in process. The zero value is an empty slot.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Save(ctx context.Context, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), b...)
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

// File stores the slot as one JSON file. Writes go to a temp file in the
// same directory and are renamed over the target, so a reader never sees
// a half-written list.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

func (f *File) Load(ctx context.Context) ([]byte, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot file: %w", err)
	}
	return b, nil
}

func (f *File) Save(ctx context.Context, b []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp slot file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write slot file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync slot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace slot file: %w", err)
	}
	return nil
}

// Ping reports whether the slot directory is usable.
func (f *File) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(f.path))
	return err
}
