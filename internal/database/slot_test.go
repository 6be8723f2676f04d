package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestSlotLoadMissingRow(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT value FROM kv_slots WHERE key = \$1`).
		WithArgs("tasks").
		WillReturnError(sql.ErrNoRows)

	b, err := NewSlot(db, "tasks").Load(context.Background())
	if err != nil || b != nil {
		t.Fatalf("load = %q, %v", b, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSlotLoadRow(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT value FROM kv_slots`).
		WithArgs("tasks").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[{"id":"1"}]`)))

	b, err := NewSlot(db, "tasks").Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(b) != `[{"id":"1"}]` {
		t.Fatalf("load = %s", b)
	}
}

func TestSlotSaveUpserts(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO kv_slots .* ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("tasks", `[]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewSlot(db, "tasks").Save(context.Background(), []byte(`[]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSlotSaveError(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO kv_slots`).WillReturnError(boom)

	err := NewSlot(db, "tasks").Save(context.Background(), []byte(`[]`))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv_slots`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS task_activity`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
