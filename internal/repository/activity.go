package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"task-tracker/internal/models"
	"task-tracker/pkg/logger"
)

// Activity is the append-only log of task events.
type Activity struct {
	db *sql.DB
}

func NewActivity(db *sql.DB) *Activity {
	return &Activity{db: db}
}

// Record inserts one event.
func (a *Activity) Record(ctx context.Context, ev models.TaskEvent) error {
	var payload any
	if ev.Task != nil {
		b, err := json.Marshal(ev.Task)
		if err != nil {
			return err
		}
		payload = string(b)
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO task_activity (type, task_id, payload, occurred_at) VALUES ($1, $2, $3, $4)`,
		ev.Type, ev.TaskID, payload, ev.At)
	if err != nil {
		logger.Error(ctx, "Repository Record activity failed", "error", err, "id", ev.TaskID)
		return err
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (a *Activity) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, type, task_id, COALESCE(payload::text, ''), occurred_at, recorded_at
		 FROM task_activity ORDER BY occurred_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		logger.Error(ctx, "Repository Recent activity failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	out := []models.Activity{}
	for rows.Next() {
		var act models.Activity
		if err := rows.Scan(&act.ID, &act.Type, &act.TaskID, &act.Payload, &act.OccurredAt, &act.RecordedAt); err != nil {
			logger.Error(ctx, "Repository scan activity failed", "error", err)
			return nil, err
		}
		out = append(out, act)
	}
	return out, rows.Err()
}
