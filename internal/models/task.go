package models

import "time"

// Task is one tracked to-do item. JSON names match the persisted slot
// format, which predates this service.
type Task struct {
	ID           string `json:"id"`
	UserAssigned string `json:"userAssigned"`
	Country      string `json:"country"`
	Description  string `json:"description"`
	Timestamp    string `json:"timestamp"`
	IsCompleted  bool   `json:"isCompleted"`
	CompletedAt  string `json:"completedAt,omitempty"`
}

// Fields is the user-editable part of a task.
type Fields struct {
	UserAssigned string `json:"userAssigned"`
	Country      string `json:"country"`
	Description  string `json:"description"`
}

// Fields returns the editable part of t.
func (t Task) Fields() Fields {
	return Fields{UserAssigned: t.UserAssigned, Country: t.Country, Description: t.Description}
}

// Event types published after a committed mutation.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventToggled = "toggled"
	EventDeleted = "deleted"
)

// TaskEvent is the message payload for Kafka.
type TaskEvent struct {
	Type   string    `json:"type"`
	TaskID string    `json:"task_id"`
	Task   *Task     `json:"task,omitempty"` // absent for deletions
	At     time.Time `json:"at"`
}

// Activity is a recorded TaskEvent as read back from the activity log.
type Activity struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	TaskID     string    `json:"task_id"`
	Payload    string    `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	RecordedAt time.Time `json:"recorded_at"`
}
