package tasks

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"task-tracker/internal/models"
	"task-tracker/pkg/logger"
)

// DefaultTimestampLayout renders like an en-US locale date-time string.
const DefaultTimestampLayout = "1/2/2006, 3:04:05 PM"

// Slot is the single key-value location the whole list is written to.
// Load returns (nil, nil) when nothing has been saved yet.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, b []byte) error
}

// EventSink receives an event after each committed mutation.
type EventSink interface {
	PublishTaskEvent(ctx context.Context, ev models.TaskEvent) error
}

// Store owns the committed application state. Mutations are serialized,
// and a mutation becomes visible only after its snapshot was written.
type Store struct {
	mu    sync.Mutex
	state State
	slot  Slot
	sink  EventSink
	env   Env
}

type Option func(*Store)

func WithEventSink(sink EventSink) Option {
	return func(s *Store) { s.sink = sink }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.env.Now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.env.NewID = gen }
}

func WithTimestampLayout(layout string) Option {
	return func(s *Store) {
		if layout != "" {
			s.env.TimestampLayout = layout
		}
	}
}

func NewStore(slot Slot, opts ...Option) *Store {
	s := &Store{
		slot: slot,
		env: Env{
			Now:             time.Now,
			NewID:           newID,
			TimestampLayout: DefaultTimestampLayout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newID returns a time-ordered UUIDv7, falling back to a random UUID.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces the state with the slot's contents. A corrupt slot is
// logged and treated as empty; only a failed read is returned.
func (s *Store) Load(ctx context.Context) error {
	b, err := s.slot.Load(ctx)
	if err != nil {
		logger.Error(ctx, "Loading tasks failed", "error", err)
		return err
	}
	var list []models.Task
	if len(b) > 0 {
		if err := json.Unmarshal(b, &list); err != nil {
			logger.Error(ctx, "Stored tasks are not valid JSON; starting empty", "error", err)
			list = nil
		}
	}
	s.mu.Lock()
	s.state = State{Tasks: list}
	s.mu.Unlock()
	logger.Info(ctx, "Tasks loaded", "count", len(list))
	return nil
}

// Dispatch reduces a against the committed state, persists the resulting
// list when it changed and commits it. Nothing is committed if either
// step fails.
func (s *Store) Dispatch(ctx context.Context, a Action) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, change, err := Reduce(s.state, a, s.env)
	if err != nil {
		logger.Debug(ctx, "Task action rejected", "error", err)
		return Change{}, err
	}
	if change.Persist {
		if err := s.save(ctx, next.Tasks); err != nil {
			logger.Error(ctx, "Persisting tasks failed", "error", err, "event", change.Event, "id", change.Task.ID)
			return Change{}, &PersistError{Event: change.Event, Err: err}
		}
	}
	s.state = next

	if change.Persist {
		logger.Info(ctx, "Task "+change.Event, "id", change.Task.ID, "count", len(next.Tasks))
		s.publish(ctx, change)
	}
	return change, nil
}

func (s *Store) save(ctx context.Context, list []models.Task) error {
	if list == nil {
		list = []models.Task{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.slot.Save(ctx, b)
}

func (s *Store) publish(ctx context.Context, change Change) {
	if s.sink == nil {
		return
	}
	ev := models.TaskEvent{Type: change.Event, TaskID: change.Task.ID, At: s.env.Now().UTC()}
	if change.Event != models.EventDeleted {
		t := change.Task
		ev.Task = &t
	}
	if err := s.sink.PublishTaskEvent(ctx, ev); err != nil {
		logger.Warn(ctx, "Publishing task event failed", "error", err, "event", change.Event, "id", change.Task.ID)
	}
}

// Add creates a task from f and clears the form.
func (s *Store) Add(ctx context.Context, f models.Fields) (models.Task, error) {
	change, err := s.Dispatch(ctx, AddTask{Fields: f})
	return change.Task, err
}

// Update replaces the editable fields of task id, keeping its completion
// state and creation timestamp, and clears the form.
func (s *Store) Update(ctx context.Context, id string, f models.Fields) (models.Task, error) {
	change, err := s.Dispatch(ctx, UpdateTask{ID: id, Fields: f})
	return change.Task, err
}

// ToggleCompletion flips task id between open and completed.
func (s *Store) ToggleCompletion(ctx context.Context, id string) (models.Task, error) {
	change, err := s.Dispatch(ctx, ToggleCompletion{ID: id})
	return change.Task, err
}

// Remove deletes task id once confirmed. Removing an unknown id is a
// no-op and reports false.
func (s *Store) Remove(ctx context.Context, id string, confirmed bool) (bool, error) {
	change, err := s.Dispatch(ctx, RemoveTask{ID: id, Confirmed: confirmed})
	if err != nil {
		return false, err
	}
	return change.Persist, nil
}

// StartEditing binds the form to task id.
func (s *Store) StartEditing(ctx context.Context, id string) (Form, error) {
	if _, err := s.Dispatch(ctx, StartEditing{ID: id}); err != nil {
		return Form{}, err
	}
	return s.Form(), nil
}

// ResetForm clears the form.
func (s *Store) ResetForm(ctx context.Context) {
	_, _ = s.Dispatch(ctx, ResetForm{})
}

// Form returns the current form.
func (s *Store) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Form
}

// List returns a copy of the committed tasks in insertion order.
func (s *Store) List() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.state.Tasks)
	if out == nil {
		out = []models.Task{}
	}
	return out
}

// Get returns task id.
func (s *Store) Get(id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.state.Tasks, id); i >= 0 {
		return s.state.Tasks[i], nil
	}
	return models.Task{}, ErrNotFound
}
