package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"task-tracker/internal/models"
	"task-tracker/internal/slot"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	}
}

type flakySlot struct {
	slot.Memory
	fail  bool
	saves int
}

func (f *flakySlot) Save(ctx context.Context, b []byte) error {
	f.saves++
	if f.fail {
		return errors.New("disk full")
	}
	return f.Memory.Save(ctx, b)
}

type recordingSink struct {
	events []models.TaskEvent
}

func (r *recordingSink) PublishTaskEvent(ctx context.Context, ev models.TaskEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func newTestStore(t *testing.T) (*Store, *flakySlot, *fixedClock) {
	t.Helper()
	clock := &fixedClock{now: time.Date(2026, 3, 4, 15, 4, 5, 0, time.UTC)}
	sl := &flakySlot{}
	st := NewStore(sl, WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
	return st, sl, clock
}

func persisted(t *testing.T, sl *flakySlot) []models.Task {
	t.Helper()
	b, err := sl.Load(context.Background())
	if err != nil {
		t.Fatalf("slot load: %v", err)
	}
	var list []models.Task
	if err := json.Unmarshal(b, &list); err != nil {
		t.Fatalf("slot unmarshal: %v; body=%s", err, b)
	}
	return list
}

var ana = models.Fields{UserAssigned: "Ana", Country: "France", Description: "Buy tickets"}

func TestAddToggleEditScenario(t *testing.T) {
	ctx := context.Background()
	st, sl, clock := newTestStore(t)

	created, err := st.Add(ctx, ana)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := st.List(); len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if created.IsCompleted || created.CompletedAt != "" {
		t.Fatalf("new task should be open: %+v", created)
	}
	if created.Timestamp != "3/4/2026, 3:04:05 PM" {
		t.Fatalf("timestamp = %q", created.Timestamp)
	}

	clock.advance(time.Hour)
	toggled, err := st.ToggleCompletion(ctx, created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.IsCompleted || toggled.CompletedAt != "3/4/2026, 4:04:05 PM" {
		t.Fatalf("toggled = %+v", toggled)
	}

	edited, err := st.Update(ctx, created.ID, models.Fields{UserAssigned: "Ana", Country: "Spain", Description: "Buy tickets"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if edited.Country != "Spain" || !edited.IsCompleted || edited.CompletedAt != toggled.CompletedAt {
		t.Fatalf("edited = %+v", edited)
	}
	if edited.Timestamp != created.Timestamp || edited.ID != created.ID {
		t.Fatalf("edit changed identity: %+v", edited)
	}

	list := persisted(t, sl)
	if len(list) != 1 || list[0] != edited {
		t.Fatalf("persisted = %+v", list)
	}
}

func TestAddRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		fields models.Fields
		want   error
	}{
		{"empty assignee", models.Fields{Country: "France", Description: "x"}, ErrMissingFields},
		{"blank country", models.Fields{UserAssigned: "Ana", Country: "   ", Description: "x"}, ErrMissingFields},
		{"empty description", models.Fields{UserAssigned: "Ana", Country: "France"}, ErrMissingFields},
		{"too long", models.Fields{UserAssigned: "Ana", Country: "France", Description: strings.Repeat("a", 121)}, ErrDescriptionTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st, sl, _ := newTestStore(t)
			_, err := st.Add(ctx, tt.fields)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !IsValidation(err) {
				t.Fatalf("IsValidation(%v) = false", err)
			}
			if len(st.List()) != 0 || sl.saves != 0 {
				t.Fatalf("collection changed: %d tasks, %d saves", len(st.List()), sl.saves)
			}
		})
	}
}

func TestDescriptionLimitCountsCharacters(t *testing.T) {
	st, _, _ := newTestStore(t)
	desc := strings.Repeat("é", MaxDescriptionLen)
	if _, err := st.Add(context.Background(), models.Fields{UserAssigned: "Ana", Country: "France", Description: desc}); err != nil {
		t.Fatalf("120 characters should be accepted: %v", err)
	}
}

func TestUpdateSkipsLengthCheck(t *testing.T) {
	ctx := context.Background()
	st, _, _ := newTestStore(t)
	created, err := st.Add(ctx, ana)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	long := strings.Repeat("b", 200)
	updated, err := st.Update(ctx, created.ID, models.Fields{UserAssigned: "Ana", Country: "France", Description: long})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != long {
		t.Fatal("description not replaced")
	}

	if _, err := st.Update(ctx, created.ID, models.Fields{UserAssigned: "Ana"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
	if _, err := st.Update(ctx, "missing", ana); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	ctx := context.Background()
	st, _, _ := newTestStore(t)
	created, _ := st.Add(ctx, ana)

	if _, err := st.ToggleCompletion(ctx, created.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	back, err := st.ToggleCompletion(ctx, created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if back.IsCompleted || back.CompletedAt != "" {
		t.Fatalf("second toggle = %+v", back)
	}
	if _, err := st.ToggleCompletion(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	st, sl, _ := newTestStore(t)
	a, _ := st.Add(ctx, ana)
	b, _ := st.Add(ctx, models.Fields{UserAssigned: "Bo", Country: "Chile", Description: "Call"})

	if _, err := st.Remove(ctx, a.ID, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("err = %v, want ErrConfirmationRequired", err)
	}
	if len(st.List()) != 2 {
		t.Fatal("unconfirmed remove changed the list")
	}

	saves := sl.saves
	removed, err := st.Remove(ctx, "missing", true)
	if err != nil || removed {
		t.Fatalf("remove missing = %v, %v", removed, err)
	}
	if sl.saves != saves {
		t.Fatal("no-op remove wrote the slot")
	}

	removed, err = st.Remove(ctx, a.ID, true)
	if err != nil || !removed {
		t.Fatalf("remove = %v, %v", removed, err)
	}
	list := st.List()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("list = %+v", list)
	}
	if p := persisted(t, sl); len(p) != 1 || p[0].ID != b.ID {
		t.Fatalf("persisted = %+v", p)
	}
}

func TestPersistFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	st, sl, _ := newTestStore(t)
	created, _ := st.Add(ctx, ana)

	sl.fail = true
	_, err := st.ToggleCompletion(ctx, created.ID)
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("err = %v, want ErrPersist", err)
	}
	if n := NoticeFor(err); n.Message != "Failed to update task status" {
		t.Fatalf("notice = %+v", n)
	}
	got, _ := st.Get(created.ID)
	if got.IsCompleted {
		t.Fatal("failed toggle was committed")
	}
	if _, err := st.Add(ctx, ana); !errors.Is(err, ErrPersist) {
		t.Fatalf("err = %v, want ErrPersist", err)
	}
	if len(st.List()) != 1 {
		t.Fatal("failed add was committed")
	}

	sl.fail = false
	if _, err := st.ToggleCompletion(ctx, created.ID); err != nil {
		t.Fatalf("toggle after recovery: %v", err)
	}
}

func TestFormLifecycle(t *testing.T) {
	ctx := context.Background()
	st, _, _ := newTestStore(t)
	created, _ := st.Add(ctx, ana)

	form, err := st.StartEditing(ctx, created.ID)
	if err != nil {
		t.Fatalf("start editing: %v", err)
	}
	if !form.Editing() || form.Fields != ana {
		t.Fatalf("form = %+v", form)
	}

	if _, err := st.Update(ctx, created.ID, ana); err != nil {
		t.Fatalf("update: %v", err)
	}
	if st.Form().Editing() {
		t.Fatal("update should clear the form")
	}

	if _, err := st.StartEditing(ctx, created.ID); err != nil {
		t.Fatalf("start editing: %v", err)
	}
	st.ResetForm(ctx)
	if st.Form() != (Form{}) {
		t.Fatalf("form after reset = %+v", st.Form())
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	mem := slot.NewMemory()
	_ = mem.Save(ctx, []byte(`[{"id":"a","userAssigned":"Ana","country":"France","description":"d","timestamp":"t","isCompleted":true,"completedAt":"c"}]`))
	st := NewStore(mem)
	if err := st.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := st.Get("a")
	if err != nil || !got.IsCompleted || got.CompletedAt != "c" {
		t.Fatalf("get = %+v, %v", got, err)
	}

	corrupt := slot.NewMemory()
	_ = corrupt.Save(ctx, []byte(`{not json`))
	st = NewStore(corrupt)
	if err := st.Load(ctx); err != nil {
		t.Fatalf("corrupt slot should load empty: %v", err)
	}
	if len(st.List()) != 0 {
		t.Fatal("expected empty list")
	}
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	st := NewStore(slot.NewMemory(), WithEventSink(sink), WithIDGenerator(sequentialIDs()))

	created, _ := st.Add(ctx, ana)
	_, _ = st.Add(ctx, models.Fields{}) // rejected, no event
	_, _ = st.ToggleCompletion(ctx, created.ID)
	_, _ = st.Remove(ctx, created.ID, true)

	var types []string
	for _, ev := range sink.events {
		types = append(types, ev.Type)
	}
	if got := strings.Join(types, ","); got != "created,toggled,deleted" {
		t.Fatalf("events = %s", got)
	}
	if sink.events[2].Task != nil || sink.events[2].TaskID != created.ID {
		t.Fatalf("delete event = %+v", sink.events[2])
	}
}

func TestDefaultIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	st := NewStore(slot.NewMemory())
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		task, err := st.Add(ctx, ana)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %s", task.ID)
		}
		seen[task.ID] = true
	}
}
