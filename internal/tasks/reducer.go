package tasks

import (
	"slices"
	"time"

	"task-tracker/internal/models"
)

// Form is the draft being typed into the add/edit form.
type Form struct {
	Fields    models.Fields `json:"fields"`
	EditingID string        `json:"editingId,omitempty"`
}

// Editing reports whether the form is bound to an existing task.
func (f Form) Editing() bool { return f.EditingID != "" }

// State is the whole application state. Reduce never mutates a State in
// place; every transition returns a new one.
type State struct {
	Tasks []models.Task
	Form  Form
}

// Env supplies the impure inputs a transition needs.
type Env struct {
	Now             func() time.Time
	NewID           func() string
	TimestampLayout string
}

func (e Env) stamp() string {
	return e.Now().Format(e.TimestampLayout)
}

// Change describes what a transition did. Persist is false for
// transitions that leave the task list untouched.
type Change struct {
	Event   string
	Task    models.Task
	Persist bool
}

// Action is one user intent.
type Action interface {
	reduce(s State, env Env) (State, Change, error)
}

type AddTask struct{ Fields models.Fields }

type UpdateTask struct {
	ID     string
	Fields models.Fields
}

type ToggleCompletion struct{ ID string }

type RemoveTask struct {
	ID        string
	Confirmed bool
}

type StartEditing struct{ ID string }

type ResetForm struct{}

// Reduce applies a to s. On error the returned state is s unchanged.
func Reduce(s State, a Action, env Env) (State, Change, error) {
	next, change, err := a.reduce(s, env)
	if err != nil {
		return s, Change{}, err
	}
	return next, change, nil
}

func indexOf(list []models.Task, id string) int {
	return slices.IndexFunc(list, func(t models.Task) bool { return t.ID == id })
}

func (a AddTask) reduce(s State, env Env) (State, Change, error) {
	f, err := ValidateNew(a.Fields)
	if err != nil {
		return s, Change{}, err
	}
	id := env.NewID()
	if indexOf(s.Tasks, id) >= 0 {
		return s, Change{}, ErrDuplicateID
	}
	t := models.Task{
		ID:           id,
		UserAssigned: f.UserAssigned,
		Country:      f.Country,
		Description:  f.Description,
		Timestamp:    env.stamp(),
	}
	list := make([]models.Task, 0, len(s.Tasks)+1)
	list = append(list, s.Tasks...)
	list = append(list, t)
	return State{Tasks: list}, Change{Event: models.EventCreated, Task: t, Persist: true}, nil
}

func (a UpdateTask) reduce(s State, env Env) (State, Change, error) {
	f, err := ValidateEdit(a.Fields)
	if err != nil {
		return s, Change{}, err
	}
	i := indexOf(s.Tasks, a.ID)
	if i < 0 {
		return s, Change{}, ErrNotFound
	}
	list := slices.Clone(s.Tasks)
	t := list[i]
	t.UserAssigned = f.UserAssigned
	t.Country = f.Country
	t.Description = f.Description
	list[i] = t
	return State{Tasks: list}, Change{Event: models.EventUpdated, Task: t, Persist: true}, nil
}

func (a ToggleCompletion) reduce(s State, env Env) (State, Change, error) {
	i := indexOf(s.Tasks, a.ID)
	if i < 0 {
		return s, Change{}, ErrNotFound
	}
	list := slices.Clone(s.Tasks)
	t := list[i]
	t.IsCompleted = !t.IsCompleted
	if t.IsCompleted {
		t.CompletedAt = env.stamp()
	} else {
		t.CompletedAt = ""
	}
	list[i] = t
	return State{Tasks: list, Form: s.Form}, Change{Event: models.EventToggled, Task: t, Persist: true}, nil
}

func (a RemoveTask) reduce(s State, env Env) (State, Change, error) {
	if !a.Confirmed {
		return s, Change{}, ErrConfirmationRequired
	}
	i := indexOf(s.Tasks, a.ID)
	if i < 0 {
		return s, Change{Event: models.EventDeleted}, nil
	}
	removed := s.Tasks[i]
	list := slices.Delete(slices.Clone(s.Tasks), i, i+1)
	form := s.Form
	if form.EditingID == a.ID {
		form = Form{}
	}
	return State{Tasks: list, Form: form}, Change{Event: models.EventDeleted, Task: removed, Persist: true}, nil
}

func (a StartEditing) reduce(s State, env Env) (State, Change, error) {
	i := indexOf(s.Tasks, a.ID)
	if i < 0 {
		return s, Change{}, ErrNotFound
	}
	t := s.Tasks[i]
	return State{Tasks: s.Tasks, Form: Form{Fields: t.Fields(), EditingID: t.ID}}, Change{Task: t}, nil
}

func (a ResetForm) reduce(s State, env Env) (State, Change, error) {
	return State{Tasks: s.Tasks}, Change{}, nil
}
