package tasks

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields        = errors.New("assignee, country and description are required")
	ErrDescriptionTooLong   = fmt.Errorf("description exceeds %d characters", MaxDescriptionLen)
	ErrNotFound             = errors.New("task not found")
	ErrConfirmationRequired = errors.New("deletion must be confirmed")
	ErrDuplicateID          = errors.New("task id already in use")
	ErrPersist              = errors.New("persist tasks")
)

// PersistError reports a failed slot write. The in-memory state is left
// as it was before the mutation.
type PersistError struct {
	Event string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist tasks after %s: %v", e.Event, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

func (e *PersistError) Is(target error) bool { return target == ErrPersist }

// IsValidation reports whether err was caused by user input rather than storage.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingFields) || errors.Is(err, ErrDescriptionTooLong)
}
