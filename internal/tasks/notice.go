package tasks

import (
	"errors"

	"task-tracker/internal/models"
)

// Notice is the short title/message pair shown to the user after an action.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ConfirmDelete is the prompt shown before a deletion is carried out.
var ConfirmDelete = Notice{Title: "Delete Task", Message: "Are you sure you want to delete this task?"}

// SuccessNotice returns the notice for a committed event.
func SuccessNotice(event string) Notice {
	switch event {
	case models.EventCreated:
		return Notice{Title: "Success", Message: "Task added successfully"}
	case models.EventUpdated:
		return Notice{Title: "Success", Message: "Task updated successfully"}
	case models.EventDeleted:
		return Notice{Title: "Success", Message: "Task deleted successfully"}
	default:
		return Notice{Title: "Success", Message: "Task status updated"}
	}
}

// NoticeFor maps an error returned by the store to a user-facing notice.
func NoticeFor(err error) Notice {
	var perr *PersistError
	switch {
	case errors.Is(err, ErrMissingFields):
		return Notice{Title: "Missing Information", Message: "Please fill in all fields"}
	case errors.Is(err, ErrDescriptionTooLong):
		return Notice{Title: "Description too long", Message: "Maximum 120 characters allowed."}
	case errors.Is(err, ErrNotFound):
		return Notice{Title: "Not Found", Message: "Task no longer exists"}
	case errors.Is(err, ErrConfirmationRequired):
		return ConfirmDelete
	case errors.As(err, &perr):
		switch perr.Event {
		case models.EventCreated:
			return Notice{Title: "Error", Message: "Failed to save task"}
		case models.EventUpdated:
			return Notice{Title: "Error", Message: "Failed to update task"}
		case models.EventToggled:
			return Notice{Title: "Error", Message: "Failed to update task status"}
		case models.EventDeleted:
			return Notice{Title: "Error", Message: "Failed to delete task"}
		}
	}
	return Notice{Title: "Error", Message: "Something went wrong"}
}
