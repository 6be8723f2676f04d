package controller

import (
	"errors"
	"net/http"
	"strconv"

	"task-tracker/internal/models"
	"task-tracker/internal/tasks"
	"task-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Tasks serves the task store over HTTP.
type Tasks struct {
	store *tasks.Store
}

func NewTasks(store *tasks.Store) *Tasks {
	return &Tasks{store: store}
}

type fieldsBody struct {
	UserAssigned string `json:"userAssigned"`
	Country      string `json:"country"`
	Description  string `json:"description"`
}

func (b fieldsBody) fields() models.Fields {
	return models.Fields{UserAssigned: b.UserAssigned, Country: b.Country, Description: b.Description}
}

// List returns every task in insertion order.
func (h *Tasks) List(c *gin.Context) {
	list := h.store.List()
	c.JSON(http.StatusOK, gin.H{"count": len(list), "items": list})
}

// Get returns one task.
func (h *Tasks) Get(c *gin.Context) {
	t, err := h.store.Get(c.Param("id"))
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Create (auth): validates and adds a task, 201 on success.
func (h *Tasks) Create(c *gin.Context) {
	var body fieldsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}
	t, err := h.store.Add(c.Request.Context(), body.fields())
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": t, "notice": tasks.SuccessNotice(models.EventCreated)})
}

// Update (auth): replaces the editable fields of a task.
func (h *Tasks) Update(c *gin.Context) {
	var body fieldsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}
	t, err := h.store.Update(c.Request.Context(), c.Param("id"), body.fields())
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t, "notice": tasks.SuccessNotice(models.EventUpdated)})
}

// Toggle (auth): flips completion.
func (h *Tasks) Toggle(c *gin.Context) {
	t, err := h.store.ToggleCompletion(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t, "notice": tasks.SuccessNotice(models.EventToggled)})
}

// Delete (auth): removes a task once ?confirm=true is given. Without it
// the response carries the confirmation prompt.
func (h *Tasks) Delete(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	removed, err := h.store.Remove(c.Request.Context(), c.Param("id"), confirmed)
	if err != nil {
		writeTaskError(c, err)
		return
	}
	resp := gin.H{"id": c.Param("id"), "removed": removed}
	if removed {
		resp["notice"] = tasks.SuccessNotice(models.EventDeleted)
	}
	c.JSON(http.StatusOK, resp)
}

func writeTaskError(c *gin.Context, err error) {
	n := tasks.NoticeFor(err)
	status := http.StatusInternalServerError
	switch {
	case tasks.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, tasks.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tasks.ErrConfirmationRequired):
		status = http.StatusPreconditionRequired
	case errors.Is(err, tasks.ErrPersist):
		status = http.StatusServiceUnavailable
	default:
		logger.Error(c.Request.Context(), "Task request failed", "error", err)
	}
	c.JSON(status, gin.H{"error": n.Title, "message": n.Message})
}
