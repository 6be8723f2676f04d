package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"task-tracker/internal/models"
	"task-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health returns 200 if the process is alive. Used by load balancers.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if the task slot is reachable. Used by K8s readiness probes.
func Ready(slot Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := slot.Ping(ctx); err != nil {
			logger.Warn(ctx, "Readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "storage unavailable"})
			return
		}
		c.String(http.StatusOK, "OK")
	}
}

// ActivityLog reads recorded task events.
type ActivityLog interface {
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
}

// Activity returns recent task events, newest first (?limit=N, default 50, max 500).
func Activity(log ActivityLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Activity log not configured"})
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit <= 0 {
			limit = 50
		}
		if limit > 500 {
			limit = 500
		}
		items, err := log.Recent(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to read activity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
	}
}
