package controller

import (
	"context"
	"net/http"

	"task-tracker/internal/countries"
	"task-tracker/internal/middleware"
	"task-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Catalogue lists every known country name.
type Catalogue interface {
	All(ctx context.Context) ([]string, error)
}

// Countries serves the country catalogue and per-client suggestions.
type Countries struct {
	catalogue Catalogue
	sessions  *countries.Sessions
}

func NewCountries(catalogue Catalogue, sessions *countries.Sessions) *Countries {
	return &Countries{catalogue: catalogue, sessions: sessions}
}

// All returns the catalogue. Directory failures yield an empty list.
func (h *Countries) All(c *gin.Context) {
	ctx := c.Request.Context()
	names, err := h.catalogue.All(ctx)
	if err != nil {
		logger.Warn(ctx, "Country catalogue unavailable", "error", err)
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(names), "items": names})
}

// Suggest runs the caller's suggester for ?q=. Responses superseded by a
// newer request from the same client come back with stale=true.
func (h *Countries) Suggest(c *gin.Context) {
	key := c.GetString(middleware.UserKey)
	if key == "" {
		key = "ip:" + c.ClientIP()
	}
	res := h.sessions.Get(key).Fetch(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, res)
}
