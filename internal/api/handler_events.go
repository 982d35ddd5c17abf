package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendance-ingest-backend/internal/model"
)

// GetEvents handles GET /api/events: the most recent events, newest first.
// An optional ?limit= is clamped to the configured cap.
func (h *Handler) GetEvents(c *gin.Context) {
	limit := h.recentLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	events, err := h.store.ListRecent(c.Request.Context(), limit)
	if err != nil {
		log.Printf("Error listing recent events: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}
	if events == nil {
		events = []model.AccessEvent{}
	}
	c.JSON(http.StatusOK, events)
}
