package api

import (
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

var dateKeyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// validDateKey reports whether date is a well-formed, real calendar date.
// The regex alone would admit values like month 13.
func validDateKey(date string) bool {
	if !dateKeyRe.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// attendanceEntry is one person's first-in/last-out for a day, with
// timestamps rendered as local display strings.
type attendanceEntry struct {
	FirstIn         string  `json:"firstIn"`
	LastOut         string  `json:"lastOut"`
	FirstConfidence float64 `json:"firstConfidence"`
	LastConfidence  float64 `json:"lastConfidence"`
}

// GetAttendance handles GET /api/attendance/:date, returning a mapping from
// person name to that day's bounds. Dates with no events yield an empty
// object.
func (h *Handler) GetAttendance(c *gin.Context) {
	date := c.Param("date")
	if !validDateKey(date) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
		return
	}

	summaries, err := h.store.SummariesByDate(c.Request.Context(), date)
	if err != nil {
		log.Printf("Error fetching attendance for %s: %v", date, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attendance"})
		return
	}

	response := make(map[string]attendanceEntry, len(summaries))
	for _, s := range summaries {
		response[s.PersonName] = attendanceEntry{
			FirstIn:         h.formatter.DisplayTimestamp(s.FirstIn),
			LastOut:         h.formatter.DisplayTimestamp(s.LastOut),
			FirstConfidence: s.FirstConfidence,
			LastConfidence:  s.LastConfidence,
		}
	}
	c.JSON(http.StatusOK, response)
}
