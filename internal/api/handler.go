package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"attendance-ingest-backend/internal/notification"
	"attendance-ingest-backend/internal/store"
	"attendance-ingest-backend/internal/timefmt"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	formatter   *timefmt.Formatter
	webpush     *webpush.Options
	notifier    *notification.WorkerPool
	recentLimit int
}

// NewHandler creates a new API handler. notifier may be nil when arrival
// notifications are not configured.
func NewHandler(s store.Store, formatter *timefmt.Formatter, webpushOptions *webpush.Options, notifier *notification.WorkerPool, recentLimit int) *Handler {
	return &Handler{
		store:       s,
		formatter:   formatter,
		webpush:     webpushOptions,
		notifier:    notifier,
		recentLimit: recentLimit,
	}
}
