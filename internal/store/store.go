package store

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"attendance-ingest-backend/internal/model"
)

// MergeOutcome describes what a summary merge did.
type MergeOutcome string

const (
	// OutcomeCreated means the event opened a new person/date summary row.
	OutcomeCreated MergeOutcome = "created"
	// OutcomeExtended means the event moved firstIn or lastOut outward.
	OutcomeExtended MergeOutcome = "extended"
	// OutcomeUnchanged means the event fell inside the existing bounds; only
	// the person name and the last-modified marker were refreshed.
	OutcomeUnchanged MergeOutcome = "unchanged"
)

// Store is the persistence surface for events and daily summaries. The GORM
// implementation is durable; the in-memory one is a best-effort debug buffer
// used when no database is configured.
type Store interface {
	// AppendEvent records a raw access event. Events are append-only.
	AppendEvent(ctx context.Context, ev *model.AccessEvent) error
	// ListRecent returns up to limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.AccessEvent, error)
	// MergeSummary folds an event into its person/date summary. Idempotent
	// and order-independent: any arrival order of a day's events produces
	// the same firstIn/lastOut bounds.
	MergeSummary(ctx context.Context, ev model.AccessEvent) (MergeOutcome, error)
	// SummariesByDate returns all summaries for a "YYYY-MM-DD" date key.
	SummariesByDate(ctx context.Context, date string) ([]model.DailySummary, error)
	// DB exposes the underlying GORM handle, nil for the in-memory store.
	DB() *gorm.DB
}

// keyLocks hands out one mutex per grouping key so concurrent merges for the
// same person/date serialize their read-modify-write. Locks are never
// reclaimed; the key space is bounded by persons times days.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}
