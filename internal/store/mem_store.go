package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"attendance-ingest-backend/internal/model"
)

// DefaultBufferCapacity bounds the in-memory event buffer.
const DefaultBufferCapacity = 2000

// memStore implements Store without a database. The event buffer keeps only
// the newest entries up to its capacity; it is a debug aid, not durable
// storage, and everything is lost on restart.
type memStore struct {
	mu        sync.Mutex
	capacity  int
	nextID    int64
	events    []model.AccessEvent
	summaries map[string]*model.DailySummary
}

// NewMemStore creates an in-memory store holding at most capacity events.
func NewMemStore(capacity int) Store {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &memStore{
		capacity:  capacity,
		summaries: make(map[string]*model.DailySummary),
	}
}

func (s *memStore) DB() *gorm.DB {
	return nil
}

func (s *memStore) AppendEvent(_ context.Context, ev *model.AccessEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	ev.ID = s.nextID
	ev.CreatedAt = time.Now().UTC()
	s.events = append(s.events, *ev)
	if len(s.events) > s.capacity {
		s.events = s.events[len(s.events)-s.capacity:]
	}
	return nil
}

func (s *memStore) ListRecent(_ context.Context, limit int) ([]model.AccessEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit < 0 {
		limit = 0
	}
	n := len(s.events)
	if limit < n {
		n = limit
	}
	out := make([]model.AccessEvent, 0, n)
	for i := len(s.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

func (s *memStore) MergeSummary(_ context.Context, ev model.AccessEvent) (MergeOutcome, error) {
	key := model.GroupKey(ev.PersonID, ev.PersonName) + "|" + ev.Date

	s.mu.Lock()
	defer s.mu.Unlock()

	summary, ok := s.summaries[key]
	if !ok {
		s.summaries[key] = &model.DailySummary{
			PersonID:        model.GroupKey(ev.PersonID, ev.PersonName),
			Date:            ev.Date,
			PersonName:      ev.PersonName,
			FirstIn:         ev.EventAt,
			LastOut:         ev.EventAt,
			FirstConfidence: ev.Confidence,
			LastConfidence:  ev.Confidence,
			CreatedAt:       time.Now().UTC(),
			UpdatedAt:       time.Now().UTC(),
		}
		return OutcomeCreated, nil
	}

	outcome := OutcomeUnchanged
	summary.PersonName = ev.PersonName
	if ev.EventAt.Before(summary.FirstIn) {
		summary.FirstIn = ev.EventAt
		summary.FirstConfidence = ev.Confidence
		outcome = OutcomeExtended
	}
	if ev.EventAt.After(summary.LastOut) {
		summary.LastOut = ev.EventAt
		summary.LastConfidence = ev.Confidence
		outcome = OutcomeExtended
	}
	summary.UpdatedAt = time.Now().UTC()
	return outcome, nil
}

func (s *memStore) SummariesByDate(_ context.Context, date string) ([]model.DailySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.DailySummary
	for _, summary := range s.summaries {
		if summary.Date == date {
			out = append(out, *summary)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FirstIn.Before(out[j].FirstIn) })
	return out, nil
}
