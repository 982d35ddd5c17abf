package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"attendance-ingest-backend/internal/model"
)

// gormStore implements Store on a GORM database.
type gormStore struct {
	db    *gorm.DB
	locks *keyLocks
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, locks: newKeyLocks()}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) AppendEvent(ctx context.Context, ev *model.AccessEvent) error {
	if err := s.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("failed to append access event: %w", err)
	}
	return nil
}

func (s *gormStore) ListRecent(ctx context.Context, limit int) ([]model.AccessEvent, error) {
	var events []model.AccessEvent
	err := s.db.WithContext(ctx).
		Order("event_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}
	return events, nil
}

// MergeSummary updates the per-person/date bounds. The keyed lock plus the
// transaction make the lookup-modify-write atomic per grouping key, so
// concurrent pushes for the same person cannot lose an update.
func (s *gormStore) MergeSummary(ctx context.Context, ev model.AccessEvent) (MergeOutcome, error) {
	key := model.GroupKey(ev.PersonID, ev.PersonName)

	lock := s.locks.get(key + "|" + ev.Date)
	lock.Lock()
	defer lock.Unlock()

	outcome := OutcomeUnchanged
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var summary model.DailySummary
		err := tx.Where("person_id = ? AND date = ?", key, ev.Date).First(&summary).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			summary = model.DailySummary{
				PersonID:        key,
				Date:            ev.Date,
				PersonName:      ev.PersonName,
				FirstIn:         ev.EventAt,
				LastOut:         ev.EventAt,
				FirstConfidence: ev.Confidence,
				LastConfidence:  ev.Confidence,
			}
			outcome = OutcomeCreated
			return tx.Create(&summary).Error
		}
		if err != nil {
			return err
		}

		// The name is last-write-wins, and Updates touches updated_at even
		// when neither bound moves.
		updates := map[string]any{"person_name": ev.PersonName}
		if ev.EventAt.Before(summary.FirstIn) {
			updates["first_in"] = ev.EventAt
			updates["first_confidence"] = ev.Confidence
			outcome = OutcomeExtended
		}
		if ev.EventAt.After(summary.LastOut) {
			updates["last_out"] = ev.EventAt
			updates["last_confidence"] = ev.Confidence
			outcome = OutcomeExtended
		}
		return tx.Model(&summary).Updates(updates).Error
	})
	if err != nil {
		return outcome, fmt.Errorf("failed to merge summary for %q on %s: %w", key, ev.Date, err)
	}
	return outcome, nil
}

func (s *gormStore) SummariesByDate(ctx context.Context, date string) ([]model.DailySummary, error) {
	var summaries []model.DailySummary
	err := s.db.WithContext(ctx).
		Where("date = ?", date).
		Order("first_in ASC").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summaries for %s: %w", date, err)
	}
	return summaries, nil
}
