package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"attendance-ingest-backend/internal/model"
)

var testDBSeq atomic.Int64

// newSQLiteStore opens a fresh in-memory SQLite database per test. The shared
// cache keeps GORM's pooled connections on the same database.
func newSQLiteStore(t *testing.T) Store {
	t.Helper()

	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.AccessEvent{}, &model.DailySummary{}))
	return NewGormStore(db)
}

// Both implementations must satisfy the same merge and read contracts.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("gorm", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemStore(100)) })
}

func testEvent(personID, name, date string, at time.Time, confidence float64) model.AccessEvent {
	return model.AccessEvent{
		EventUID:   uuid.New(),
		PersonName: name,
		PersonID:   personID,
		Confidence: confidence,
		EventAt:    at,
		Date:       date,
		Time:       at.Format("2006-01-02 15:04:05"),
	}
}

func TestMergeSummary_OrderIndependent(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	events := []model.AccessEvent{
		testEvent("E1", "Aisha", "2024-05-10", day.Add(8*time.Hour), 0.90),
		testEvent("E1", "Aisha", "2024-05-10", day.Add(17*time.Hour+45*time.Minute), 0.95),
		testEvent("E1", "Aisha", "2024-05-10", day.Add(12*time.Hour), 0.80),
	}

	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	for _, perm := range permutations {
		perm := perm
		t.Run(fmt.Sprintf("order %v", perm), func(t *testing.T) {
			forEachStore(t, func(t *testing.T, s Store) {
				ctx := context.Background()
				for _, i := range perm {
					_, err := s.MergeSummary(ctx, events[i])
					require.NoError(t, err)
				}

				summaries, err := s.SummariesByDate(ctx, "2024-05-10")
				require.NoError(t, err)
				require.Len(t, summaries, 1)
				assert.Equal(t, events[0].EventAt.Unix(), summaries[0].FirstIn.Unix())
				assert.Equal(t, events[1].EventAt.Unix(), summaries[0].LastOut.Unix())
				assert.Equal(t, 0.90, summaries[0].FirstConfidence)
				assert.Equal(t, 0.95, summaries[0].LastConfidence)
			})
		})
	}
}

func TestMergeSummary_Idempotent(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ev := testEvent("E2", "Omar", "2024-05-10", time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), 0.75)

		outcome, err := s.MergeSummary(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, outcome)

		outcome, err = s.MergeSummary(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, OutcomeUnchanged, outcome)

		summaries, err := s.SummariesByDate(ctx, "2024-05-10")
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, ev.EventAt.Unix(), summaries[0].FirstIn.Unix())
		assert.Equal(t, ev.EventAt.Unix(), summaries[0].LastOut.Unix())
		assert.Equal(t, 0.75, summaries[0].FirstConfidence)
		assert.Equal(t, 0.75, summaries[0].LastConfidence)
	})
}

func TestMergeSummary_BoundMonotonicity(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

		for _, hour := range []int{10, 9, 11} {
			_, err := s.MergeSummary(ctx, testEvent("E3", "Sara", "2024-05-10", day.Add(time.Duration(hour)*time.Hour), float64(hour)))
			require.NoError(t, err)
		}

		summaries, err := s.SummariesByDate(ctx, "2024-05-10")
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, day.Add(9*time.Hour).Unix(), summaries[0].FirstIn.Unix())
		assert.Equal(t, day.Add(11*time.Hour).Unix(), summaries[0].LastOut.Unix())
		assert.Equal(t, float64(9), summaries[0].FirstConfidence)
		assert.Equal(t, float64(11), summaries[0].LastConfidence)
	})
}

func TestMergeSummary_EmptyPersonIDGroupsByName(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		at := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

		_, err := s.MergeSummary(ctx, testEvent("", "Visitor A", "2024-05-10", at, 0.5))
		require.NoError(t, err)
		_, err = s.MergeSummary(ctx, testEvent("", "Visitor B", "2024-05-10", at.Add(time.Hour), 0.6))
		require.NoError(t, err)

		summaries, err := s.SummariesByDate(ctx, "2024-05-10")
		require.NoError(t, err)
		assert.Len(t, summaries, 2)
	})
}

func TestMergeSummary_NameIsLastWriteWins(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		at := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

		_, err := s.MergeSummary(ctx, testEvent("E4", "A. Hassan", "2024-05-10", at, 0.5))
		require.NoError(t, err)
		_, err = s.MergeSummary(ctx, testEvent("E4", "Ahmed Hassan", "2024-05-10", at.Add(-time.Hour), 0.6))
		require.NoError(t, err)

		summaries, err := s.SummariesByDate(ctx, "2024-05-10")
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "Ahmed Hassan", summaries[0].PersonName)
		assert.Equal(t, at.Add(-time.Hour).Unix(), summaries[0].FirstIn.Unix())
	})
}

func TestMergeSummary_ConcurrentSameKey(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ev := testEvent("E5", "Aisha", "2024-05-10", day.Add(time.Duration(8+i)*time.Minute), 0.5)
				_, err := s.MergeSummary(ctx, ev)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		summaries, err := s.SummariesByDate(ctx, "2024-05-10")
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, day.Add(8*time.Minute).Unix(), summaries[0].FirstIn.Unix())
		assert.Equal(t, day.Add(27*time.Minute).Unix(), summaries[0].LastOut.Unix())
	})
}

func TestListRecent_NewestFirst(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

		for i := 0; i < 5; i++ {
			ev := testEvent("E6", "Omar", "2024-05-10", base.Add(time.Duration(i)*time.Minute), 0.5)
			require.NoError(t, s.AppendEvent(ctx, &ev))
		}

		events, err := s.ListRecent(ctx, 3)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, base.Add(4*time.Minute).Unix(), events[0].EventAt.Unix())
		assert.Equal(t, base.Add(3*time.Minute).Unix(), events[1].EventAt.Unix())
		assert.Equal(t, base.Add(2*time.Minute).Unix(), events[2].EventAt.Unix())
	})
}

func TestListRecent_NonPositiveLimit(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ev := testEvent("E8", "Omar", "2024-05-10", time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC), 0.5)
		require.NoError(t, s.AppendEvent(ctx, &ev))

		events, err := s.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, events)

		// A negative limit must not panic either.
		_, err = s.ListRecent(ctx, -5)
		require.NoError(t, err)
	})
}

func TestMemStore_BufferDiscardsOldest(t *testing.T) {
	s := NewMemStore(3)
	ctx := context.Background()
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ev := testEvent("E7", "Sara", "2024-05-10", base.Add(time.Duration(i)*time.Minute), 0.5)
		require.NoError(t, s.AppendEvent(ctx, &ev))
	}

	events, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// The two oldest entries were discarded.
	assert.Equal(t, base.Add(4*time.Minute).Unix(), events[0].EventAt.Unix())
	assert.Equal(t, base.Add(2*time.Minute).Unix(), events[2].EventAt.Unix())
}

func TestSummariesByDate_Empty(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		summaries, err := s.SummariesByDate(context.Background(), "2024-01-15")
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})
}
