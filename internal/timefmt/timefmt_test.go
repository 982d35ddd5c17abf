package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_RiyadhCrossesMidnight(t *testing.T) {
	f, err := New("Asia/Riyadh")
	require.NoError(t, err)

	// 21:30 UTC is already past midnight in Riyadh (UTC+3, no DST).
	instant := time.Date(2024, 1, 1, 21, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-02", f.DateKey(instant))
	assert.Equal(t, "2024-01-02 00:30:00", f.DisplayTimestamp(instant))
}

func TestFormatter_DSTTransition(t *testing.T) {
	f, err := New("Europe/London")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		instant  time.Time
		expected string
	}{
		{
			name:     "winter is UTC",
			instant:  time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			expected: "2024-01-15 12:00:00",
		},
		{
			name:     "summer is UTC+1",
			instant:  time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC),
			expected: "2024-07-15 13:00:00",
		},
		{
			name:     "23:30 UTC in summer rolls to the next local day",
			instant:  time.Date(2024, 7, 15, 23, 30, 0, 0, time.UTC),
			expected: "2024-07-16 00:30:00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, f.DisplayTimestamp(tc.instant))
			assert.Equal(t, tc.expected[:10], f.DateKey(tc.instant))
		})
	}
}

func TestFormatter_YearBoundary(t *testing.T) {
	f, err := New("Asia/Riyadh")
	require.NoError(t, err)

	instant := time.Date(2023, 12, 31, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01", f.DateKey(instant))
	assert.Equal(t, "2024-01-01 01:00:00", f.DisplayTimestamp(instant))
}

func TestFormatter_InvalidTimezone(t *testing.T) {
	_, err := New("Not/AZone")
	assert.Error(t, err)
}
