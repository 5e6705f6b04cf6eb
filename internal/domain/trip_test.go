package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/hila-planner/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSpanDays(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
		want       int64
	}{
		{"single day", day(2025, 3, 1), day(2025, 3, 1), 1},
		{"month end", day(2025, 2, 27), day(2025, 3, 2), 4},
		{"leap day", day(2024, 2, 28), day(2024, 3, 1), 3},
		{"end before start", day(2025, 3, 2), day(2025, 3, 1), 0},
		{"time of day ignored", day(2025, 3, 1).Add(23 * time.Hour), day(2025, 3, 2), 2},
		{"whole calendar", day(2, 1, 1), day(9999, 12, 31), 3651694},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.SpanDays(tc.start, tc.end))
		})
	}
}

func TestValidateDateRange(t *testing.T) {
	start := day(2025, 3, 1)

	assert.NoError(t, domain.ValidateDateRange(start, start))
	assert.NoError(t, domain.ValidateDateRange(start, start.AddDate(0, 0, domain.MaxTripDays-1)))

	err := domain.ValidateDateRange(start, start.AddDate(0, 0, domain.MaxTripDays))
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.ErrorIs(t, domain.ValidateDateRange(start, start.AddDate(0, 0, -1)), domain.ErrInvalidDateRange)
}

func TestBuildDays(t *testing.T) {
	tripID := uuid.New()

	days := domain.BuildDays(tripID, day(2025, 3, 30), day(2025, 4, 1), domain.UUIDGenerator{})

	require.Len(t, days, 3)
	for i, d := range days {
		assert.Equal(t, tripID, d.TripID)
		assert.Equal(t, i+1, d.DayNumber)
		assert.Equal(t, day(2025, 3, 30).AddDate(0, 0, i), d.Date)
	}
}

func TestResizeDays(t *testing.T) {
	tripID := uuid.New()
	ids := domain.UUIDGenerator{}
	existing := domain.BuildDays(tripID, day(2025, 3, 1), day(2025, 3, 3), ids)

	t.Run("shift later", func(t *testing.T) {
		kept, removed := domain.ResizeDays(tripID, existing, day(2025, 3, 2), day(2025, 3, 5), ids)

		require.Len(t, kept, 4)
		assert.Equal(t, existing[1].ID, kept[0].ID, "Mar 2 keeps its day")
		assert.Equal(t, existing[2].ID, kept[1].ID, "Mar 3 keeps its day")
		for i, d := range kept {
			assert.Equal(t, i+1, d.DayNumber)
			assert.Equal(t, day(2025, 3, 2).AddDate(0, 0, i), d.Date)
			assert.Equal(t, tripID, d.TripID)
		}
		assert.NotEqual(t, uuid.Nil, kept[3].ID)
		require.Len(t, removed, 1)
		assert.Equal(t, existing[0].ID, removed[0].ID)
	})

	t.Run("shrink", func(t *testing.T) {
		kept, removed := domain.ResizeDays(tripID, existing, day(2025, 3, 3), day(2025, 3, 3), ids)

		require.Len(t, kept, 1)
		assert.Equal(t, existing[2].ID, kept[0].ID)
		assert.Equal(t, 1, kept[0].DayNumber)
		assert.Len(t, removed, 2)
	})

	t.Run("disjoint range", func(t *testing.T) {
		kept, removed := domain.ResizeDays(tripID, existing, day(2025, 5, 1), day(2025, 5, 2), ids)

		assert.Len(t, kept, 2)
		assert.Len(t, removed, 3)
	})
}

func TestTripStatus(t *testing.T) {
	assert.Equal(t, domain.TripProposal, domain.TripDraft.Next())
	assert.Equal(t, domain.TripConfirmed, domain.TripProposal.Next())
	assert.Equal(t, domain.TripDraft, domain.TripConfirmed.Next())

	assert.True(t, domain.TripConfirmed.Valid())
	assert.False(t, domain.TripStatus("").Valid())
	assert.Equal(t, "מאושר", domain.TripConfirmed.Label())
}
