package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/repo"
	"github.com/pkordes/hila-planner/internal/service"
)

// ---- AddTrip ---------------------------------------------------------------

func TestTripService_AddTrip_GeneratesDays(t *testing.T) {
	e := newEnv()

	trip, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 3))

	assert.Equal(t, domain.TripDraft, trip.Status)
	assert.Equal(t, "משפחת לוי", trip.ClientName)
	require.Len(t, days, 3)
	for i, d := range days {
		assert.Equal(t, trip.ID, d.TripID)
		assert.Equal(t, i+1, d.DayNumber)
		assert.True(t, d.Date.Equal(date(2025, 3, 1+i)))
	}
}

func TestTripService_AddTrip_SingleDay(t *testing.T) {
	e := newEnv()

	_, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))

	assert.Len(t, days, 1)
}

func TestTripService_AddTrip_ThirtyDaysAllowed(t *testing.T) {
	e := newEnv()

	_, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 30))

	assert.Len(t, days, domain.MaxTripDays)
}

func TestTripService_AddTrip_Invalid(t *testing.T) {
	tests := []struct {
		name string
		trip domain.Trip
	}{
		{"blank client", domain.Trip{ClientName: " ", StartDate: date(2025, 3, 1), EndDate: date(2025, 3, 2)}},
		{"end before start", domain.Trip{ClientName: "x", StartDate: date(2025, 3, 2), EndDate: date(2025, 3, 1)}},
		{"31 days", domain.Trip{ClientName: "x", StartDate: date(2025, 3, 1), EndDate: date(2025, 3, 31)}},
		{"missing dates", domain.Trip{ClientName: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()

			_, err := e.trip.AddTrip(context.Background(), tt.trip)

			assert.ErrorIs(t, err, domain.ErrValidation)
			trips, total, _ := e.trip.ListTrips(context.Background(), domain.NewPaginationParams(nil, nil))
			assert.Empty(t, trips)
			assert.Zero(t, total)
		})
	}
}

func TestTripService_AddTrip_DateRangeError(t *testing.T) {
	e := newEnv()

	_, err := e.trip.AddTrip(context.Background(), domain.Trip{
		ClientName: "x", StartDate: date(2025, 3, 1), EndDate: date(2025, 5, 1),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestTripService_AddTrip_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	r := &failingItineraryRepo{
		ItineraryRepo: repo.NewMemoryItineraryRepo(),
		createTrip: func(_ context.Context, _ domain.Trip, _ []domain.Day) (domain.Trip, error) {
			return domain.Trip{}, repoErr
		},
	}
	svc := service.NewTripService(r, domain.UUIDGenerator{}, fixedClock)

	_, err := svc.AddTrip(context.Background(), domain.Trip{ClientName: "x", StartDate: date(2025, 3, 1), EndDate: date(2025, 3, 1)})

	assert.ErrorIs(t, err, repoErr)
}

// ---- Get / List / Remove ---------------------------------------------------

func TestTripService_GetTrip_NotFound(t *testing.T) {
	e := newEnv()

	_, err := e.trip.GetTrip(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_ListTrips_Paged(t *testing.T) {
	e := newEnv()
	for i := 0; i < 3; i++ {
		e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))
	}

	page, total, err := e.trip.ListTrips(context.Background(), domain.NewPaginationParams(ptr(2), ptr(2)))

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)
}

func TestTripService_RemoveTrip_Cascades(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	trip, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 2))
	e.schedule(t, days[0].ID, e.addAssetAt(t, "a", 41.9, 12.5))

	require.NoError(t, e.trip.RemoveTrip(ctx, trip.ID))

	got, err := e.trip.DaysForTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	acts, err := e.trip.ActivitiesForDay(ctx, days[0].ID)
	require.NoError(t, err)
	assert.Empty(t, acts)
	assert.ErrorIs(t, e.trip.RemoveTrip(ctx, trip.ID), domain.ErrNotFound)
}

func TestTripService_RemoveTrip_ClearsPolishedTexts(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	trip, _ := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))
	other, _ := e.addTrip(t, date(2025, 4, 1), date(2025, 4, 1))
	asset := e.addAssetAt(t, "a", 41.9, 12.5)
	require.NoError(t, e.overlay.Set(ctx, trip.ID, asset.ID, "מלוטש"))
	require.NoError(t, e.overlay.Set(ctx, other.ID, asset.ID, "אחר"))

	require.NoError(t, e.trip.RemoveTrip(ctx, trip.ID))

	_, err := e.overlay.Get(ctx, trip.ID, asset.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	text, err := e.overlay.Get(ctx, other.ID, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "אחר", text)
}

// ---- UpdateTrip / AdvanceStatus --------------------------------------------

func TestTripService_UpdateTrip_Fields(t *testing.T) {
	e := newEnv()
	trip, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 2))

	got, err := e.trip.UpdateTrip(context.Background(), trip.ID, domain.TripPatch{
		ClientName: ptr("משפחת כהן"),
		CoverImage: ptr("https://img.example/cover.jpg"),
	})

	require.NoError(t, err)
	assert.Equal(t, "משפחת כהן", got.ClientName)
	assert.Equal(t, "https://img.example/cover.jpg", got.CoverImage)
	after, _ := e.trip.DaysForTrip(context.Background(), trip.ID)
	assert.Equal(t, days, after, "days untouched when dates are unchanged")
}

func TestTripService_UpdateTrip_RegeneratesDays(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	trip, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 3))
	asset := e.addAssetAt(t, "a", 41.9, 12.5)
	e.schedule(t, days[0].ID, asset)
	kept := e.schedule(t, days[2].ID, asset)

	_, err := e.trip.UpdateTrip(ctx, trip.ID, domain.TripPatch{
		StartDate: ptr(date(2025, 3, 3)),
		EndDate:   ptr(date(2025, 3, 4)),
	})
	require.NoError(t, err)

	after, err := e.trip.DaysForTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, days[2].ID, after[0].ID, "March 3 keeps its identity")
	assert.Equal(t, 1, after[0].DayNumber)
	assert.Equal(t, 2, after[1].DayNumber)
	assert.True(t, after[1].Date.Equal(date(2025, 3, 4)))

	acts, err := e.trip.ActivitiesForDay(ctx, days[2].ID)
	require.NoError(t, err)
	assert.Equal(t, ids(kept), ids(acts))

	_, err = e.trip.GetDay(ctx, days[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "March 1 was dropped")
}

func TestTripService_UpdateTrip_InvalidRangeChangesNothing(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	trip, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 3))

	_, err := e.trip.UpdateTrip(ctx, trip.ID, domain.TripPatch{EndDate: ptr(date(2025, 2, 1))})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.trip.UpdateTrip(ctx, trip.ID, domain.TripPatch{EndDate: ptr(date(2025, 4, 30))})
	assert.ErrorIs(t, err, domain.ErrValidation)

	after, _ := e.trip.DaysForTrip(ctx, trip.ID)
	assert.Equal(t, days, after)
}

func TestTripService_UpdateTrip_NotFound(t *testing.T) {
	e := newEnv()

	_, err := e.trip.UpdateTrip(context.Background(), uuid.New(), domain.TripPatch{ClientName: ptr("x")})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_UpdateTrip_UnknownStatus(t *testing.T) {
	for _, status := range []domain.TripStatus{"cancelled", "", "DRAFT"} {
		t.Run(string(status), func(t *testing.T) {
			e := newEnv()
			ctx := context.Background()
			trip, _ := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))

			_, err := e.trip.UpdateTrip(ctx, trip.ID, domain.TripPatch{Status: ptr(status)})

			assert.ErrorIs(t, err, domain.ErrValidation)
			stored, err := e.trip.GetTrip(ctx, trip.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.TripDraft, stored.Status, "stored trip unchanged")
		})
	}
}

func TestTripService_AddTrip_IgnoresRequestedStatus(t *testing.T) {
	e := newEnv()

	got, err := e.trip.AddTrip(context.Background(), domain.Trip{
		ClientName: "משפחת לוי",
		Status:     domain.TripConfirmed,
		StartDate:  date(2025, 3, 1),
		EndDate:    date(2025, 3, 2),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TripDraft, got.Status)
}

func TestTripService_AddTrip_HugeRangeRejectedQuickly(t *testing.T) {
	e := newEnv()
	start := time.Now()

	_, err := e.trip.AddTrip(context.Background(), domain.Trip{
		ClientName: "משפחת לוי",
		StartDate:  date(2, 1, 1),
		EndDate:    date(9999, 12, 31),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestTripService_AdvanceStatus_Cycles(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	trip, _ := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))

	var seen []domain.TripStatus
	for i := 0; i < 3; i++ {
		got, err := e.trip.AdvanceStatus(ctx, trip.ID)
		require.NoError(t, err)
		seen = append(seen, got.Status)
	}

	assert.Equal(t, []domain.TripStatus{domain.TripProposal, domain.TripConfirmed, domain.TripDraft}, seen)
}

// ---- Activities ------------------------------------------------------------

func TestTripService_AddActivity_AppendsInOrder(t *testing.T) {
	e := newEnv()
	_, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))
	a := e.addAssetAt(t, "a", 41.9, 12.5)

	acts := e.schedule(t, days[0].ID, a, a, a)

	assert.Equal(t, []int{1, 2, 3}, orders(acts))
	n, err := e.trip.ActivityCountForDay(context.Background(), days[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTripService_AddActivity_UnknownDay(t *testing.T) {
	e := newEnv()

	_, err := e.trip.AddActivity(context.Background(), uuid.New(), uuid.New(), "10:00", "")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_AddActivity_MissingAsset(t *testing.T) {
	e := newEnv()
	_, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))

	_, err := e.trip.AddActivity(context.Background(), days[0].ID, uuid.Nil, "", "")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_AddActivity_KeepsFreeTextTime(t *testing.T) {
	e := newEnv()
	_, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))

	got, err := e.trip.AddActivity(context.Background(), days[0].ID, uuid.New(), " אחרי ארוחת בוקר ", "note")

	require.NoError(t, err)
	assert.Equal(t, "אחרי ארוחת בוקר", got.StartTime)
	assert.Equal(t, "note", got.CustomNote)
}

func TestTripService_ActivitiesForDay_UnknownDay(t *testing.T) {
	e := newEnv()

	got, err := e.trip.ActivitiesForDay(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTripService_MoveActivity(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))
	a := e.addAssetAt(t, "a", 41.9, 12.5)
	acts := e.schedule(t, days[0].ID, a, a, a)

	got, moved, err := e.trip.MoveActivity(ctx, days[0].ID, acts[0].ID, domain.MoveDown)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []uuid.UUID{acts[1].ID, acts[0].ID, acts[2].ID}, ids(got))

	_, moved, err = e.trip.MoveActivity(ctx, days[0].ID, acts[2].ID, domain.MoveDown)
	require.NoError(t, err)
	assert.False(t, moved, "last activity cannot move down")

	stored, _ := e.trip.ActivitiesForDay(ctx, days[0].ID)
	assert.Equal(t, []uuid.UUID{acts[1].ID, acts[0].ID, acts[2].ID}, ids(stored))
	assert.Equal(t, []int{1, 2, 3}, orders(stored))

	_, _, err = e.trip.MoveActivity(ctx, days[0].ID, uuid.New(), domain.MoveUp)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_UpdateActivityOrder(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))
	a := e.addAssetAt(t, "a", 41.9, 12.5)
	acts := e.schedule(t, days[0].ID, a, a, a, a)

	got, err := e.trip.UpdateActivityOrder(ctx, days[0].ID, []uuid.UUID{acts[3].ID, uuid.New(), acts[1].ID})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{acts[3].ID, acts[1].ID, acts[0].ID, acts[2].ID}, ids(got))
	assert.Equal(t, []int{1, 2, 3, 4}, orders(got))

	_, err = e.trip.UpdateActivityOrder(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_RemoveActivity_Renumbers(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))
	a := e.addAssetAt(t, "a", 41.9, 12.5)
	acts := e.schedule(t, days[0].ID, a, a, a)

	require.NoError(t, e.trip.RemoveActivity(ctx, acts[1].ID))

	got, _ := e.trip.ActivitiesForDay(ctx, days[0].ID)
	assert.Equal(t, []uuid.UUID{acts[0].ID, acts[2].ID}, ids(got))
	assert.Equal(t, []int{1, 2}, orders(got))

	next, err := e.trip.AddActivity(ctx, days[0].ID, a.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, next.SortOrder)

	assert.ErrorIs(t, e.trip.RemoveActivity(ctx, acts[1].ID), domain.ErrNotFound)
}

// ---- Share links -----------------------------------------------------------

var tokenPattern = regexp.MustCompile(`^hila-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{5}-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{5}$`)

func TestTripService_GenerateShareToken_Idempotent(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	trip, _ := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))

	first, err := e.trip.GenerateShareToken(ctx, trip.ID)
	require.NoError(t, err)
	second, err := e.trip.GenerateShareToken(ctx, trip.ID)
	require.NoError(t, err)

	assert.Regexp(t, tokenPattern, first)
	assert.Equal(t, first, second)
}

func TestTripService_GenerateShareToken_NotFound(t *testing.T) {
	e := newEnv()

	_, err := e.trip.GenerateShareToken(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_GenerateShareToken_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	r := &failingItineraryRepo{ItineraryRepo: repo.NewMemoryItineraryRepo(), setShareTokenErr: repoErr}
	svc := service.NewTripService(r, domain.UUIDGenerator{}, fixedClock)
	trip, err := svc.AddTrip(context.Background(), domain.Trip{ClientName: "x", StartDate: date(2025, 3, 1), EndDate: date(2025, 3, 1)})
	require.NoError(t, err)

	_, err = svc.GenerateShareToken(context.Background(), trip.ID)

	assert.ErrorIs(t, err, repoErr)
}

func TestTripService_ShareURL(t *testing.T) {
	r := repo.NewMemoryItineraryRepo()
	svc := service.NewTripService(r, domain.UUIDGenerator{}, fixedClock,
		service.WithShareBaseURL("https://share.example/"),
		service.WithTokenGenerator(func() (string, error) { return "hila-ABCDE-FGHJK", nil }),
	)
	ctx := context.Background()
	trip, err := svc.AddTrip(ctx, domain.Trip{ClientName: "x", StartDate: date(2025, 3, 1), EndDate: date(2025, 3, 1)})
	require.NoError(t, err)

	_, ok, err := svc.ShareURL(ctx, trip.ID)
	require.NoError(t, err)
	assert.False(t, ok, "no token yet")

	_, err = svc.GenerateShareToken(ctx, trip.ID)
	require.NoError(t, err)

	url, ok, err := svc.ShareURL(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://share.example/trip/hila-ABCDE-FGHJK", url)
}

func TestTripService_RevokeShareToken(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	trip, _ := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))
	token, err := e.trip.GenerateShareToken(ctx, trip.ID)
	require.NoError(t, err)

	byToken, err := e.trip.TripByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, byToken.ID)

	require.NoError(t, e.trip.RevokeShareToken(ctx, trip.ID))

	_, err = e.trip.TripByToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, ok, err := e.trip.ShareURL(ctx, trip.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	regenerated, err := e.trip.GenerateShareToken(ctx, trip.ID)
	require.NoError(t, err)
	assert.NotEqual(t, token, regenerated)
}

func TestTripService_TripByToken_Empty(t *testing.T) {
	e := newEnv()

	_, err := e.trip.TripByToken(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
