package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/hila-planner/internal/domain"
)

func TestViewService_DayDistanceWarnings(t *testing.T) {
	e := newEnv()
	_, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))
	rome := e.addAssetAt(t, "Colosseum", 41.8902, 12.4922)
	vatican := e.addAssetAt(t, "Vatican", 41.9029, 12.4534)
	florence := e.addAssetAt(t, "Uffizi", 43.7678, 11.2553)
	e.schedule(t, days[0].ID, rome, vatican, florence)

	got, err := e.views.DayDistanceWarnings(context.Background(), days[0].ID)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, vatican.ID, got[0].FromAssetID)
	assert.Equal(t, florence.ID, got[0].ToAssetID)
	assert.Equal(t, "Uffizi", got[0].ToTitle)
	assert.Equal(t, 1, got[0].FromIndex)
	assert.Equal(t, 2, got[0].ToIndex)
	assert.InDelta(t, 231, got[0].DistanceKm, 5)
}

func TestViewService_DayDistanceWarnings_SkipsDanglingAndUnknownDay(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))
	rome := e.addAssetAt(t, "Colosseum", 41.89, 12.49)
	milan := e.addAssetAt(t, "Duomo", 45.46, 9.19)
	e.schedule(t, days[0].ID, rome, milan)
	require.NoError(t, e.assets.Remove(ctx, milan.ID))

	got, err := e.views.DayDistanceWarnings(ctx, days[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = e.views.DayDistanceWarnings(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestViewService_TripDistanceWarnings(t *testing.T) {
	e := newEnv()
	trip, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 3))
	rome := e.addAssetAt(t, "Colosseum", 41.89, 12.49)
	milan := e.addAssetAt(t, "Duomo", 45.46, 9.19)
	e.schedule(t, days[0].ID, rome, rome)
	e.schedule(t, days[2].ID, rome, milan)

	got, err := e.views.TripDistanceWarnings(context.Background(), trip.ID)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, days[2].ID, got[0].Day.ID)
	assert.Len(t, got[0].Warnings, 1)

	_, err = e.views.TripDistanceWarnings(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestViewService_Timeline_DropsUnresolved(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	trip, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 3))
	hotel := e.addAssetAt(t, "Hotel", 41.9, 12.5)
	gone := e.addAssetAt(t, "Gone", 41.9, 12.5)
	e.schedule(t, days[0].ID, hotel, gone)
	e.schedule(t, days[1].ID, gone)
	e.schedule(t, days[2].ID, hotel)
	require.NoError(t, e.assets.Remove(ctx, gone.ID))

	tl, err := e.views.Timeline(ctx, trip.ID)

	require.NoError(t, err)
	assert.Equal(t, trip.ID, tl.Trip.ID)
	assert.Equal(t, 2, tl.TotalDays, "day 2 only held a dangling activity")
	assert.Equal(t, 2, tl.TotalActivities)
	require.Len(t, tl.Days, 2)
	assert.Equal(t, 1, tl.Days[0].Day.DayNumber)
	assert.Equal(t, 3, tl.Days[1].Day.DayNumber)
	require.Len(t, tl.Days[0].Activities, 1)
	assert.Equal(t, "Hotel", tl.Days[0].Activities[0].Asset.Title)
}

func TestViewService_Timeline_NotFound(t *testing.T) {
	e := newEnv()

	_, err := e.views.Timeline(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestViewService_ClientTimeline_AppliesOverlay(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	trip, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))
	hotel := e.addAssetAt(t, "Hotel", 41.9, 12.5)
	museum := e.addAssetAt(t, "Museum", 41.9, 12.5)
	e.schedule(t, days[0].ID, hotel, museum)
	token, err := e.trip.GenerateShareToken(ctx, trip.ID)
	require.NoError(t, err)
	require.NoError(t, e.overlay.Set(ctx, trip.ID, hotel.ID, "תיאור מלוטש"))

	tl, err := e.views.ClientTimeline(ctx, token)

	require.NoError(t, err)
	require.Len(t, tl.Days, 1)
	assert.Equal(t, "תיאור מלוטש", tl.Days[0].Activities[0].Asset.DescriptionHe)
	assert.Equal(t, museum.DescriptionHe, tl.Days[0].Activities[1].Asset.DescriptionHe)

	stored, err := e.assets.Get(ctx, hotel.ID)
	require.NoError(t, err)
	assert.Equal(t, hotel.DescriptionHe, stored.DescriptionHe, "overlay never touches the asset")
}

func TestViewService_ClientTimeline_UnknownToken(t *testing.T) {
	e := newEnv()

	_, err := e.views.ClientTimeline(context.Background(), "hila-AAAAA-AAAAA")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.views.ClientTimeline(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestViewService_TripCostSummary(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	trip, days := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 2))

	hotel := validAsset() // cost 800, selling 1000
	hotel, err := e.assets.Add(ctx, hotel)
	require.NoError(t, err)
	dinner := validAsset()
	dinner.Type = domain.AssetRestaurant
	dinner.CostPrice, dinner.SellingPrice = 150, 300
	dinner, err = e.assets.Add(ctx, dinner)
	require.NoError(t, err)
	gone := e.addAssetAt(t, "gone", 41.9, 12.5)

	e.schedule(t, days[0].ID, hotel, dinner)
	e.schedule(t, days[1].ID, hotel, gone)
	require.NoError(t, e.assets.Remove(ctx, gone.ID))

	got, err := e.views.TripCostSummary(ctx, trip.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, got.Activities)
	assert.Equal(t, 1, got.Unresolved)
	assert.Equal(t, 1750.0, got.TotalCost)
	assert.Equal(t, 2300.0, got.TotalSelling)
	assert.Equal(t, 550.0, got.Profit)
	assert.Equal(t, 24, got.MarginPercent) // 23.9 rounds to 24
}

func TestViewService_TripCostSummary_EmptyTrip(t *testing.T) {
	e := newEnv()
	trip, _ := e.addTrip(t, date(2025, 3, 1), date(2025, 3, 1))

	got, err := e.views.TripCostSummary(context.Background(), trip.ID)

	require.NoError(t, err)
	assert.Zero(t, got.TotalSelling)
	assert.Zero(t, got.MarginPercent)
}
