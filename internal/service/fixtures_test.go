package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/repo"
	"github.com/pkordes/hila-planner/internal/service"
)

// mockAssetRepo is a hand-written test double for repo.AssetRepo.
// Each method is a function field; set only the ones your test needs.
type mockAssetRepo struct {
	create  func(ctx context.Context, a domain.Asset) (domain.Asset, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Asset, error)
	list    func(ctx context.Context, f domain.AssetFilter) ([]domain.Asset, error)
	update  func(ctx context.Context, a domain.Asset) (domain.Asset, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockAssetRepo) Create(ctx context.Context, a domain.Asset) (domain.Asset, error) {
	return m.create(ctx, a)
}
func (m *mockAssetRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Asset, error) {
	return m.getByID(ctx, id)
}
func (m *mockAssetRepo) List(ctx context.Context, f domain.AssetFilter) ([]domain.Asset, error) {
	return m.list(ctx, f)
}
func (m *mockAssetRepo) Update(ctx context.Context, a domain.Asset) (domain.Asset, error) {
	return m.update(ctx, a)
}
func (m *mockAssetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockAssetRepo must satisfy repo.AssetRepo.
var _ repo.AssetRepo = (*mockAssetRepo)(nil)

// failingItineraryRepo wraps a real in-memory repo and replaces selected
// methods with failures.
type failingItineraryRepo struct {
	repo.ItineraryRepo
	createTrip       func(ctx context.Context, trip domain.Trip, days []domain.Day) (domain.Trip, error)
	setShareTokenErr error
}

func (m *failingItineraryRepo) CreateTrip(ctx context.Context, trip domain.Trip, days []domain.Day) (domain.Trip, error) {
	if m.createTrip != nil {
		return m.createTrip(ctx, trip, days)
	}
	return m.ItineraryRepo.CreateTrip(ctx, trip, days)
}

func (m *failingItineraryRepo) SetShareTokenIfEmpty(ctx context.Context, tripID uuid.UUID, token string) (string, error) {
	if m.setShareTokenErr != nil {
		return "", m.setShareTokenErr
	}
	return m.ItineraryRepo.SetShareTokenIfEmpty(ctx, tripID, token)
}

var _ repo.ItineraryRepo = (*failingItineraryRepo)(nil)

// ---- helpers ---------------------------------------------------------------

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// env wires every service over fresh in-memory repositories.
type env struct {
	assetRepo repo.AssetRepo
	trips     repo.ItineraryRepo
	overlay   repo.PolishRepo

	assets    *service.AssetService
	trip      *service.TripService
	templates *service.TemplateService
	views     *service.ViewService
}

func newEnv() *env {
	ids := domain.UUIDGenerator{}
	e := &env{
		assetRepo: repo.NewMemoryAssetRepo(),
		trips:     repo.NewMemoryItineraryRepo(),
		overlay:   repo.NewMemoryPolishRepo(),
	}
	e.assets = service.NewAssetService(e.assetRepo, ids, fixedClock)
	e.trip = service.NewTripService(e.trips, ids, fixedClock, service.WithPolishOverlay(e.overlay))
	e.templates = service.NewTemplateService(repo.NewMemoryTemplateRepo(), e.trips, ids, fixedClock)
	e.views = service.NewViewService(e.assetRepo, e.trips, e.overlay)
	return e
}

func validAsset() domain.Asset {
	return domain.Asset{
		Type:          domain.AssetHotel,
		Country:       "איטליה",
		City:          "רומא",
		Title:         "Hotel de Russie",
		DescriptionHe: "מלון יוקרה ליד פיאצה דל פופולו",
		Tags:          []string{"luxury", "spa"},
		CostPrice:     800,
		SellingPrice:  1000,
	}
}

// addAssetAt stores an asset located at (lat, lng).
func (e *env) addAssetAt(t *testing.T, title string, lat, lng float64) domain.Asset {
	t.Helper()
	a := validAsset()
	a.Title = title
	a.Lat, a.Lng = ptr(lat), ptr(lng)
	got, err := e.assets.Add(context.Background(), a)
	require.NoError(t, err)
	return got
}

// addTrip creates a trip over the inclusive range and returns it with its days.
func (e *env) addTrip(t *testing.T, start, end time.Time) (domain.Trip, []domain.Day) {
	t.Helper()
	ctx := context.Background()
	trip, err := e.trip.AddTrip(ctx, domain.Trip{ClientName: "משפחת לוי", StartDate: start, EndDate: end})
	require.NoError(t, err)
	days, err := e.trip.DaysForTrip(ctx, trip.ID)
	require.NoError(t, err)
	return trip, days
}

func (e *env) schedule(t *testing.T, dayID uuid.UUID, assets ...domain.Asset) []domain.Activity {
	t.Helper()
	out := make([]domain.Activity, len(assets))
	for i, a := range assets {
		act, err := e.trip.AddActivity(context.Background(), dayID, a.ID, "", "")
		require.NoError(t, err)
		out[i] = act
	}
	return out
}

func ids(acts []domain.Activity) []uuid.UUID {
	out := make([]uuid.UUID, len(acts))
	for i, a := range acts {
		out[i] = a.ID
	}
	return out
}

func orders(acts []domain.Activity) []int {
	out := make([]int, len(acts))
	for i, a := range acts {
		out[i] = a.SortOrder
	}
	return out
}
