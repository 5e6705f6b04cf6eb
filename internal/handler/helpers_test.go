package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/extract"
	"github.com/pkordes/hila-planner/internal/handler"
	"github.com/pkordes/hila-planner/internal/repo"
	"github.com/pkordes/hila-planner/internal/service"
)

// mockAssetServicer is a test double for handler.AssetServicer.
// Set only the method fields your test needs.
type mockAssetServicer struct {
	add           func(ctx context.Context, a domain.Asset) (domain.Asset, error)
	get           func(ctx context.Context, id uuid.UUID) (domain.Asset, error)
	list          func(ctx context.Context, f domain.AssetFilter) ([]domain.Asset, error)
	update        func(ctx context.Context, id uuid.UUID, p domain.AssetPatch) (domain.Asset, error)
	remove        func(ctx context.Context, id uuid.UUID) error
	filterOptions func(ctx context.Context) (domain.FilterOptions, error)
}

func (m *mockAssetServicer) Add(ctx context.Context, a domain.Asset) (domain.Asset, error) {
	return m.add(ctx, a)
}
func (m *mockAssetServicer) Get(ctx context.Context, id uuid.UUID) (domain.Asset, error) {
	return m.get(ctx, id)
}
func (m *mockAssetServicer) List(ctx context.Context, f domain.AssetFilter) ([]domain.Asset, error) {
	return m.list(ctx, f)
}
func (m *mockAssetServicer) Update(ctx context.Context, id uuid.UUID, p domain.AssetPatch) (domain.Asset, error) {
	return m.update(ctx, id, p)
}
func (m *mockAssetServicer) Remove(ctx context.Context, id uuid.UUID) error {
	return m.remove(ctx, id)
}
func (m *mockAssetServicer) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	return m.filterOptions(ctx)
}

// compile-time check: mockAssetServicer must satisfy handler.AssetServicer.
var _ handler.AssetServicer = (*mockAssetServicer)(nil)

// stubTripServicer overrides selected methods of a real TripServicer.
type stubTripServicer struct {
	handler.TripServicer
	getTrip func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
}

func (m *stubTripServicer) GetTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getTrip(ctx, id)
}

// compile-time checks: the services satisfy the handler interfaces.
var (
	_ handler.AssetServicer    = (*service.AssetService)(nil)
	_ handler.ImportServicer   = (*service.ImportService)(nil)
	_ handler.TripServicer     = (*service.TripService)(nil)
	_ handler.TemplateServicer = (*service.TemplateService)(nil)
	_ handler.ViewServicer     = (*service.ViewService)(nil)
	_ handler.PolishServicer   = (*service.PolishService)(nil)
)

// ---- helpers ---------------------------------------------------------------

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAPI is the full service stack over in-memory repositories, wired the
// way main.go wires it.
type testAPI struct {
	services handler.Services
	handler  http.Handler
}

func newTestAPI() *testAPI {
	ids := domain.UUIDGenerator{}
	now := func() time.Time { return testNow }
	log := discardLogger()

	assetRepo := repo.NewMemoryAssetRepo()
	itinerary := repo.NewMemoryItineraryRepo()
	overlay := repo.NewMemoryPolishRepo()

	assets := service.NewAssetService(assetRepo, ids, now)
	svc := handler.Services{
		Assets:    assets,
		Imports:   service.NewImportService(assets, extract.HeuristicExtractor{}, extract.ParseURLs, 2, log),
		Trips:     service.NewTripService(itinerary, ids, now,
			service.WithShareBaseURL("https://share.test"), service.WithPolishOverlay(overlay)),
		Templates: service.NewTemplateService(repo.NewMemoryTemplateRepo(), itinerary, ids, now),
		Views:     service.NewViewService(assetRepo, itinerary, overlay),
		Polish:    service.NewPolishService(assetRepo, itinerary, overlay, service.IdentityEnhancer{}, 2, log),
	}
	return &testAPI{
		services: svc,
		handler:  handler.NewServer(svc, log, []byte("openapi: 3.0.3\n")).Handler(),
	}
}

// newHTTPHandler wires a Server with only the given services.
func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.NewServer(svc, discardLogger(), nil).Handler()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends a request to h and returns the recorder. body may be nil.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = jsonBody(t, body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// createAsset posts an asset and returns it.
func (a *testAPI) createAsset(t *testing.T, title string, lat, lng float64) handler.Asset {
	t.Helper()
	rec := do(t, a.handler, http.MethodPost, "/assets", map[string]any{
		"type":           "attraction",
		"country":        "איטליה",
		"city":           "רומא",
		"title":          title,
		"description_he": "תיאור של " + title,
		"cost_price":     100,
		"selling_price":  150,
		"lat":            lat,
		"lng":            lng,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[handler.Asset](t, rec)
}

// createTrip posts a trip and returns it with its days.
func (a *testAPI) createTrip(t *testing.T, start, end string) (handler.Trip, []handler.Day) {
	t.Helper()
	rec := do(t, a.handler, http.MethodPost, "/trips", map[string]any{
		"client_name": "משפחת כהן",
		"start_date":  start,
		"end_date":    end,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	trip := decode[handler.Trip](t, rec)

	rec = do(t, a.handler, http.MethodGet, "/trips/"+trip.ID.String()+"/days", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return trip, decode[handler.DayList](t, rec).Data
}

// schedule appends activities for assets to the day, in order.
func (a *testAPI) schedule(t *testing.T, dayID uuid.UUID, assets ...handler.Asset) []handler.Activity {
	t.Helper()
	out := make([]handler.Activity, len(assets))
	for i, asset := range assets {
		rec := do(t, a.handler, http.MethodPost, "/days/"+dayID.String()+"/activities", map[string]any{
			"asset_id": asset.ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		out[i] = decode[handler.Activity](t, rec)
	}
	return out
}

func activityIDs(acts []handler.Activity) []uuid.UUID {
	out := make([]uuid.UUID, len(acts))
	for i, a := range acts {
		out[i] = a.ID
	}
	return out
}
