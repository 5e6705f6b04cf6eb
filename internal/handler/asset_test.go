package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/handler"
	"github.com/pkordes/hila-planner/internal/middleware"
)

// ---- POST /assets ----------------------------------------------------------

func TestCreateAsset_201(t *testing.T) {
	api := newTestAPI()

	rec := do(t, api.handler, http.MethodPost, "/assets", map[string]any{
		"type":          "מלון",
		"title":         "Hotel de Russie",
		"country":       "איטליה",
		"cost_price":    800,
		"selling_price": 1000,
		"phone":         "+39 06 328881",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[handler.Asset](t, rec)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "hotel", resp.Type, "Hebrew label accepted")
	assert.Equal(t, "מלון", resp.TypeLabel)
	assert.Equal(t, 200.0, resp.Profit)
	assert.Equal(t, 20, resp.MarginPercent)
	require.NotNil(t, resp.Phone)
	assert.Equal(t, "+39 06 328881", *resp.Phone)
	assert.Nil(t, resp.Address)
	assert.Equal(t, []string{}, resp.Tags)
}

func TestCreateAsset_422_ValidationError(t *testing.T) {
	api := newTestAPI()

	rec := do(t, api.handler, http.MethodPost, "/assets", map[string]any{
		"type":  "hotel",
		"title": "",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "service.", "internal prefixes stripped")
}

func TestCreateAsset_422_UnknownType(t *testing.T) {
	api := newTestAPI()

	rec := do(t, api.handler, http.MethodPost, "/assets", map[string]any{
		"type":  "spaceship",
		"title": "Moon base",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateAsset_422_MalformedBody(t *testing.T) {
	api := newTestAPI()

	req := httptest.NewRequest(http.MethodPost, "/assets", strings.NewReader(`{"title":`))
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[handler.ErrorResponse](t, rec).Error.Message, "invalid request body")
}

func TestCreateAsset_422_MissingBody(t *testing.T) {
	api := newTestAPI()

	rec := do(t, api.handler, http.MethodPost, "/assets", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateAsset_413_BodyTooLarge(t *testing.T) {
	api := newTestAPI()
	h := middleware.NewMaxBodySizeHandler(64)(api.handler)

	body := `{"title":"` + strings.Repeat("x", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/assets", strings.NewReader(body))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request_too_large", decode[handler.ErrorResponse](t, rec).Error.Code)
}

// ---- GET /assets -----------------------------------------------------------

func TestListAssets_Filters(t *testing.T) {
	api := newTestAPI()
	api.createAsset(t, "Colosseum", 41.89, 12.49)
	api.createAsset(t, "Pantheon", 41.9, 12.48)
	rec := do(t, api.handler, http.MethodPost, "/assets", map[string]any{
		"type": "restaurant", "title": "Roscioli", "country": "איטליה",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, api.handler, http.MethodGet, "/assets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[handler.AssetList](t, rec).Data, 3)

	rec = do(t, api.handler, http.MethodGet, "/assets?type=restaurant", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[handler.AssetList](t, rec).Data
	require.Len(t, list, 1)
	assert.Equal(t, "Roscioli", list[0].Title)

	rec = do(t, api.handler, http.MethodGet, "/assets?q=panth", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[handler.AssetList](t, rec).Data
	require.Len(t, list, 1)
	assert.Equal(t, "Pantheon", list[0].Title)
}

func TestListAssets_200_Empty(t *testing.T) {
	rec := do(t, newTestAPI().handler, http.MethodGet, "/assets", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Must be a JSON array, not null.
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestListAssets_422_UnknownType(t *testing.T) {
	rec := do(t, newTestAPI().handler, http.MethodGet, "/assets?type=castle", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListAssets_500_LogsAndHidesError(t *testing.T) {
	svc := &mockAssetServicer{
		list: func(_ context.Context, _ domain.AssetFilter) ([]domain.Asset, error) {
			return nil, errors.New("connection reset by peer")
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Assets: svc}), http.MethodGet, "/assets", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "internal_error", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "connection reset")
}

func TestListAssets_PassesFilter(t *testing.T) {
	var got domain.AssetFilter
	svc := &mockAssetServicer{
		list: func(_ context.Context, f domain.AssetFilter) ([]domain.Asset, error) {
			got = f
			return nil, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Assets: svc}), http.MethodGet,
		"/assets?type=hotel&country=%D7%99%D7%95%D7%95%D7%9F&q=spa", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.AssetFilter{Type: domain.AssetHotel, Country: "יוון", Search: "spa"}, got)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

// ---- GET /assets/filters ---------------------------------------------------

func TestGetAssetFilters(t *testing.T) {
	api := newTestAPI()
	api.createAsset(t, "Colosseum", 41.89, 12.49)

	rec := do(t, api.handler, http.MethodGet, "/assets/filters", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.AssetFilters](t, rec)
	assert.Equal(t, []string{"attraction"}, resp.Types)
	assert.Equal(t, []string{"איטליה"}, resp.Countries)
	assert.Equal(t, []string{"רומא"}, resp.Cities)
}

// ---- /assets/{assetId} -----------------------------------------------------

func TestGetAsset_200(t *testing.T) {
	api := newTestAPI()
	created := api.createAsset(t, "Colosseum", 41.89, 12.49)

	rec := do(t, api.handler, http.MethodGet, "/assets/"+created.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[handler.Asset](t, rec).ID)
}

func TestGetAsset_404(t *testing.T) {
	rec := do(t, newTestAPI().handler, http.MethodGet, "/assets/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "not_found", resp.Error.Code)
	assert.Equal(t, "asset not found", resp.Error.Message)
}

func TestGetAsset_422_InvalidID(t *testing.T) {
	rec := do(t, newTestAPI().handler, http.MethodGet, "/assets/not-a-uuid", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateAsset_200(t *testing.T) {
	api := newTestAPI()
	created := api.createAsset(t, "Colosseum", 41.89, 12.49)

	rec := do(t, api.handler, http.MethodPatch, "/assets/"+created.ID.String(), map[string]any{
		"selling_price":  300,
		"tags":           []string{"must-see"},
		"clear_location": true,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[handler.Asset](t, rec)
	assert.Equal(t, "Colosseum", resp.Title, "untouched fields kept")
	assert.Equal(t, 300.0, resp.SellingPrice)
	assert.Equal(t, []string{"must-see"}, resp.Tags)
	assert.Nil(t, resp.Lat)
	assert.Nil(t, resp.Lng)
}

func TestUpdateAsset_422_NegativePrice(t *testing.T) {
	api := newTestAPI()
	created := api.createAsset(t, "Colosseum", 41.89, 12.49)

	rec := do(t, api.handler, http.MethodPatch, "/assets/"+created.ID.String(), map[string]any{
		"cost_price": -5,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateAsset_404(t *testing.T) {
	rec := do(t, newTestAPI().handler, http.MethodPatch, "/assets/"+uuid.New().String(), map[string]any{
		"title": "x",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAsset_204_Then404(t *testing.T) {
	api := newTestAPI()
	created := api.createAsset(t, "Colosseum", 41.89, 12.49)

	rec := do(t, api.handler, http.MethodDelete, "/assets/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, api.handler, http.MethodDelete, "/assets/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
