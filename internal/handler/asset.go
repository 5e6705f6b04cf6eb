package handler

import (
	"net/http"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/hila-planner/internal/domain"
)

// Asset is the wire form of domain.Asset for the planner.
type Asset struct {
	ID            openapi_types.UUID `json:"id"`
	Type          string             `json:"type"`
	TypeLabel     string             `json:"type_label"`
	Country       string             `json:"country"`
	City          string             `json:"city"`
	Title         string             `json:"title"`
	DescriptionHe string             `json:"description_he"`
	Images        []string           `json:"images"`
	ExpertNotes   string             `json:"expert_notes"`
	Tags          []string           `json:"tags"`
	CostPrice     float64            `json:"cost_price"`
	SellingPrice  float64            `json:"selling_price"`
	Profit        float64            `json:"profit"`
	MarginPercent int                `json:"margin_percent"`
	Phone         *string            `json:"phone,omitempty"`
	Address       *string            `json:"address,omitempty"`
	Lat           *float64           `json:"lat,omitempty"`
	Lng           *float64           `json:"lng,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CreateAssetRequest is the body of POST /assets.
type CreateAssetRequest struct {
	Type          string   `json:"type"`
	Country       string   `json:"country"`
	City          string   `json:"city"`
	Title         string   `json:"title"`
	DescriptionHe string   `json:"description_he"`
	Images        []string `json:"images"`
	ExpertNotes   string   `json:"expert_notes"`
	Tags          []string `json:"tags"`
	CostPrice     float64  `json:"cost_price"`
	SellingPrice  float64  `json:"selling_price"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
}

// UpdateAssetRequest is the body of PATCH /assets/{assetId}. Absent fields
// are left unchanged; clear_location removes the coordinates.
type UpdateAssetRequest struct {
	Type          *string   `json:"type"`
	Country       *string   `json:"country"`
	City          *string   `json:"city"`
	Title         *string   `json:"title"`
	DescriptionHe *string   `json:"description_he"`
	Images        *[]string `json:"images"`
	ExpertNotes   *string   `json:"expert_notes"`
	Tags          *[]string `json:"tags"`
	CostPrice     *float64  `json:"cost_price"`
	SellingPrice  *float64  `json:"selling_price"`
	Phone         *string   `json:"phone"`
	Address       *string   `json:"address"`
	Lat           *float64  `json:"lat"`
	Lng           *float64  `json:"lng"`
	ClearLocation bool      `json:"clear_location"`
}

// AssetList is the body of GET /assets.
type AssetList struct {
	Data []Asset `json:"data"`
}

// AssetFilters is the body of GET /assets/filters.
type AssetFilters struct {
	Types     []string `json:"types"`
	Countries []string `json:"countries"`
	Cities    []string `json:"cities"`
}

// CreateAsset handles POST /assets.
func (s *Server) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var body CreateAssetRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.svc.Assets.Add(r.Context(), requestToAsset(body))
	if err != nil {
		s.respondError(w, r, err, "asset not found")
		return
	}
	writeJSON(w, http.StatusCreated, assetToResponse(created))
}

// ListAssets handles GET /assets.
// Supports ?type=, ?country= and ?q= filters, combined with AND.
func (s *Server) ListAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AssetFilter{
		Country: q.Get("country"),
		Search:  q.Get("q"),
	}
	if raw := strings.TrimSpace(q.Get("type")); raw != "" {
		t, ok := domain.ParseAssetType(raw)
		if !ok {
			writeJSON(w, http.StatusUnprocessableEntity, requestBody("unknown asset type "+raw))
			return
		}
		filter.Type = t
	}

	assets, err := s.svc.Assets.List(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err, "asset not found")
		return
	}
	data := make([]Asset, len(assets))
	for i, a := range assets {
		data[i] = assetToResponse(a)
	}
	writeJSON(w, http.StatusOK, AssetList{Data: data})
}

// GetAssetFilters handles GET /assets/filters.
func (s *Server) GetAssetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := s.svc.Assets.FilterOptions(r.Context())
	if err != nil {
		s.respondError(w, r, err, "asset not found")
		return
	}
	writeJSON(w, http.StatusOK, AssetFilters{
		Types:     nonNil(opts.Types),
		Countries: nonNil(opts.Countries),
		Cities:    nonNil(opts.Cities),
	})
}

// GetAsset handles GET /assets/{assetId}.
func (s *Server) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "assetId")
	if !ok {
		return
	}
	asset, err := s.svc.Assets.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "asset not found")
		return
	}
	writeJSON(w, http.StatusOK, assetToResponse(asset))
}

// UpdateAsset handles PATCH /assets/{assetId}.
func (s *Server) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "assetId")
	if !ok {
		return
	}
	var body UpdateAssetRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.svc.Assets.Update(r.Context(), id, requestToAssetPatch(body))
	if err != nil {
		s.respondError(w, r, err, "asset not found")
		return
	}
	writeJSON(w, http.StatusOK, assetToResponse(updated))
}

// DeleteAsset handles DELETE /assets/{assetId}.
// Activities that reference the asset stay in place and are skipped by the
// derived views.
func (s *Server) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "assetId")
	if !ok {
		return
	}
	if err := s.svc.Assets.Remove(r.Context(), id); err != nil {
		s.respondError(w, r, err, "asset not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// parseAssetType accepts a type code or Hebrew label. Unknown values are
// passed through so the service reports them as a validation error.
func parseAssetType(raw string) domain.AssetType {
	if t, ok := domain.ParseAssetType(raw); ok {
		return t
	}
	return domain.AssetType(raw)
}

func requestToAsset(body CreateAssetRequest) domain.Asset {
	return domain.Asset{
		Type:          parseAssetType(body.Type),
		Country:       body.Country,
		City:          body.City,
		Title:         body.Title,
		DescriptionHe: body.DescriptionHe,
		Images:        body.Images,
		ExpertNotes:   body.ExpertNotes,
		Tags:          body.Tags,
		CostPrice:     body.CostPrice,
		SellingPrice:  body.SellingPrice,
		Phone:         body.Phone,
		Address:       body.Address,
		Lat:           body.Lat,
		Lng:           body.Lng,
	}
}

func requestToAssetPatch(body UpdateAssetRequest) domain.AssetPatch {
	p := domain.AssetPatch{
		Country:       body.Country,
		City:          body.City,
		Title:         body.Title,
		DescriptionHe: body.DescriptionHe,
		Images:        body.Images,
		ExpertNotes:   body.ExpertNotes,
		Tags:          body.Tags,
		CostPrice:     body.CostPrice,
		SellingPrice:  body.SellingPrice,
		Phone:         body.Phone,
		Address:       body.Address,
		Lat:           body.Lat,
		Lng:           body.Lng,
		ClearLocation: body.ClearLocation,
	}
	if body.Type != nil {
		t := parseAssetType(*body.Type)
		p.Type = &t
	}
	return p
}

// assetToResponse converts a domain.Asset into its wire form.
func assetToResponse(a domain.Asset) Asset {
	resp := Asset{
		ID:            a.ID,
		Type:          string(a.Type),
		TypeLabel:     a.Type.Label(),
		Country:       a.Country,
		City:          a.City,
		Title:         a.Title,
		DescriptionHe: a.DescriptionHe,
		Images:        nonNil(a.Images),
		ExpertNotes:   a.ExpertNotes,
		Tags:          nonNil(a.Tags),
		CostPrice:     a.CostPrice,
		SellingPrice:  a.SellingPrice,
		Profit:        a.Profit(),
		MarginPercent: a.MarginPercent(),
		Lat:           a.Lat,
		Lng:           a.Lng,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.Phone != "" {
		resp.Phone = &a.Phone
	}
	if a.Address != "" {
		resp.Address = &a.Address
	}
	return resp
}

// nonNil returns s, or an empty slice when s is nil, so JSON renders [] not null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
