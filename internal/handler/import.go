package handler

import (
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/service"
)

// AssetCandidate is one possibly incomplete asset in an import batch.
// Missing type falls back to attraction and missing prices to 0.
type AssetCandidate struct {
	Title         string   `json:"title"`
	Type          string   `json:"type"`
	Country       string   `json:"country"`
	City          string   `json:"city"`
	DescriptionHe string   `json:"description_he"`
	Tags          []string `json:"tags"`
	Images        []string `json:"images"`
	ExpertNotes   string   `json:"expert_notes"`
	CostPrice     *float64 `json:"cost_price"`
	SellingPrice  *float64 `json:"selling_price"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
}

// ImportAssetsRequest is the body of POST /assets/import.
type ImportAssetsRequest struct {
	Assets []AssetCandidate `json:"assets"`
}

// ImportURLsRequest is the body of POST /assets/import/urls: links pasted
// one per line.
type ImportURLsRequest struct {
	Text string `json:"text"`
}

// ImportItem reports the outcome of one imported item.
type ImportItem struct {
	Index   int                 `json:"index"`
	Source  string              `json:"source,omitempty"`
	Status  string              `json:"status"`
	AssetID *openapi_types.UUID `json:"asset_id,omitempty"`
	Title   string              `json:"title"`
	Error   string              `json:"error,omitempty"`
}

// ImportResponse is the body returned by both import endpoints.
type ImportResponse struct {
	Results  []ImportItem `json:"results"`
	Imported int          `json:"imported"`
	Failed   int          `json:"failed"`
}

// ImportAssets handles POST /assets/import.
// Each candidate succeeds or fails on its own; the response is 200 either way.
func (s *Server) ImportAssets(w http.ResponseWriter, r *http.Request) {
	var body ImportAssetsRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if len(body.Assets) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("assets must not be empty"))
		return
	}

	candidates := make([]domain.AssetCandidate, len(body.Assets))
	for i, c := range body.Assets {
		candidates[i] = requestToCandidate(c)
	}
	results := s.svc.Imports.ImportCandidates(r.Context(), candidates)
	writeJSON(w, http.StatusOK, importToResponse(results))
}

// ImportAssetURLs handles POST /assets/import/urls.
func (s *Server) ImportAssetURLs(w http.ResponseWriter, r *http.Request) {
	var body ImportURLsRequest
	if !decodeBody(w, r, &body) {
		return
	}

	results, err := s.svc.Imports.ImportURLs(r.Context(), body.Text)
	if err != nil {
		s.respondError(w, r, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, importToResponse(results))
}

// --- mapping helpers --------------------------------------------------------

func requestToCandidate(c AssetCandidate) domain.AssetCandidate {
	return domain.AssetCandidate{
		Title:         c.Title,
		Type:          c.Type,
		Country:       c.Country,
		City:          c.City,
		DescriptionHe: c.DescriptionHe,
		Tags:          c.Tags,
		Images:        c.Images,
		ExpertNotes:   c.ExpertNotes,
		CostPrice:     c.CostPrice,
		SellingPrice:  c.SellingPrice,
		Phone:         c.Phone,
		Address:       c.Address,
		Lat:           c.Lat,
		Lng:           c.Lng,
	}
}

func importToResponse(results []service.ImportResult) ImportResponse {
	resp := ImportResponse{Results: make([]ImportItem, len(results))}
	for i, res := range results {
		item := ImportItem{
			Index:  res.Index,
			Source: res.Source,
			Status: string(res.Status),
			Title:  res.Title,
			Error:  res.Error,
		}
		if res.AssetID != uuid.Nil {
			id := res.AssetID
			item.AssetID = &id
		}
		if res.Status == service.ItemDone {
			resp.Imported++
		} else {
			resp.Failed++
		}
		resp.Results[i] = item
	}
	return resp
}
