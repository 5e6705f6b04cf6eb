package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/hila-planner/internal/service"
)

// PolishedText is the polished description of an asset within a trip.
type PolishedText struct {
	AssetID openapi_types.UUID `json:"asset_id"`
	Text    string             `json:"text"`
}

// SetPolishedTextRequest is the body of PUT /trips/{tripId}/polish/{assetId}.
type SetPolishedTextRequest struct {
	Text string `json:"text"`
}

// PolishItem reports the outcome of polishing one asset of a day.
type PolishItem struct {
	AssetID openapi_types.UUID `json:"asset_id"`
	Status  string             `json:"status"`
	Text    string             `json:"text,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// PolishDayResponse is the body of POST /trips/{tripId}/days/{dayId}/polish.
type PolishDayResponse struct {
	Results []PolishItem `json:"results"`
	Done    int          `json:"done"`
	Failed  int          `json:"failed"`
}

// SetPolishedText handles PUT /trips/{tripId}/polish/{assetId}.
func (s *Server) SetPolishedText(w http.ResponseWriter, r *http.Request) {
	tripID, assetID, ok := tripAssetIDs(w, r)
	if !ok {
		return
	}
	var body SetPolishedTextRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.svc.Polish.Set(r.Context(), tripID, assetID, body.Text); err != nil {
		s.respondError(w, r, err, "trip or asset not found")
		return
	}
	writeJSON(w, http.StatusOK, PolishedText{AssetID: assetID, Text: body.Text})
}

// GetPolishedText handles GET /trips/{tripId}/polish/{assetId}.
// Returns 404 when no polished text is set; clients then fall back to the
// asset's own description.
func (s *Server) GetPolishedText(w http.ResponseWriter, r *http.Request) {
	tripID, assetID, ok := tripAssetIDs(w, r)
	if !ok {
		return
	}
	text, err := s.svc.Polish.Get(r.Context(), tripID, assetID)
	if err != nil {
		s.respondError(w, r, err, "polished text not found")
		return
	}
	writeJSON(w, http.StatusOK, PolishedText{AssetID: assetID, Text: text})
}

// ClearPolishedText handles DELETE /trips/{tripId}/polish/{assetId}.
func (s *Server) ClearPolishedText(w http.ResponseWriter, r *http.Request) {
	tripID, assetID, ok := tripAssetIDs(w, r)
	if !ok {
		return
	}
	if err := s.svc.Polish.Clear(r.Context(), tripID, assetID); err != nil {
		s.respondError(w, r, err, "polished text not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EnhanceAsset handles POST /trips/{tripId}/polish/{assetId}/enhance.
func (s *Server) EnhanceAsset(w http.ResponseWriter, r *http.Request) {
	tripID, assetID, ok := tripAssetIDs(w, r)
	if !ok {
		return
	}
	text, err := s.svc.Polish.PolishAsset(r.Context(), tripID, assetID)
	if err != nil {
		s.respondError(w, r, err, "trip or asset not found")
		return
	}
	writeJSON(w, http.StatusOK, PolishedText{AssetID: assetID, Text: text})
}

// PolishDay handles POST /trips/{tripId}/days/{dayId}/polish.
// Each asset of the day is polished on its own; failures are reported per item.
func (s *Server) PolishDay(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	dayID, ok := pathID(w, r, "dayId")
	if !ok {
		return
	}
	results, err := s.svc.Polish.PolishDay(r.Context(), tripID, dayID)
	if err != nil {
		s.respondError(w, r, err, "day not found")
		return
	}
	writeJSON(w, http.StatusOK, polishToResponse(results))
}

func tripAssetIDs(w http.ResponseWriter, r *http.Request) (tripID, assetID openapi_types.UUID, ok bool) {
	if tripID, ok = pathID(w, r, "tripId"); !ok {
		return
	}
	assetID, ok = pathID(w, r, "assetId")
	return
}

func polishToResponse(results []service.PolishResult) PolishDayResponse {
	resp := PolishDayResponse{Results: make([]PolishItem, len(results))}
	for i, res := range results {
		resp.Results[i] = PolishItem{
			AssetID: res.AssetID,
			Status:  string(res.Status),
			Text:    res.Text,
			Error:   res.Error,
		}
		if res.Status == service.ItemDone {
			resp.Done++
		} else {
			resp.Failed++
		}
	}
	return resp
}
