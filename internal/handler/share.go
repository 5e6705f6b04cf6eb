package handler

import "net/http"

// ShareLink is the body returned by the share endpoints.
type ShareLink struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// CreateShareLink handles POST /trips/{tripId}/share.
// Repeated calls return the same link until it is revoked.
func (s *Server) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	token, err := s.svc.Trips.GenerateShareToken(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	url, _, err := s.svc.Trips.ShareURL(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, ShareLink{Token: token, URL: url})
}

// GetShareLink handles GET /trips/{tripId}/share.
// Returns 404 when the trip exists but has not been shared.
func (s *Server) GetShareLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	trip, err := s.svc.Trips.GetTrip(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	url, shared, err := s.svc.Trips.ShareURL(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	if !shared {
		writeJSON(w, http.StatusNotFound, notFoundBody("trip is not shared"))
		return
	}
	writeJSON(w, http.StatusOK, ShareLink{Token: trip.ShareToken, URL: url})
}

// DeleteShareLink handles DELETE /trips/{tripId}/share.
// The old link stops resolving immediately.
func (s *Server) DeleteShareLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	if err := s.svc.Trips.RevokeShareToken(r.Context(), id); err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
