package handler

import (
	"net/http"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/hila-planner/internal/domain"
)

// Trip is the wire form of domain.Trip.
type Trip struct {
	ID          openapi_types.UUID `json:"id"`
	ClientName  string             `json:"client_name"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	DayCount    int                `json:"day_count"`
	Status      string             `json:"status"`
	StatusLabel string             `json:"status_label"`
	CoverImage  *string            `json:"cover_image,omitempty"`
	ShareToken  *string            `json:"share_token,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreateTripRequest is the body of POST /trips. New trips always start as drafts.
type CreateTripRequest struct {
	ClientName string             `json:"client_name"`
	StartDate  openapi_types.Date `json:"start_date"`
	EndDate    openapi_types.Date `json:"end_date"`
	CoverImage string             `json:"cover_image"`
}

// UpdateTripRequest is the body of PATCH /trips/{tripId}. Changing either
// date regenerates the trip's days.
type UpdateTripRequest struct {
	ClientName *string             `json:"client_name"`
	StartDate  *openapi_types.Date `json:"start_date"`
	EndDate    *openapi_types.Date `json:"end_date"`
	Status     *string             `json:"status"`
	CoverImage *string             `json:"cover_image"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Day is the wire form of domain.Day.
type Day struct {
	ID        openapi_types.UUID `json:"id"`
	TripID    openapi_types.UUID `json:"trip_id"`
	DayNumber int                `json:"day_number"`
	Date      openapi_types.Date `json:"date"`
}

// DayList is the body of GET /trips/{tripId}/days.
type DayList struct {
	Data []Day `json:"data"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.svc.Trips.AddTrip(r.Context(), domain.Trip{
		ClientName: body.ClientName,
		StartDate:  body.StartDate.Time,
		EndDate:    body.EndDate.Time,
		CoverImage: body.CoverImage,
	})
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	params := domain.NewPaginationParams(page, limit)

	trips, total, err := s.svc.Trips.ListTrips(r.Context(), params)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	trip, err := s.svc.Trips.GetTrip(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PATCH /trips/{tripId}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.svc.Trips.UpdateTrip(r.Context(), id, requestToTripPatch(body))
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	if err := s.svc.Trips.RemoveTrip(r.Context(), id); err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdvanceTripStatus handles POST /trips/{tripId}/status/advance.
func (s *Server) AdvanceTripStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	trip, err := s.svc.Trips.AdvanceStatus(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// ListTripDays handles GET /trips/{tripId}/days.
// An unknown trip yields an empty list.
func (s *Server) ListTripDays(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	days, err := s.svc.Trips.DaysForTrip(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	data := make([]Day, len(days))
	for i, d := range days {
		data[i] = dayToResponse(d)
	}
	writeJSON(w, http.StatusOK, DayList{Data: data})
}

// --- mapping helpers --------------------------------------------------------

// queryInt parses an optional integer query parameter. On a malformed value
// it writes a 422 and returns false.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(name+" must be an integer"))
		return nil, false
	}
	return &n, true
}

func requestToTripPatch(body UpdateTripRequest) domain.TripPatch {
	p := domain.TripPatch{
		ClientName: body.ClientName,
		CoverImage: body.CoverImage,
	}
	if body.StartDate != nil {
		sd := body.StartDate.Time
		p.StartDate = &sd
	}
	if body.EndDate != nil {
		ed := body.EndDate.Time
		p.EndDate = &ed
	}
	if body.Status != nil {
		st := domain.TripStatus(*body.Status)
		p.Status = &st
	}
	return p
}

// tripToResponse converts a domain.Trip into its wire form.
func tripToResponse(t domain.Trip) Trip {
	resp := Trip{
		ID:          t.ID,
		ClientName:  t.ClientName,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		DayCount:    len(domain.DayDates(t.StartDate, t.EndDate)),
		Status:      string(t.Status),
		StatusLabel: t.Status.Label(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.CoverImage != "" {
		resp.CoverImage = &t.CoverImage
	}
	if t.ShareToken != "" {
		resp.ShareToken = &t.ShareToken
	}
	return resp
}

func dayToResponse(d domain.Day) Day {
	return Day{
		ID:        d.ID,
		TripID:    d.TripID,
		DayNumber: d.DayNumber,
		Date:      openapi_types.Date{Time: d.Date},
	}
}
