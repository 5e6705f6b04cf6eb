package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/hila-planner/internal/domain"
)

// DayDetail is the body of GET /days/{dayId}.
type DayDetail struct {
	Day
	ActivityCount int `json:"activity_count"`
}

// Activity is the wire form of domain.Activity.
type Activity struct {
	ID         openapi_types.UUID `json:"id"`
	DayID      openapi_types.UUID `json:"day_id"`
	AssetID    openapi_types.UUID `json:"asset_id"`
	StartTime  string             `json:"start_time"`
	CustomNote string             `json:"custom_note"`
	SortOrder  int                `json:"sort_order"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ActivityList is the body of the endpoints that return a day's activities.
type ActivityList struct {
	Data []Activity `json:"data"`
}

// CreateActivityRequest is the body of POST /days/{dayId}/activities.
// start_time is free text ("09:00", "בוקר").
type CreateActivityRequest struct {
	AssetID    openapi_types.UUID `json:"asset_id"`
	StartTime  string             `json:"start_time"`
	CustomNote string             `json:"custom_note"`
}

// ReorderActivitiesRequest is the body of PUT /days/{dayId}/activities/order.
type ReorderActivitiesRequest struct {
	ActivityIDs []openapi_types.UUID `json:"activity_ids"`
}

// MoveActivityRequest is the body of POST /days/{dayId}/activities/{activityId}/move.
type MoveActivityRequest struct {
	Direction string `json:"direction"`
}

// MoveActivityResponse reports whether the activity moved and the day's
// resulting order. Moving past either end is not an error; moved is false.
type MoveActivityResponse struct {
	Moved bool       `json:"moved"`
	Data  []Activity `json:"data"`
}

// GetDay handles GET /days/{dayId}.
func (s *Server) GetDay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "dayId")
	if !ok {
		return
	}
	day, err := s.svc.Trips.GetDay(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "day not found")
		return
	}
	count, err := s.svc.Trips.ActivityCountForDay(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "day not found")
		return
	}
	writeJSON(w, http.StatusOK, DayDetail{Day: dayToResponse(day), ActivityCount: count})
}

// ListActivities handles GET /days/{dayId}/activities.
// An unknown day yields an empty list.
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "dayId")
	if !ok {
		return
	}
	acts, err := s.svc.Trips.ActivitiesForDay(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "day not found")
		return
	}
	writeJSON(w, http.StatusOK, activitiesToResponse(acts))
}

// CreateActivity handles POST /days/{dayId}/activities.
// The activity is appended after the day's last one.
func (s *Server) CreateActivity(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(w, r, "dayId")
	if !ok {
		return
	}
	var body CreateActivityRequest
	if !decodeBody(w, r, &body) {
		return
	}

	act, err := s.svc.Trips.AddActivity(r.Context(), dayID, body.AssetID, body.StartTime, body.CustomNote)
	if err != nil {
		s.respondError(w, r, err, "day not found")
		return
	}
	writeJSON(w, http.StatusCreated, activityToResponse(act))
}

// ReorderActivities handles PUT /days/{dayId}/activities/order.
// Listed activities come first in the given order; any the list leaves out
// keep their relative order after them.
func (s *Server) ReorderActivities(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(w, r, "dayId")
	if !ok {
		return
	}
	var body ReorderActivitiesRequest
	if !decodeBody(w, r, &body) {
		return
	}

	acts, err := s.svc.Trips.UpdateActivityOrder(r.Context(), dayID, body.ActivityIDs)
	if err != nil {
		s.respondError(w, r, err, "day not found")
		return
	}
	writeJSON(w, http.StatusOK, activitiesToResponse(acts))
}

// MoveActivity handles POST /days/{dayId}/activities/{activityId}/move.
func (s *Server) MoveActivity(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(w, r, "dayId")
	if !ok {
		return
	}
	activityID, ok := pathID(w, r, "activityId")
	if !ok {
		return
	}
	var body MoveActivityRequest
	if !decodeBody(w, r, &body) {
		return
	}
	dir, err := domain.ParseDirection(body.Direction)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}

	acts, moved, err := s.svc.Trips.MoveActivity(r.Context(), dayID, activityID, dir)
	if err != nil {
		s.respondError(w, r, err, "activity not found")
		return
	}
	writeJSON(w, http.StatusOK, MoveActivityResponse{Moved: moved, Data: activitiesToResponse(acts).Data})
}

// DeleteActivity handles DELETE /activities/{activityId}.
// The remaining activities of the day are renumbered 1..N.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "activityId")
	if !ok {
		return
	}
	if err := s.svc.Trips.RemoveActivity(r.Context(), id); err != nil {
		s.respondError(w, r, err, "activity not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func activityToResponse(a domain.Activity) Activity {
	return Activity{
		ID:         a.ID,
		DayID:      a.DayID,
		AssetID:    a.AssetID,
		StartTime:  a.StartTime,
		CustomNote: a.CustomNote,
		SortOrder:  a.SortOrder,
		CreatedAt:  a.CreatedAt,
	}
}

func activitiesToResponse(acts []domain.Activity) ActivityList {
	data := make([]Activity, len(acts))
	for i, a := range acts {
		data[i] = activityToResponse(a)
	}
	return ActivityList{Data: data}
}
