package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/geo"
	"github.com/pkordes/hila-planner/internal/service"
)

// DistanceWarning flags two consecutive activities of a day that are far apart.
type DistanceWarning struct {
	FromAssetID   openapi_types.UUID `json:"from_asset_id"`
	ToAssetID     openapi_types.UUID `json:"to_asset_id"`
	FromTitle     string             `json:"from_title"`
	ToTitle       string             `json:"to_title"`
	DistanceKm    int                `json:"distance_km"`
	DistanceLabel string             `json:"distance_label"`
	FromIndex     int                `json:"from_index"`
	ToIndex       int                `json:"to_index"`
}

// DayWarningList is the body of GET /days/{dayId}/warnings.
type DayWarningList struct {
	Data []DistanceWarning `json:"data"`
}

// DayWarnings groups the warnings of one day of a trip.
type DayWarnings struct {
	Day      Day               `json:"day"`
	Warnings []DistanceWarning `json:"warnings"`
}

// TripWarningList is the body of GET /trips/{tripId}/warnings. Only days
// with at least one warning are listed.
type TripWarningList struct {
	Data []DayWarnings `json:"data"`
}

// ScheduledAsset is an activity with the asset it references.
type ScheduledAsset struct {
	Activity Activity `json:"activity"`
	Asset    Asset    `json:"asset"`
}

// TimelineDay is one day of the planner timeline.
type TimelineDay struct {
	Day        Day              `json:"day"`
	Activities []ScheduledAsset `json:"activities"`
}

// Timeline is the body of GET /trips/{tripId}/timeline.
type Timeline struct {
	Trip            Trip          `json:"trip"`
	Days            []TimelineDay `json:"days"`
	TotalDays       int           `json:"total_days"`
	TotalActivities int           `json:"total_activities"`
}

// ClientAsset is the part of an asset a client may see: no prices, margins
// or expert notes.
type ClientAsset struct {
	ID            openapi_types.UUID `json:"id"`
	Type          string             `json:"type"`
	TypeLabel     string             `json:"type_label"`
	Country       string             `json:"country"`
	City          string             `json:"city"`
	Title         string             `json:"title"`
	DescriptionHe string             `json:"description_he"`
	Images        []string           `json:"images"`
	Phone         *string            `json:"phone,omitempty"`
	Address       *string            `json:"address,omitempty"`
	Lat           *float64           `json:"lat,omitempty"`
	Lng           *float64           `json:"lng,omitempty"`
}

// ClientActivity is one entry of a shared day.
type ClientActivity struct {
	StartTime  string      `json:"start_time"`
	CustomNote string      `json:"custom_note"`
	SortOrder  int         `json:"sort_order"`
	Asset      ClientAsset `json:"asset"`
}

// ClientDay is one day of a shared timeline.
type ClientDay struct {
	DayNumber  int                `json:"day_number"`
	Date       openapi_types.Date `json:"date"`
	Activities []ClientActivity   `json:"activities"`
}

// ClientTimeline is the body of GET /shared/{token}.
type ClientTimeline struct {
	ClientName      string             `json:"client_name"`
	StartDate       openapi_types.Date `json:"start_date"`
	EndDate         openapi_types.Date `json:"end_date"`
	CoverImage      *string            `json:"cover_image,omitempty"`
	Days            []ClientDay        `json:"days"`
	TotalDays       int                `json:"total_days"`
	TotalActivities int                `json:"total_activities"`
}

// CostSummary is the body of GET /trips/{tripId}/summary.
type CostSummary struct {
	TripID        openapi_types.UUID `json:"trip_id"`
	Activities    int                `json:"activities"`
	Unresolved    int                `json:"unresolved"`
	TotalCost     float64            `json:"total_cost"`
	TotalSelling  float64            `json:"total_selling"`
	Profit        float64            `json:"profit"`
	MarginPercent int                `json:"margin_percent"`
}

// GetDayWarnings handles GET /days/{dayId}/warnings.
func (s *Server) GetDayWarnings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "dayId")
	if !ok {
		return
	}
	warnings, err := s.svc.Views.DayDistanceWarnings(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "day not found")
		return
	}
	writeJSON(w, http.StatusOK, DayWarningList{Data: warningsToResponse(warnings)})
}

// GetTripWarnings handles GET /trips/{tripId}/warnings.
func (s *Server) GetTripWarnings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	days, err := s.svc.Views.TripDistanceWarnings(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, TripWarningList{Data: dayWarningsToResponse(days)})
}

// GetTripTimeline handles GET /trips/{tripId}/timeline.
func (s *Server) GetTripTimeline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	tl, err := s.svc.Views.Timeline(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, timelineToResponse(tl))
}

// GetTripSummary handles GET /trips/{tripId}/summary.
func (s *Server) GetTripSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	sum, err := s.svc.Views.TripCostSummary(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, CostSummary{
		TripID:        sum.TripID,
		Activities:    sum.Activities,
		Unresolved:    sum.Unresolved,
		TotalCost:     sum.TotalCost,
		TotalSelling:  sum.TotalSelling,
		Profit:        sum.Profit,
		MarginPercent: sum.MarginPercent,
	})
}

// GetSharedTrip handles GET /shared/{token}: the client view of a shared trip.
func (s *Server) GetSharedTrip(w http.ResponseWriter, r *http.Request) {
	tl, err := s.svc.Views.ClientTimeline(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.respondError(w, r, err, "shared trip not found")
		return
	}
	writeJSON(w, http.StatusOK, clientTimelineToResponse(tl))
}

// --- mapping helpers --------------------------------------------------------

func warningsToResponse(warnings []geo.DistanceWarning) []DistanceWarning {
	out := make([]DistanceWarning, len(warnings))
	for i, dw := range warnings {
		out[i] = DistanceWarning{
			FromAssetID:   dw.FromAssetID,
			ToAssetID:     dw.ToAssetID,
			FromTitle:     dw.FromTitle,
			ToTitle:       dw.ToTitle,
			DistanceKm:    dw.DistanceKm,
			DistanceLabel: geo.FormatDistance(float64(dw.DistanceKm)),
			FromIndex:     dw.FromIndex,
			ToIndex:       dw.ToIndex,
		}
	}
	return out
}

func dayWarningsToResponse(days []service.DayWarnings) []DayWarnings {
	out := make([]DayWarnings, len(days))
	for i, d := range days {
		out[i] = DayWarnings{Day: dayToResponse(d.Day), Warnings: warningsToResponse(d.Warnings)}
	}
	return out
}

func timelineToResponse(tl domain.Timeline) Timeline {
	resp := Timeline{
		Trip:            tripToResponse(tl.Trip),
		Days:            make([]TimelineDay, len(tl.Days)),
		TotalDays:       tl.TotalDays,
		TotalActivities: tl.TotalActivities,
	}
	for i, d := range tl.Days {
		day := TimelineDay{Day: dayToResponse(d.Day), Activities: make([]ScheduledAsset, len(d.Activities))}
		for j, sa := range d.Activities {
			day.Activities[j] = ScheduledAsset{
				Activity: activityToResponse(sa.Activity),
				Asset:    assetToResponse(sa.Asset),
			}
		}
		resp.Days[i] = day
	}
	return resp
}

func clientTimelineToResponse(tl domain.Timeline) ClientTimeline {
	resp := ClientTimeline{
		ClientName:      tl.Trip.ClientName,
		StartDate:       openapi_types.Date{Time: tl.Trip.StartDate},
		EndDate:         openapi_types.Date{Time: tl.Trip.EndDate},
		Days:            make([]ClientDay, len(tl.Days)),
		TotalDays:       tl.TotalDays,
		TotalActivities: tl.TotalActivities,
	}
	if tl.Trip.CoverImage != "" {
		resp.CoverImage = &tl.Trip.CoverImage
	}
	for i, d := range tl.Days {
		day := ClientDay{
			DayNumber:  d.Day.DayNumber,
			Date:       openapi_types.Date{Time: d.Day.Date},
			Activities: make([]ClientActivity, len(d.Activities)),
		}
		for j, sa := range d.Activities {
			day.Activities[j] = ClientActivity{
				StartTime:  sa.Activity.StartTime,
				CustomNote: sa.Activity.CustomNote,
				SortOrder:  sa.Activity.SortOrder,
				Asset:      assetToClient(sa.Asset),
			}
		}
		resp.Days[i] = day
	}
	return resp
}

func assetToClient(a domain.Asset) ClientAsset {
	resp := ClientAsset{
		ID:            a.ID,
		Type:          string(a.Type),
		TypeLabel:     a.Type.Label(),
		Country:       a.Country,
		City:          a.City,
		Title:         a.Title,
		DescriptionHe: a.DescriptionHe,
		Images:        nonNil(a.Images),
		Lat:           a.Lat,
		Lng:           a.Lng,
	}
	if a.Phone != "" {
		resp.Phone = &a.Phone
	}
	if a.Address != "" {
		resp.Address = &a.Address
	}
	return resp
}
