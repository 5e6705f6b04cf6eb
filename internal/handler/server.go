// Package handler implements the HTTP handlers for the Hila planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (asset.go, trip.go, day.go, etc.) but all share the same Server
// struct so they can access its dependencies. Routes wires them onto a chi
// router.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/geo"
	"github.com/pkordes/hila-planner/internal/service"
)

// The interfaces below are defined in the consumer package so handler tests
// can inject doubles without touching the repositories.

// AssetServicer defines the asset library operations the handlers depend on.
type AssetServicer interface {
	Add(ctx context.Context, asset domain.Asset) (domain.Asset, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Asset, error)
	List(ctx context.Context, filter domain.AssetFilter) ([]domain.Asset, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.AssetPatch) (domain.Asset, error)
	Remove(ctx context.Context, id uuid.UUID) error
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
}

// ImportServicer defines the bulk import operations.
type ImportServicer interface {
	ImportCandidates(ctx context.Context, candidates []domain.AssetCandidate) []service.ImportResult
	ImportURLs(ctx context.Context, text string) ([]service.ImportResult, error)
}

// TripServicer defines the trip, day, activity and share-link operations.
type TripServicer interface {
	AddTrip(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListTrips(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	UpdateTrip(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	RemoveTrip(ctx context.Context, id uuid.UUID) error
	AdvanceStatus(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	DaysForTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error)
	GetDay(ctx context.Context, dayID uuid.UUID) (domain.Day, error)
	ActivityCountForDay(ctx context.Context, dayID uuid.UUID) (int, error)
	ActivitiesForDay(ctx context.Context, dayID uuid.UUID) ([]domain.Activity, error)
	AddActivity(ctx context.Context, dayID, assetID uuid.UUID, startTime, note string) (domain.Activity, error)
	RemoveActivity(ctx context.Context, activityID uuid.UUID) error
	MoveActivity(ctx context.Context, dayID, activityID uuid.UUID, dir domain.Direction) ([]domain.Activity, bool, error)
	UpdateActivityOrder(ctx context.Context, dayID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Activity, error)

	GenerateShareToken(ctx context.Context, tripID uuid.UUID) (string, error)
	ShareURL(ctx context.Context, tripID uuid.UUID) (string, bool, error)
	RevokeShareToken(ctx context.Context, tripID uuid.UUID) error
}

// TemplateServicer defines the day-template operations.
type TemplateServicer interface {
	Save(ctx context.Context, dayID uuid.UUID, name, description string) (domain.DayTemplate, error)
	List(ctx context.Context) ([]domain.DayTemplate, error)
	Get(ctx context.Context, id uuid.UUID) (domain.DayTemplate, error)
	Remove(ctx context.Context, id uuid.UUID) error
	LoadToDay(ctx context.Context, templateID, dayID uuid.UUID) ([]domain.Activity, error)
}

// ViewServicer defines the read-only projections.
type ViewServicer interface {
	DayDistanceWarnings(ctx context.Context, dayID uuid.UUID) ([]geo.DistanceWarning, error)
	TripDistanceWarnings(ctx context.Context, tripID uuid.UUID) ([]service.DayWarnings, error)
	Timeline(ctx context.Context, tripID uuid.UUID) (domain.Timeline, error)
	ClientTimeline(ctx context.Context, token string) (domain.Timeline, error)
	TripCostSummary(ctx context.Context, tripID uuid.UUID) (domain.CostSummary, error)
}

// PolishServicer defines the polished-description overlay operations.
type PolishServicer interface {
	Set(ctx context.Context, tripID, assetID uuid.UUID, text string) error
	Get(ctx context.Context, tripID, assetID uuid.UUID) (string, error)
	Clear(ctx context.Context, tripID, assetID uuid.UUID) error
	PolishAsset(ctx context.Context, tripID, assetID uuid.UUID) (string, error)
	PolishDay(ctx context.Context, tripID, dayID uuid.UUID) ([]service.PolishResult, error)
}

// Services bundles the dependencies of Server. Tests set only the fields
// their routes use.
type Services struct {
	Assets    AssetServicer
	Imports   ImportServicer
	Trips     TripServicer
	Templates TemplateServicer
	Views     ViewServicer
	Polish    PolishServicer
}

// Server holds the handler dependencies.
type Server struct {
	svc     Services
	log     *slog.Logger
	openAPI []byte
}

// NewServer constructs the Server. openAPI is served verbatim at /openapi.yaml.
func NewServer(svc Services, log *slog.Logger, openAPI []byte) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, log: log, openAPI: openAPI}
}

// Routes returns a chi router with every endpoint registered.
// Middleware is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/assets", func(r chi.Router) {
		r.Get("/", s.ListAssets)
		r.Post("/", s.CreateAsset)
		r.Get("/filters", s.GetAssetFilters)
		r.Post("/import", s.ImportAssets)
		r.Post("/import/urls", s.ImportAssetURLs)
		r.Route("/{assetId}", func(r chi.Router) {
			r.Get("/", s.GetAsset)
			r.Patch("/", s.UpdateAsset)
			r.Delete("/", s.DeleteAsset)
		})
	})

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Route("/{tripId}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Patch("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)
			r.Post("/status/advance", s.AdvanceTripStatus)
			r.Get("/days", s.ListTripDays)
			r.Get("/timeline", s.GetTripTimeline)
			r.Get("/warnings", s.GetTripWarnings)
			r.Get("/summary", s.GetTripSummary)

			r.Post("/share", s.CreateShareLink)
			r.Get("/share", s.GetShareLink)
			r.Delete("/share", s.DeleteShareLink)

			r.Route("/polish/{assetId}", func(r chi.Router) {
				r.Put("/", s.SetPolishedText)
				r.Get("/", s.GetPolishedText)
				r.Delete("/", s.ClearPolishedText)
				r.Post("/enhance", s.EnhanceAsset)
			})
			r.Post("/days/{dayId}/polish", s.PolishDay)
		})
	})

	r.Route("/days/{dayId}", func(r chi.Router) {
		r.Get("/", s.GetDay)
		r.Get("/activities", s.ListActivities)
		r.Post("/activities", s.CreateActivity)
		r.Put("/activities/order", s.ReorderActivities)
		r.Post("/activities/{activityId}/move", s.MoveActivity)
		r.Get("/warnings", s.GetDayWarnings)
		r.Post("/template", s.SaveTemplate)
	})
	r.Delete("/activities/{activityId}", s.DeleteActivity)

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.ListTemplates)
		r.Route("/{templateId}", func(r chi.Router) {
			r.Get("/", s.GetTemplate)
			r.Delete("/", s.DeleteTemplate)
			r.Post("/load", s.LoadTemplate)
		})
	})

	r.Get("/shared/{token}", s.GetSharedTrip)

	return r
}

// Handler is Routes as a plain http.Handler.
func (s *Server) Handler() http.Handler {
	return s.Routes()
}
