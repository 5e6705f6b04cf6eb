package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/repo"
)

// TripService implements business logic for trips, their days, the
// activities scheduled inside each day, and share links.
type TripService struct {
	trips     repo.ItineraryRepo
	overlay   repo.PolishRepo
	ids       domain.IDGenerator
	now       domain.Clock
	newToken  TokenGenerator
	shareBase string
}

// TripOption customises a TripService.
type TripOption func(*TripService)

// WithShareBaseURL sets the host prefix of generated share links.
func WithShareBaseURL(base string) TripOption {
	return func(s *TripService) {
		if base != "" {
			s.shareBase = base
		}
	}
}

// WithTokenGenerator replaces the crypto-random share token generator.
func WithTokenGenerator(gen TokenGenerator) TripOption {
	return func(s *TripService) { s.newToken = gen }
}

// WithPolishOverlay makes RemoveTrip also drop the trip's polished texts.
func WithPolishOverlay(overlay repo.PolishRepo) TripOption {
	return func(s *TripService) { s.overlay = overlay }
}

// NewTripService constructs a TripService backed by the provided ItineraryRepo.
func NewTripService(trips repo.ItineraryRepo, ids domain.IDGenerator, now domain.Clock, opts ...TripOption) *TripService {
	s := &TripService{
		trips:     trips,
		ids:       ids,
		now:       now,
		newToken:  NewShareToken,
		shareBase: DefaultShareBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---- trips -----------------------------------------------------------------

// AddTrip validates the trip, then stores it in draft status together with
// one day per calendar date of its inclusive range.
// Returns domain.ErrValidation (or domain.ErrInvalidDateRange) for bad input.
func (s *TripService) AddTrip(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.ClientName = strings.TrimSpace(trip.ClientName)
	trip.StartDate = domain.DateOf(trip.StartDate)
	trip.EndDate = domain.DateOf(trip.EndDate)
	trip.Status = domain.TripDraft
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}

	now := s.now()
	trip.ID = s.ids.NewID()
	trip.ShareToken = ""
	trip.CreatedAt = now
	trip.UpdatedAt = now
	days := domain.BuildDays(trip.ID, trip.StartDate, trip.EndDate, s.ids)

	result, err := s.trips.CreateTrip(ctx, trip, days)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AddTrip: %w", err)
	}
	return result, nil
}

// GetTrip returns a single trip.
// Returns domain.ErrNotFound if it does not exist.
func (s *TripService) GetTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.trips.GetTrip(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetTrip: %w", err)
	}
	return result, nil
}

// ListTrips returns one page of trips, newest first, and the total count.
func (s *TripService) ListTrips(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.ListTripsPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListTrips: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// UpdateTrip merges patch into the stored trip. When the date range changes
// the trip's days are regenerated in the same repository operation: days
// still inside the range keep their activities and are renumbered, days
// outside it are removed with their activities, new dates get empty days.
// Returns domain.ErrNotFound if the trip does not exist and
// domain.ErrValidation for an invalid result.
func (s *TripService) UpdateTrip(ctx context.Context, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	current, err := s.trips.GetTrip(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateTrip: %w", err)
	}
	next := patch.Apply(current)
	next.ClientName = strings.TrimSpace(next.ClientName)
	if err := validateTrip(next); err != nil {
		return domain.Trip{}, err
	}
	next.UpdatedAt = s.now()

	var plan repo.DayPlan
	if !next.StartDate.Equal(current.StartDate) || !next.EndDate.Equal(current.EndDate) {
		plan = func(existing []domain.Day) []domain.Day {
			kept, _ := domain.ResizeDays(next.ID, existing, next.StartDate, next.EndDate, s.ids)
			return kept
		}
	}

	result, err := s.trips.UpdateTrip(ctx, next, plan)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateTrip: %w", err)
	}
	return result, nil
}

// RemoveTrip deletes a trip with its days and activities, and its polished
// texts when an overlay is configured.
// Returns domain.ErrNotFound if it does not exist.
func (s *TripService) RemoveTrip(ctx context.Context, id uuid.UUID) error {
	if err := s.trips.DeleteTrip(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.RemoveTrip: %w", err)
	}
	if s.overlay != nil {
		if err := s.overlay.ClearTrip(ctx, id); err != nil {
			return fmt.Errorf("service.TripService.RemoveTrip: clear overlay: %w", err)
		}
	}
	return nil
}

// AdvanceStatus moves the trip one step along draft → proposal → confirmed
// and back to draft.
func (s *TripService) AdvanceStatus(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	current, err := s.trips.GetTrip(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AdvanceStatus: %w", err)
	}
	current.Status = current.Status.Next()
	current.UpdatedAt = s.now()

	result, err := s.trips.UpdateTrip(ctx, current, nil)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.AdvanceStatus: %w", err)
	}
	return result, nil
}

// validateTrip enforces the rules shared by AddTrip and UpdateTrip.
//   - ClientName must be non-empty.
//   - Status must be one of draft, proposal, confirmed.
//   - The date range must satisfy domain.ValidateDateRange.
func validateTrip(t domain.Trip) error {
	if t.ClientName == "" {
		return fmt.Errorf("%w: client_name is required", domain.ErrValidation)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, t.Status)
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	return domain.ValidateDateRange(t.StartDate, t.EndDate)
}

// ---- days ------------------------------------------------------------------

// DaysForTrip returns the trip's days ordered by day number.
// An unknown trip yields an empty slice.
func (s *TripService) DaysForTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error) {
	days, err := s.trips.ListDays(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.DaysForTrip: %w", err)
	}
	if days == nil {
		return []domain.Day{}, nil
	}
	return days, nil
}

// GetDay returns a single day.
// Returns domain.ErrNotFound if it does not exist.
func (s *TripService) GetDay(ctx context.Context, dayID uuid.UUID) (domain.Day, error) {
	result, err := s.trips.GetDay(ctx, dayID)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.TripService.GetDay: %w", err)
	}
	return result, nil
}

// ---- activities ------------------------------------------------------------

// ActivitiesForDay returns the day's activities ordered by sort order.
// An unknown day yields an empty slice.
func (s *TripService) ActivitiesForDay(ctx context.Context, dayID uuid.UUID) ([]domain.Activity, error) {
	acts, err := s.trips.ListActivities(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ActivitiesForDay: %w", err)
	}
	if acts == nil {
		return []domain.Activity{}, nil
	}
	return acts, nil
}

// ActivityCountForDay returns the number of activities in the day.
func (s *TripService) ActivityCountForDay(ctx context.Context, dayID uuid.UUID) (int, error) {
	acts, err := s.trips.ListActivities(ctx, dayID)
	if err != nil {
		return 0, fmt.Errorf("service.TripService.ActivityCountForDay: %w", err)
	}
	return len(acts), nil
}

// AddActivity appends an activity referencing assetID to the end of the day.
// The asset is a weak reference and is not required to exist.
// Returns domain.ErrNotFound if the day does not exist.
func (s *TripService) AddActivity(ctx context.Context, dayID, assetID uuid.UUID, startTime, note string) (domain.Activity, error) {
	if assetID == uuid.Nil {
		return domain.Activity{}, fmt.Errorf("%w: asset_id is required", domain.ErrValidation)
	}
	act := domain.Activity{
		ID:         s.ids.NewID(),
		DayID:      dayID,
		AssetID:    assetID,
		StartTime:  strings.TrimSpace(startTime),
		CustomNote: note,
		CreatedAt:  s.now(),
	}
	result, err := s.trips.AppendActivity(ctx, act)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.TripService.AddActivity: %w", err)
	}
	return result, nil
}

// RemoveActivity deletes an activity; the rest of its day is renumbered.
// Returns domain.ErrNotFound if it does not exist.
func (s *TripService) RemoveActivity(ctx context.Context, activityID uuid.UUID) error {
	if err := s.trips.DeleteActivity(ctx, activityID); err != nil {
		return fmt.Errorf("service.TripService.RemoveActivity: %w", err)
	}
	return nil
}

// MoveActivity swaps the activity with its neighbour in dir and returns the
// day's activities afterwards. moved is false, and nothing changes, when
// the activity is already first (up) or last (down).
// Returns domain.ErrNotFound if the day does not exist or the activity is
// not part of it.
func (s *TripService) MoveActivity(ctx context.Context, dayID, activityID uuid.UUID, dir domain.Direction) ([]domain.Activity, bool, error) {
	acts, moved, err := s.trips.MoveActivity(ctx, dayID, activityID, dir)
	if err != nil {
		return nil, false, fmt.Errorf("service.TripService.MoveActivity: %w", err)
	}
	return acts, moved, nil
}

// UpdateActivityOrder renumbers the day's activities to follow orderedIDs.
// IDs that are not part of the day are ignored; activities left out keep
// their relative order after the listed ones.
// Returns domain.ErrNotFound if the day does not exist.
func (s *TripService) UpdateActivityOrder(ctx context.Context, dayID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Activity, error) {
	acts, err := s.trips.ReorderActivities(ctx, dayID, orderedIDs)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.UpdateActivityOrder: %w", err)
	}
	return acts, nil
}

// ---- share links -----------------------------------------------------------

// GenerateShareToken returns the trip's share token, creating one if the
// trip has none. Calling it again returns the same token.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) GenerateShareToken(ctx context.Context, tripID uuid.UUID) (string, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return "", fmt.Errorf("service.TripService.GenerateShareToken: %w", err)
	}
	if trip.ShareToken != "" {
		return trip.ShareToken, nil
	}
	token, err := s.newToken()
	if err != nil {
		return "", fmt.Errorf("service.TripService.GenerateShareToken: %w", err)
	}
	// A concurrent caller may have won the race; the repo returns its token.
	got, err := s.trips.SetShareTokenIfEmpty(ctx, tripID, token)
	if err != nil {
		return "", fmt.Errorf("service.TripService.GenerateShareToken: %w", err)
	}
	return got, nil
}

// ShareURL returns the client link of the trip. ok is false when the trip
// has no token.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) ShareURL(ctx context.Context, tripID uuid.UUID) (url string, ok bool, err error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return "", false, fmt.Errorf("service.TripService.ShareURL: %w", err)
	}
	if trip.ShareToken == "" {
		return "", false, nil
	}
	return ShareURL(s.shareBase, trip.ShareToken), true, nil
}

// RevokeShareToken clears the trip's token. The old link stops resolving.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) RevokeShareToken(ctx context.Context, tripID uuid.UUID) error {
	if err := s.trips.ClearShareToken(ctx, tripID); err != nil {
		return fmt.Errorf("service.TripService.RevokeShareToken: %w", err)
	}
	return nil
}

// TripByToken resolves a shared trip.
// Returns domain.ErrNotFound if no trip currently holds token.
func (s *TripService) TripByToken(ctx context.Context, token string) (domain.Trip, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Trip{}, fmt.Errorf("service.TripService.TripByToken: %w", domain.ErrNotFound)
	}
	result, err := s.trips.GetTripByToken(ctx, token)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.TripByToken: %w", err)
	}
	return result, nil
}
