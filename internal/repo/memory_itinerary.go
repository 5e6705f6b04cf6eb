package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/hila-planner/internal/domain"
)

// memItineraryRepo keeps trips, days and activities in process memory.
// One mutex guards all three maps so cascades are observed atomically.
type memItineraryRepo struct {
	mu         sync.RWMutex
	trips      []domain.Trip // newest first
	days       map[uuid.UUID]domain.Day
	activities map[uuid.UUID]domain.Activity
}

// NewMemoryItineraryRepo returns an empty in-memory ItineraryRepo.
func NewMemoryItineraryRepo() ItineraryRepo {
	return &memItineraryRepo{
		days:       make(map[uuid.UUID]domain.Day),
		activities: make(map[uuid.UUID]domain.Activity),
	}
}

func (r *memItineraryRepo) CreateTrip(_ context.Context, trip domain.Trip, days []domain.Day) (domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tripIndex(trip.ID) >= 0 {
		return domain.Trip{}, fmt.Errorf("repo.memItineraryRepo.CreateTrip: duplicate id %s", trip.ID)
	}
	r.trips = append([]domain.Trip{trip}, r.trips...)
	for _, d := range days {
		r.days[d.ID] = d
	}
	return trip, nil
}

func (r *memItineraryRepo) GetTrip(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.tripIndex(id)
	if i < 0 {
		return domain.Trip{}, fmt.Errorf("repo.memItineraryRepo.GetTrip: %w", domain.ErrNotFound)
	}
	return r.trips[i], nil
}

func (r *memItineraryRepo) GetTripByToken(_ context.Context, token string) (domain.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if token != "" {
		for _, t := range r.trips {
			if t.ShareToken == token {
				return t, nil
			}
		}
	}
	return domain.Trip{}, fmt.Errorf("repo.memItineraryRepo.GetTripByToken: %w", domain.ErrNotFound)
}

func (r *memItineraryRepo) ListTripsPaged(_ context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start, end := p.Window(len(r.trips))
	out := append([]domain.Trip{}, r.trips[start:end]...)
	return out, int64(len(r.trips)), nil
}

func (r *memItineraryRepo) UpdateTrip(_ context.Context, trip domain.Trip, plan DayPlan) (domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.tripIndex(trip.ID)
	if i < 0 {
		return domain.Trip{}, fmt.Errorf("repo.memItineraryRepo.UpdateTrip: %w", domain.ErrNotFound)
	}
	stored := r.trips[i]
	trip.ShareToken = stored.ShareToken
	trip.CreatedAt = stored.CreatedAt
	r.trips[i] = trip

	if plan != nil {
		existing := r.daysOf(trip.ID)
		want := plan(existing)
		keep := make(map[uuid.UUID]bool, len(want))
		for _, d := range want {
			keep[d.ID] = true
			r.days[d.ID] = d
		}
		for _, d := range existing {
			if !keep[d.ID] {
				r.deleteDayLocked(d.ID)
			}
		}
	}
	return trip, nil
}

func (r *memItineraryRepo) DeleteTrip(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.tripIndex(id)
	if i < 0 {
		return fmt.Errorf("repo.memItineraryRepo.DeleteTrip: %w", domain.ErrNotFound)
	}
	r.trips = append(r.trips[:i], r.trips[i+1:]...)
	for _, d := range r.daysOf(id) {
		r.deleteDayLocked(d.ID)
	}
	return nil
}

func (r *memItineraryRepo) SetShareTokenIfEmpty(_ context.Context, tripID uuid.UUID, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.tripIndex(tripID)
	if i < 0 {
		return "", fmt.Errorf("repo.memItineraryRepo.SetShareTokenIfEmpty: %w", domain.ErrNotFound)
	}
	if r.trips[i].ShareToken == "" {
		r.trips[i].ShareToken = token
	}
	return r.trips[i].ShareToken, nil
}

func (r *memItineraryRepo) ClearShareToken(_ context.Context, tripID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.tripIndex(tripID)
	if i < 0 {
		return fmt.Errorf("repo.memItineraryRepo.ClearShareToken: %w", domain.ErrNotFound)
	}
	r.trips[i].ShareToken = ""
	return nil
}

func (r *memItineraryRepo) ListDays(_ context.Context, tripID uuid.UUID) ([]domain.Day, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.daysOf(tripID), nil
}

func (r *memItineraryRepo) GetDay(_ context.Context, dayID uuid.UUID) (domain.Day, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.days[dayID]
	if !ok {
		return domain.Day{}, fmt.Errorf("repo.memItineraryRepo.GetDay: %w", domain.ErrNotFound)
	}
	return d, nil
}

func (r *memItineraryRepo) ListActivities(_ context.Context, dayID uuid.UUID) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activitiesOf(dayID), nil
}

func (r *memItineraryRepo) AppendActivity(_ context.Context, activity domain.Activity) (domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.days[activity.DayID]; !ok {
		return domain.Activity{}, fmt.Errorf("repo.memItineraryRepo.AppendActivity: %w", domain.ErrNotFound)
	}
	activity.SortOrder = domain.NextSortOrder(r.activitiesOf(activity.DayID))
	r.activities[activity.ID] = activity
	return activity, nil
}

func (r *memItineraryRepo) DeleteActivity(_ context.Context, activityID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activityID]
	if !ok {
		return fmt.Errorf("repo.memItineraryRepo.DeleteActivity: %w", domain.ErrNotFound)
	}
	delete(r.activities, activityID)
	r.storeActivities(domain.Reorder(r.activitiesOf(a.DayID), nil))
	return nil
}

func (r *memItineraryRepo) ReorderActivities(_ context.Context, dayID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.days[dayID]; !ok {
		return nil, fmt.Errorf("repo.memItineraryRepo.ReorderActivities: %w", domain.ErrNotFound)
	}
	next := domain.Reorder(r.activitiesOf(dayID), orderedIDs)
	r.storeActivities(next)
	return next, nil
}

func (r *memItineraryRepo) MoveActivity(_ context.Context, dayID, activityID uuid.UUID, dir domain.Direction) ([]domain.Activity, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.days[dayID]; !ok {
		return nil, false, fmt.Errorf("repo.memItineraryRepo.MoveActivity: %w", domain.ErrNotFound)
	}
	if a, ok := r.activities[activityID]; !ok || a.DayID != dayID {
		return nil, false, fmt.Errorf("repo.memItineraryRepo.MoveActivity: %w", domain.ErrNotFound)
	}
	next, moved := domain.SwapWithNeighbour(r.activitiesOf(dayID), activityID, dir)
	if moved {
		r.storeActivities(next)
	}
	return next, moved, nil
}

func (r *memItineraryRepo) ReplaceActivities(_ context.Context, dayID uuid.UUID, acts []domain.Activity) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.days[dayID]; !ok {
		return nil, fmt.Errorf("repo.memItineraryRepo.ReplaceActivities: %w", domain.ErrNotFound)
	}
	for _, a := range r.activitiesOf(dayID) {
		delete(r.activities, a.ID)
	}
	for _, a := range acts {
		a.DayID = dayID
		r.activities[a.ID] = a
	}
	return r.activitiesOf(dayID), nil
}

// --- helpers (callers hold r.mu) ---------------------------------------------

func (r *memItineraryRepo) tripIndex(id uuid.UUID) int {
	for i, t := range r.trips {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (r *memItineraryRepo) daysOf(tripID uuid.UUID) []domain.Day {
	out := []domain.Day{}
	for _, d := range r.days {
		if d.TripID == tripID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out
}

// activitiesOf returns the day's activities sorted by sort order, ties
// broken by creation time so the order is deterministic.
func (r *memItineraryRepo) activitiesOf(dayID uuid.UUID) []domain.Activity {
	out := []domain.Activity{}
	for _, a := range r.activities {
		if a.DayID == dayID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *memItineraryRepo) storeActivities(acts []domain.Activity) {
	for _, a := range acts {
		r.activities[a.ID] = a
	}
}

func (r *memItineraryRepo) deleteDayLocked(dayID uuid.UUID) {
	delete(r.days, dayID)
	for id, a := range r.activities {
		if a.DayID == dayID {
			delete(r.activities, id)
		}
	}
}
