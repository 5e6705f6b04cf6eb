package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/geo"
	"github.com/pkordes/hila-planner/internal/repo"
)

// DayWarnings groups the distance warnings of one day.
type DayWarnings struct {
	Day      domain.Day
	Warnings []geo.DistanceWarning
}

// ViewService computes read-only projections over trips and assets.
// It never writes.
type ViewService struct {
	assets repo.AssetRepo
	trips  repo.ItineraryRepo
	polish repo.PolishRepo
}

// NewViewService constructs a ViewService.
func NewViewService(assets repo.AssetRepo, trips repo.ItineraryRepo, polish repo.PolishRepo) *ViewService {
	return &ViewService{assets: assets, trips: trips, polish: polish}
}

// DayDistanceWarnings returns the consecutive legs of the day longer than
// geo.WarningThresholdKm. An unknown day yields an empty slice.
func (s *ViewService) DayDistanceWarnings(ctx context.Context, dayID uuid.UUID) ([]geo.DistanceWarning, error) {
	acts, err := s.trips.ListActivities(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("service.ViewService.DayDistanceWarnings: %w", err)
	}
	resolved, err := s.resolveAssets(ctx, acts)
	if err != nil {
		return nil, fmt.Errorf("service.ViewService.DayDistanceWarnings: %w", err)
	}
	return geo.CheckDayDistances(acts, resolved.lookup), nil
}

// TripDistanceWarnings returns, in day order, every day of the trip that
// has at least one distance warning.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *ViewService) TripDistanceWarnings(ctx context.Context, tripID uuid.UUID) ([]DayWarnings, error) {
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.ViewService.TripDistanceWarnings: %w", err)
	}
	days, err := s.trips.ListDays(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ViewService.TripDistanceWarnings: %w", err)
	}
	out := []DayWarnings{}
	for _, d := range days {
		warnings, err := s.DayDistanceWarnings(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		if len(warnings) > 0 {
			out = append(out, DayWarnings{Day: d, Warnings: warnings})
		}
	}
	return out, nil
}

// Timeline builds the client-facing projection of a trip: days in order,
// each with its activities joined to their assets. Activities whose asset
// no longer exists are dropped, and so are days left with none.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *ViewService) Timeline(ctx context.Context, tripID uuid.UUID) (domain.Timeline, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return domain.Timeline{}, fmt.Errorf("service.ViewService.Timeline: %w", err)
	}
	tl, err := s.timeline(ctx, trip)
	if err != nil {
		return domain.Timeline{}, fmt.Errorf("service.ViewService.Timeline: %w", err)
	}
	return tl, nil
}

// ClientTimeline resolves a trip by share token and builds its timeline.
// Asset descriptions are replaced by the trip's polished text where set.
// Returns domain.ErrNotFound if the token does not resolve.
func (s *ViewService) ClientTimeline(ctx context.Context, token string) (domain.Timeline, error) {
	if token == "" {
		return domain.Timeline{}, fmt.Errorf("service.ViewService.ClientTimeline: %w", domain.ErrNotFound)
	}
	trip, err := s.trips.GetTripByToken(ctx, token)
	if err != nil {
		return domain.Timeline{}, fmt.Errorf("service.ViewService.ClientTimeline: %w", err)
	}
	tl, err := s.timeline(ctx, trip)
	if err != nil {
		return domain.Timeline{}, fmt.Errorf("service.ViewService.ClientTimeline: %w", err)
	}

	overlay, err := s.polish.ListForTrip(ctx, trip.ID)
	if err != nil {
		return domain.Timeline{}, fmt.Errorf("service.ViewService.ClientTimeline: %w", err)
	}
	for i := range tl.Days {
		for j := range tl.Days[i].Activities {
			a := &tl.Days[i].Activities[j].Asset
			if text, ok := overlay[a.ID]; ok {
				a.DescriptionHe = text
			}
		}
	}
	return tl, nil
}

// TripCostSummary totals cost and selling prices over the trip's activities
// whose asset still exists. An asset scheduled twice counts twice.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *ViewService) TripCostSummary(ctx context.Context, tripID uuid.UUID) (domain.CostSummary, error) {
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return domain.CostSummary{}, fmt.Errorf("service.ViewService.TripCostSummary: %w", err)
	}
	days, err := s.trips.ListDays(ctx, tripID)
	if err != nil {
		return domain.CostSummary{}, fmt.Errorf("service.ViewService.TripCostSummary: %w", err)
	}

	sum := domain.CostSummary{TripID: tripID}
	for _, d := range days {
		acts, err := s.trips.ListActivities(ctx, d.ID)
		if err != nil {
			return domain.CostSummary{}, fmt.Errorf("service.ViewService.TripCostSummary: %w", err)
		}
		resolved, err := s.resolveAssets(ctx, acts)
		if err != nil {
			return domain.CostSummary{}, fmt.Errorf("service.ViewService.TripCostSummary: %w", err)
		}
		for _, act := range acts {
			asset, ok := resolved[act.AssetID]
			if !ok {
				sum.Unresolved++
				continue
			}
			sum.Activities++
			sum.TotalCost += asset.CostPrice
			sum.TotalSelling += asset.SellingPrice
		}
	}
	sum.Profit = sum.TotalSelling - sum.TotalCost
	sum.MarginPercent = domain.MarginPercent(sum.TotalCost, sum.TotalSelling)
	return sum, nil
}

func (s *ViewService) timeline(ctx context.Context, trip domain.Trip) (domain.Timeline, error) {
	days, err := s.trips.ListDays(ctx, trip.ID)
	if err != nil {
		return domain.Timeline{}, err
	}
	tl := domain.Timeline{Trip: trip, Days: []domain.TimelineDay{}}
	for _, d := range days {
		acts, err := s.trips.ListActivities(ctx, d.ID)
		if err != nil {
			return domain.Timeline{}, err
		}
		resolved, err := s.resolveAssets(ctx, acts)
		if err != nil {
			return domain.Timeline{}, err
		}
		var scheduled []domain.ScheduledAsset
		for _, act := range acts {
			if asset, ok := resolved[act.AssetID]; ok {
				scheduled = append(scheduled, domain.ScheduledAsset{Activity: act, Asset: asset})
			}
		}
		if len(scheduled) == 0 {
			continue
		}
		tl.Days = append(tl.Days, domain.TimelineDay{Day: d, Activities: scheduled})
		tl.TotalActivities += len(scheduled)
	}
	tl.TotalDays = len(tl.Days)
	return tl, nil
}

// assetSet holds the assets that resolved for a set of activities.
type assetSet map[uuid.UUID]domain.Asset

func (m assetSet) lookup(id uuid.UUID) (domain.Asset, bool) {
	a, ok := m[id]
	return a, ok
}

// resolveAssets loads the assets referenced by acts. Missing assets are
// left out of the result; any other repo error is returned.
func (s *ViewService) resolveAssets(ctx context.Context, acts []domain.Activity) (assetSet, error) {
	out := make(assetSet, len(acts))
	for _, act := range acts {
		if _, seen := out[act.AssetID]; seen {
			continue
		}
		a, err := s.assets.GetByID(ctx, act.AssetID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[act.AssetID] = a
	}
	return out, nil
}
