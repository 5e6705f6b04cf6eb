package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/repo"
)

// ItemStatus is the outcome of one item of a batch operation.
type ItemStatus string

const (
	ItemDone  ItemStatus = "done"
	ItemError ItemStatus = "error"
)

// Enhancer rewrites an asset description into client-facing marketing text.
type Enhancer interface {
	Enhance(ctx context.Context, text string, assetType domain.AssetType, title string) (string, error)
}

// IdentityEnhancer returns the text unchanged, or the title when the text
// is empty. It stands in for an external text-generation service.
type IdentityEnhancer struct{}

// Enhance implements Enhancer.
func (IdentityEnhancer) Enhance(_ context.Context, text string, _ domain.AssetType, title string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return title, nil
	}
	return text, nil
}

// PolishResult reports the outcome of polishing one asset of a day.
type PolishResult struct {
	AssetID uuid.UUID
	Status  ItemStatus
	Text    string
	Error   string
}

// PolishService manages the per-trip overlay of polished asset descriptions.
// The overlay is shown in the client timeline and never touches the Asset
// record.
type PolishService struct {
	assets   repo.AssetRepo
	trips    repo.ItineraryRepo
	overlay  repo.PolishRepo
	enhancer Enhancer
	limit    int
	log      *slog.Logger
}

// NewPolishService constructs a PolishService. limit bounds how many
// enhancements PolishDay runs at once; values below 1 mean 1.
func NewPolishService(assets repo.AssetRepo, trips repo.ItineraryRepo, overlay repo.PolishRepo,
	enhancer Enhancer, limit int, log *slog.Logger) *PolishService {
	if limit < 1 {
		limit = 1
	}
	return &PolishService{
		assets:   assets,
		trips:    trips,
		overlay:  overlay,
		enhancer: enhancer,
		limit:    limit,
		log:      log,
	}
}

// Set stores text as the polished description of the asset within the trip.
// Returns domain.ErrNotFound if the trip or asset does not exist and
// domain.ErrValidation if text is blank.
func (s *PolishService) Set(ctx context.Context, tripID, assetID uuid.UUID, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	if err := s.checkScope(ctx, tripID, assetID); err != nil {
		return fmt.Errorf("service.PolishService.Set: %w", err)
	}
	if err := s.overlay.Set(ctx, tripID, assetID, text); err != nil {
		return fmt.Errorf("service.PolishService.Set: %w", err)
	}
	return nil
}

// Get returns the polished description.
// Returns domain.ErrNotFound when none is set; callers then show the
// asset's own description.
func (s *PolishService) Get(ctx context.Context, tripID, assetID uuid.UUID) (string, error) {
	text, err := s.overlay.Get(ctx, tripID, assetID)
	if err != nil {
		return "", fmt.Errorf("service.PolishService.Get: %w", err)
	}
	return text, nil
}

// Clear removes the polished description. Clearing an unset entry is not
// an error.
func (s *PolishService) Clear(ctx context.Context, tripID, assetID uuid.UUID) error {
	if err := s.overlay.Clear(ctx, tripID, assetID); err != nil {
		return fmt.Errorf("service.PolishService.Clear: %w", err)
	}
	return nil
}

// PolishAsset runs the enhancer over the asset's description and stores the
// result in the trip's overlay.
// Returns domain.ErrNotFound if the trip or asset does not exist.
func (s *PolishService) PolishAsset(ctx context.Context, tripID, assetID uuid.UUID) (string, error) {
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return "", fmt.Errorf("service.PolishService.PolishAsset: %w", err)
	}
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return "", fmt.Errorf("service.PolishService.PolishAsset: %w", err)
	}
	text, err := s.polish(ctx, tripID, asset)
	if err != nil {
		return "", fmt.Errorf("service.PolishService.PolishAsset: %w", err)
	}
	return text, nil
}

// PolishDay polishes every distinct asset scheduled on the day, running up
// to limit enhancements concurrently. A failure on one asset is reported in
// its result and does not stop the others. Results follow the day's order.
// Returns domain.ErrNotFound if the day does not exist or belongs to another trip.
func (s *PolishService) PolishDay(ctx context.Context, tripID, dayID uuid.UUID) ([]PolishResult, error) {
	day, err := s.trips.GetDay(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("service.PolishService.PolishDay: %w", err)
	}
	if day.TripID != tripID {
		return nil, fmt.Errorf("service.PolishService.PolishDay: %w", domain.ErrNotFound)
	}
	acts, err := s.trips.ListActivities(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("service.PolishService.PolishDay: %w", err)
	}

	var assetIDs []uuid.UUID
	seen := make(map[uuid.UUID]bool, len(acts))
	for _, a := range acts {
		if !seen[a.AssetID] {
			seen[a.AssetID] = true
			assetIDs = append(assetIDs, a.AssetID)
		}
	}

	results := make([]PolishResult, len(assetIDs))
	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, id := range assetIDs {
		g.Go(func() error {
			results[i] = s.polishOne(ctx, tripID, id)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func (s *PolishService) polishOne(ctx context.Context, tripID, assetID uuid.UUID) PolishResult {
	res := PolishResult{AssetID: assetID}
	asset, err := s.assets.GetByID(ctx, assetID)
	if err == nil {
		res.Text, err = s.polish(ctx, tripID, asset)
	}
	if err != nil {
		s.log.WarnContext(ctx, "polish failed", "trip_id", tripID, "asset_id", assetID, "error", err)
		res.Status = ItemError
		res.Error = err.Error()
		if errors.Is(err, domain.ErrNotFound) {
			res.Error = "asset not found"
		}
		return res
	}
	res.Status = ItemDone
	return res
}

func (s *PolishService) polish(ctx context.Context, tripID uuid.UUID, asset domain.Asset) (string, error) {
	text, err := s.enhancer.Enhance(ctx, asset.DescriptionHe, asset.Type, asset.Title)
	if err != nil {
		return "", fmt.Errorf("enhance: %w", err)
	}
	if err := s.overlay.Set(ctx, tripID, asset.ID, text); err != nil {
		return "", err
	}
	return text, nil
}

func (s *PolishService) checkScope(ctx context.Context, tripID, assetID uuid.UUID) error {
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return err
	}
	_, err := s.assets.GetByID(ctx, assetID)
	return err
}
