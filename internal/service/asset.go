// Package service contains the business logic of the itinerary planner.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/repo"
)

// AssetService implements the asset library.
type AssetService struct {
	assets repo.AssetRepo
	ids    domain.IDGenerator
	now    domain.Clock
}

// NewAssetService constructs an AssetService backed by the provided AssetRepo.
func NewAssetService(assets repo.AssetRepo, ids domain.IDGenerator, now domain.Clock) *AssetService {
	return &AssetService{assets: assets, ids: ids, now: now}
}

// Add validates and stores a new asset. The ID and timestamps on the input
// are ignored and assigned here.
// Returns domain.ErrValidation if input violates business rules.
func (s *AssetService) Add(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	asset.Title = strings.TrimSpace(asset.Title)
	if asset.Title == "" {
		return domain.Asset{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	return s.create(ctx, asset)
}

// AddCandidate stores a possibly partial payload from the import
// collaborator. Missing fields are defaulted by domain.AssetCandidate.Normalize;
// an empty title is accepted. Out-of-range prices or coordinates are still
// rejected with domain.ErrValidation.
func (s *AssetService) AddCandidate(ctx context.Context, c domain.AssetCandidate) (domain.Asset, error) {
	asset := c.Normalize()
	asset.Title = strings.TrimSpace(asset.Title)
	return s.create(ctx, asset)
}

func (s *AssetService) create(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	if err := validateAsset(asset); err != nil {
		return domain.Asset{}, err
	}
	now := s.now()
	asset.ID = s.ids.NewID()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	if asset.Images == nil {
		asset.Images = []string{}
	}
	if asset.Tags == nil {
		asset.Tags = []string{}
	}

	result, err := s.assets.Create(ctx, asset)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("service.AssetService.Add: %w", err)
	}
	return result, nil
}

// Get returns a single asset.
// Returns domain.ErrNotFound if it does not exist.
func (s *AssetService) Get(ctx context.Context, id uuid.UUID) (domain.Asset, error) {
	result, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("service.AssetService.Get: %w", err)
	}
	return result, nil
}

// List returns the assets matching filter, newest first.
// Always returns a non-nil slice.
func (s *AssetService) List(ctx context.Context, filter domain.AssetFilter) ([]domain.Asset, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Country = strings.TrimSpace(filter.Country)
	assets, err := s.assets.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.AssetService.List: %w", err)
	}
	if assets == nil {
		return []domain.Asset{}, nil
	}
	return assets, nil
}

// Update merges patch into the stored asset. ID and CreatedAt never change.
// Returns domain.ErrNotFound if the asset does not exist and
// domain.ErrValidation if the merged asset is invalid.
func (s *AssetService) Update(ctx context.Context, id uuid.UUID, patch domain.AssetPatch) (domain.Asset, error) {
	current, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("service.AssetService.Update: %w", err)
	}
	next := patch.Apply(current)
	next.Title = strings.TrimSpace(next.Title)
	if next.Title == "" {
		return domain.Asset{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if err := validateAsset(next); err != nil {
		return domain.Asset{}, err
	}
	next.UpdatedAt = s.now()

	result, err := s.assets.Update(ctx, next)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("service.AssetService.Update: %w", err)
	}
	return result, nil
}

// Remove deletes an asset. Activities that reference it are left in place
// and become unresolved.
// Returns domain.ErrNotFound if it does not exist.
func (s *AssetService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.assets.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.AssetService.Remove: %w", err)
	}
	return nil
}

// FilterOptions returns the distinct types, countries and cities present in
// the library, each sorted ascending. Empty values are omitted.
func (s *AssetService) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	assets, err := s.assets.List(ctx, domain.AssetFilter{})
	if err != nil {
		return domain.FilterOptions{}, fmt.Errorf("service.AssetService.FilterOptions: %w", err)
	}
	types, countries, cities := newStringSet(), newStringSet(), newStringSet()
	for _, a := range assets {
		types.add(string(a.Type))
		countries.add(a.Country)
		cities.add(a.City)
	}
	return domain.FilterOptions{
		Types:     types.sorted(),
		Countries: countries.sorted(),
		Cities:    cities.sorted(),
	}, nil
}

// validateAsset enforces the rules shared by every write path.
//   - Type must be one of domain.AssetTypes.
//   - Prices must not be negative.
//   - Coordinates, when present, must be in range and come as a pair.
func validateAsset(a domain.Asset) error {
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown asset type %q", domain.ErrValidation, a.Type)
	}
	if a.CostPrice < 0 {
		return fmt.Errorf("%w: cost_price must not be negative", domain.ErrValidation)
	}
	if a.SellingPrice < 0 {
		return fmt.Errorf("%w: selling_price must not be negative", domain.ErrValidation)
	}
	if (a.Lat == nil) != (a.Lng == nil) {
		return fmt.Errorf("%w: lat and lng must be set together", domain.ErrValidation)
	}
	if a.Lat != nil && (*a.Lat < -90 || *a.Lat > 90) {
		return fmt.Errorf("%w: lat must be between -90 and 90", domain.ErrValidation)
	}
	if a.Lng != nil && (*a.Lng < -180 || *a.Lng > 180) {
		return fmt.Errorf("%w: lng must be between -180 and 180", domain.ErrValidation)
	}
	return nil
}

type stringSet map[string]struct{}

func newStringSet() stringSet { return stringSet{} }

func (s stringSet) add(v string) {
	if v = strings.TrimSpace(v); v != "" {
		s[v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
