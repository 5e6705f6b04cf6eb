package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/hila-planner/internal/domain"
)

// memAssetRepo keeps the asset library in process memory, newest first.
// Records are copied on the way in and out so callers never share slices
// with the store.
type memAssetRepo struct {
	mu     sync.RWMutex
	assets []domain.Asset
}

// NewMemoryAssetRepo returns an empty in-memory AssetRepo.
func NewMemoryAssetRepo() AssetRepo {
	return &memAssetRepo{}
}

func (r *memAssetRepo) Create(_ context.Context, asset domain.Asset) (domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(asset.ID) >= 0 {
		return domain.Asset{}, fmt.Errorf("repo.memAssetRepo.Create: duplicate id %s", asset.ID)
	}
	r.assets = append([]domain.Asset{asset.Clone()}, r.assets...)
	return asset.Clone(), nil
}

func (r *memAssetRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Asset{}, fmt.Errorf("repo.memAssetRepo.GetByID: %w", domain.ErrNotFound)
	}
	return r.assets[i].Clone(), nil
}

func (r *memAssetRepo) List(_ context.Context, filter domain.AssetFilter) ([]domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Asset{}
	for _, a := range r.assets {
		if filter.Matches(a) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (r *memAssetRepo) Update(_ context.Context, asset domain.Asset) (domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(asset.ID)
	if i < 0 {
		return domain.Asset{}, fmt.Errorf("repo.memAssetRepo.Update: %w", domain.ErrNotFound)
	}
	updated := asset.Clone()
	updated.CreatedAt = r.assets[i].CreatedAt
	r.assets[i] = updated
	return updated.Clone(), nil
}

func (r *memAssetRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("repo.memAssetRepo.Delete: %w", domain.ErrNotFound)
	}
	r.assets = append(r.assets[:i], r.assets[i+1:]...)
	return nil
}

func (r *memAssetRepo) indexOf(id uuid.UUID) int {
	for i, a := range r.assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}
