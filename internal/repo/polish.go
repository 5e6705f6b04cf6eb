package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pkordes/hila-planner/internal/domain"
)

// PolishRepo stores polished asset descriptions for one trip's client view.
// Entries are an overlay: they never modify the Asset record.
type PolishRepo interface {
	// Set stores the polished text for (tripID, assetID), replacing any previous value.
	Set(ctx context.Context, tripID, assetID uuid.UUID, text string) error

	// Get returns the polished text. Returns domain.ErrNotFound if none is set.
	Get(ctx context.Context, tripID, assetID uuid.UUID) (string, error)

	// Clear removes the entry. Clearing an absent entry is not an error.
	Clear(ctx context.Context, tripID, assetID uuid.UUID) error

	// ListForTrip returns every polished text of the trip keyed by asset id.
	ListForTrip(ctx context.Context, tripID uuid.UUID) (map[uuid.UUID]string, error)

	// ClearTrip removes every entry of the trip. Used when the trip is deleted.
	ClearTrip(ctx context.Context, tripID uuid.UUID) error
}

// --- in-memory --------------------------------------------------------------

type memPolishRepo struct {
	mu    sync.RWMutex
	texts map[uuid.UUID]map[uuid.UUID]string
}

// NewMemoryPolishRepo returns an empty in-memory PolishRepo. Entries live for
// the lifetime of the process.
func NewMemoryPolishRepo() PolishRepo {
	return &memPolishRepo{texts: make(map[uuid.UUID]map[uuid.UUID]string)}
}

func (r *memPolishRepo) Set(_ context.Context, tripID, assetID uuid.UUID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byAsset, ok := r.texts[tripID]
	if !ok {
		byAsset = make(map[uuid.UUID]string)
		r.texts[tripID] = byAsset
	}
	byAsset[assetID] = text
	return nil
}

func (r *memPolishRepo) Get(_ context.Context, tripID, assetID uuid.UUID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	text, ok := r.texts[tripID][assetID]
	if !ok {
		return "", fmt.Errorf("repo.memPolishRepo.Get: %w", domain.ErrNotFound)
	}
	return text, nil
}

func (r *memPolishRepo) Clear(_ context.Context, tripID, assetID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.texts[tripID], assetID)
	if len(r.texts[tripID]) == 0 {
		delete(r.texts, tripID)
	}
	return nil
}

func (r *memPolishRepo) ListForTrip(_ context.Context, tripID uuid.UUID) (map[uuid.UUID]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[uuid.UUID]string, len(r.texts[tripID]))
	for id, text := range r.texts[tripID] {
		out[id] = text
	}
	return out, nil
}

func (r *memPolishRepo) ClearTrip(_ context.Context, tripID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.texts, tripID)
	return nil
}

// --- Redis ------------------------------------------------------------------

// redisPolishRepo keeps one hash per trip (field = asset id). The hash TTL is
// refreshed on every Set, so a trip's overlay expires ttl after its last edit.
type redisPolishRepo struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisPolishRepo returns a PolishRepo backed by Redis. A ttl of zero
// keeps entries until they are cleared.
func NewRedisPolishRepo(rdb *goredis.Client, ttl time.Duration) PolishRepo {
	return &redisPolishRepo{rdb: rdb, ttl: ttl}
}

func polishKey(tripID uuid.UUID) string {
	return "hila:polish:" + tripID.String()
}

func (r *redisPolishRepo) Set(ctx context.Context, tripID, assetID uuid.UUID, text string) error {
	key := polishKey(tripID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, assetID.String(), text)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.redisPolishRepo.Set: %w", err)
	}
	return nil
}

func (r *redisPolishRepo) Get(ctx context.Context, tripID, assetID uuid.UUID) (string, error) {
	text, err := r.rdb.HGet(ctx, polishKey(tripID), assetID.String()).Result()
	if errors.Is(err, goredis.Nil) {
		return "", fmt.Errorf("repo.redisPolishRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("repo.redisPolishRepo.Get: %w", err)
	}
	return text, nil
}

func (r *redisPolishRepo) Clear(ctx context.Context, tripID, assetID uuid.UUID) error {
	if err := r.rdb.HDel(ctx, polishKey(tripID), assetID.String()).Err(); err != nil {
		return fmt.Errorf("repo.redisPolishRepo.Clear: %w", err)
	}
	return nil
}

func (r *redisPolishRepo) ListForTrip(ctx context.Context, tripID uuid.UUID) (map[uuid.UUID]string, error) {
	fields, err := r.rdb.HGetAll(ctx, polishKey(tripID)).Result()
	if err != nil {
		return nil, fmt.Errorf("repo.redisPolishRepo.ListForTrip: %w", err)
	}
	out := make(map[uuid.UUID]string, len(fields))
	for k, v := range fields {
		id, err := uuid.Parse(k)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out, nil
}

func (r *redisPolishRepo) ClearTrip(ctx context.Context, tripID uuid.UUID) error {
	if err := r.rdb.Del(ctx, polishKey(tripID)).Err(); err != nil {
		return fmt.Errorf("repo.redisPolishRepo.ClearTrip: %w", err)
	}
	return nil
}
