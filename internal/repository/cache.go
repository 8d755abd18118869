package repository

import (
	"context"
	"fmt"
	"sync"

	v1 "lingoflow/pkg/api/v1"

	lru "github.com/hashicorp/golang-lru"
)

// CachedStore serves GetByID from an LRU cache and invalidates entries on
// every mutation that goes through it. Writes made by other processes are not
// seen until the entry is evicted.
//
// A read that overlaps any mutation is returned but not cached: gen is bumped
// on each mutation and a miss only fills the cache if gen did not move.
type CachedStore struct {
	FeatureStore
	cache *lru.Cache

	mu  sync.Mutex
	gen uint64
}

var _ FeatureStore = (*CachedStore)(nil)

func NewCachedStore(next FeatureStore, size int) (*CachedStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create feature cache: %w", err)
	}
	return &CachedStore{FeatureStore: next, cache: cache}, nil
}

func (s *CachedStore) GetByID(ctx context.Context, id string) (*v1.Feature, error) {
	if v, ok := s.cache.Get(id); ok {
		f := v.(v1.Feature).Clone()
		return &f, nil
	}
	gen := s.generation()
	f, err := s.FeatureStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(gen, id, *f)
	return f, nil
}

func (s *CachedStore) Create(ctx context.Context, in v1.CreateFeatureInput) (*v1.Feature, error) {
	gen := s.generation()
	f, err := s.FeatureStore.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.fill(gen, f.ID, *f)
	return f, nil
}

// Update drops the entry on both sides of the write. The next read refills it,
// so two racing updates cannot leave the loser's result cached.
func (s *CachedStore) Update(ctx context.Context, id string, in v1.UpdateFeatureInput) (*v1.Feature, error) {
	s.invalidate(id)
	defer s.invalidate(id)
	return s.FeatureStore.Update(ctx, id, in)
}

func (s *CachedStore) Delete(ctx context.Context, id string) (bool, error) {
	s.invalidate(id)
	defer s.invalidate(id)
	return s.FeatureStore.Delete(ctx, id)
}

func (s *CachedStore) Len() int {
	return s.cache.Len()
}

func (s *CachedStore) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *CachedStore) fill(gen uint64, id string, f v1.Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.cache.Add(id, f.Clone())
	}
}

func (s *CachedStore) invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cache.Remove(id)
}
