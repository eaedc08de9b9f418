package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"rfdist/internal/distribution/models"
	"rfdist/pkg/platform/sentinel"
)

// InMemoryStore keeps distributions in process memory, keyed by token.
// The single mutex makes each Complete call an atomic read-modify-write
// per row, matching the transactional-store assumption of the design.
type InMemoryStore struct {
	mu      sync.RWMutex
	byToken map[string]models.Distribution
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byToken: make(map[string]models.Distribution)}
}

// Create inserts a distribution. Returns sentinel.ErrConflict if the
// token is already present; the token column carries a uniqueness
// constraint in every backend.
func (s *InMemoryStore) Create(_ context.Context, d *models.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byToken[d.Token]; exists {
		return sentinel.ErrConflict
	}
	s.byToken[d.Token] = *d
	return nil
}

// FindByToken looks up a distribution by exact token match.
// Non-consuming: may be called repeatedly without changing state.
func (s *InMemoryStore) FindByToken(_ context.Context, token string) (*models.Distribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &d, nil
}

// Complete marks the distribution completed with an unconditional
// overwrite: no guard on prior status or expiry, and the completion
// timestamp is replaced on repeat calls. Returns the updated row, or
// sentinel.ErrNotFound if the token does not exist.
func (s *InMemoryStore) Complete(_ context.Context, token string, now time.Time) (*models.Distribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	d.ApplyCompletion(now)
	s.byToken[token] = d
	return &d, nil
}

// List returns all distributions, newest first.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Distribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	distributions := make([]*models.Distribution, 0, len(s.byToken))
	for _, d := range s.byToken {
		dist := d
		distributions = append(distributions, &dist)
	}
	sort.Slice(distributions, func(i, j int) bool {
		return distributions[i].CreatedAt.After(distributions[j].CreatedAt)
	})
	return distributions, nil
}
