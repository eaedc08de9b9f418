package store

import (
	"context"
	"strings"
	"sync"

	"rfdist/internal/operator/models"
	"rfdist/pkg/platform/sentinel"
)

// InMemoryStore keeps operator accounts in process memory.
type InMemoryStore struct {
	mu        sync.RWMutex
	operators map[string]models.Operator
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{operators: make(map[string]models.Operator)}
}

func (s *InMemoryStore) Create(_ context.Context, operator *models.Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(operator.Username)
	if _, exists := s.operators[key]; exists {
		return sentinel.ErrConflict
	}
	s.operators[key] = *operator
	return nil
}

func (s *InMemoryStore) FindByUsername(_ context.Context, username string) (*models.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	operator, ok := s.operators[strings.ToLower(username)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &operator, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.operators), nil
}
