package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"rfdist/internal/user/models"
	id "rfdist/pkg/domain"
	"rfdist/pkg/platform/sentinel"
)

// InMemoryStore keeps users in process memory. Used in tests and when
// no database is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[id.UserID]models.User
	byName map[string]id.UserID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[id.UserID]models.User),
		byName: make(map[string]id.UserID),
	}
}

// Create inserts a user if the username is not taken (case-insensitive).
// Returns sentinel.ErrConflict on a duplicate username.
func (s *InMemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Username)
	if _, exists := s.byName[key]; exists {
		return sentinel.ErrConflict
	}
	s.byID[user.ID] = *user
	s.byName[key] = user.ID
	return nil
}

// FindByID retrieves a user. Returns sentinel.ErrNotFound if absent.
func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &user, nil
}

// List returns users ordered by username. With activeOnly, deactivated
// users are filtered out.
func (s *InMemoryStore) List(_ context.Context, activeOnly bool) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*models.User, 0, len(s.byID))
	for _, user := range s.byID {
		if activeOnly && !user.Active {
			continue
		}
		u := user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// Deactivate clears the active flag. Returns sentinel.ErrNotFound if absent.
func (s *InMemoryStore) Deactivate(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	user.Deactivate()
	s.byID[userID] = user
	return nil
}
