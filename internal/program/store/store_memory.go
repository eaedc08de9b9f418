package store

import (
	"context"
	"sort"
	"sync"

	"rfdist/internal/program/models"
	id "rfdist/pkg/domain"
	"rfdist/pkg/platform/sentinel"
)

// InMemoryStore keeps programs in process memory. Used in tests and
// when no database is configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	programs map[id.ProgramID]models.Program
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{programs: make(map[id.ProgramID]models.Program)}
}

func (s *InMemoryStore) Create(_ context.Context, program *models.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.programs[program.ID]; exists {
		return sentinel.ErrConflict
	}
	s.programs[program.ID] = *program
	return nil
}

// FindByID retrieves a program regardless of its active flag. Existing
// distributions must keep resolving deactivated programs.
func (s *InMemoryStore) FindByID(_ context.Context, programID id.ProgramID) (*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	program, ok := s.programs[programID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &program, nil
}

func (s *InMemoryStore) List(_ context.Context, activeOnly bool) ([]*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	programs := make([]*models.Program, 0, len(s.programs))
	for _, program := range s.programs {
		if activeOnly && !program.Active {
			continue
		}
		p := program
		programs = append(programs, &p)
	}
	sort.Slice(programs, func(i, j int) bool { return programs[i].Name < programs[j].Name })
	return programs, nil
}

func (s *InMemoryStore) Deactivate(_ context.Context, programID id.ProgramID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	program, ok := s.programs[programID]
	if !ok {
		return sentinel.ErrNotFound
	}
	program.Deactivate()
	s.programs[programID] = program
	return nil
}
