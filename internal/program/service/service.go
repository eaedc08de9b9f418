package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"rfdist/internal/program/models"
	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
	"rfdist/pkg/platform/sentinel"
	"rfdist/pkg/requestcontext"
)

// Store is the persistence port for the program catalog.
type Store interface {
	Create(ctx context.Context, program *models.Program) error
	FindByID(ctx context.Context, programID id.ProgramID) (*models.Program, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Program, error)
	Deactivate(ctx context.Context, programID id.ProgramID) error
}

// Service manages the program catalog. Programs are immutable after
// creation except for deactivation.
type Service struct {
	programs Store
	logger   *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(programs Store, opts ...Option) *Service {
	s := &Service{programs: programs}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProgram validates and stores a new program. The sector data is
// checked for syntactic JSON validity only; its meaning is opaque here.
func (s *Service) CreateProgram(ctx context.Context, name, description string, sectorData []byte) (*models.Program, error) {
	operatorID := requestcontext.OperatorID(ctx)
	program, err := models.NewProgram(id.ProgramID(uuid.New()), name, description, sectorData, operatorID, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}
	if err := s.programs.Create(ctx, program); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create program")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "program created",
			"program_id", program.ID,
			"operator_id", operatorID,
		)
	}
	return program, nil
}

func (s *Service) GetProgram(ctx context.Context, programID id.ProgramID) (*models.Program, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "program not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load program")
	}
	return program, nil
}

func (s *Service) ListPrograms(ctx context.Context, activeOnly bool) ([]*models.Program, error) {
	programs, err := s.programs.List(ctx, activeOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list programs")
	}
	return programs, nil
}

// DeactivateProgram soft-deletes a program. Existing distributions that
// reference it are untouched and keep resolving.
func (s *Service) DeactivateProgram(ctx context.Context, programID id.ProgramID) error {
	if err := s.programs.Deactivate(ctx, programID); err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "program not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate program")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "program deactivated", "program_id", programID)
	}
	return nil
}
