package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"rfdist/internal/user/models"
	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
	"rfdist/pkg/platform/sentinel"
	"rfdist/pkg/requestcontext"
)

// Store is the persistence port for the user directory.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	List(ctx context.Context, activeOnly bool) ([]*models.User, error)
	Deactivate(ctx context.Context, userID id.UserID) error
}

// Service manages the end-user directory.
type Service struct {
	users  Store
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(users Store, opts ...Option) *Service {
	s := &Service{users: users}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers an end user. Usernames are unique
// (case-insensitive); the push handle is optional.
func (s *Service) CreateUser(ctx context.Context, username, email, pushHandle string) (*models.User, error) {
	user, err := models.NewUser(id.UserID(uuid.New()), username, email, pushHandle, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if dErrors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "username already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "user created", "user_id", user.ID)
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, activeOnly bool) ([]*models.User, error) {
	users, err := s.users.List(ctx, activeOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// DeactivateUser soft-deletes a user. Existing distributions addressed
// to this user are deliberately untouched.
func (s *Service) DeactivateUser(ctx context.Context, userID id.UserID) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate user")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "user deactivated", "user_id", userID)
	}
	return nil
}
