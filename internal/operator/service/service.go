package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	jwttoken "rfdist/internal/jwt_token"
	"rfdist/internal/operator/models"
	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
	"rfdist/pkg/platform/sentinel"
	"rfdist/pkg/requestcontext"
	"rfdist/pkg/secrets"
)

// AccessTokenTTL bounds an operator session. Authentication state lives
// entirely in the token; the server keeps no session table.
const AccessTokenTTL = 8 * time.Hour

// Store is the persistence port for operator accounts.
type Store interface {
	Create(ctx context.Context, operator *models.Operator) error
	FindByUsername(ctx context.Context, username string) (*models.Operator, error)
	Count(ctx context.Context) (int, error)
}

// Service authenticates operators and issues their access tokens.
type Service struct {
	operators Store
	tokens    *jwttoken.JWTService
	logger    *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(operators Store, tokens *jwttoken.JWTService, opts ...Option) *Service {
	s := &Service{operators: operators, tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies credentials and returns a signed access token.
// Unknown usernames and wrong passwords produce the same error, so
// login responses do not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	operator, err := s.operators.FindByUsername(ctx, username)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load operator")
	}
	if err := secrets.Verify(password, operator.PasswordHash); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "operator login failed",
				"username", username,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateAccessToken(operator.ID, operator.Username, AccessTokenTTL)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate access token")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "operator logged in", "operator_id", operator.ID)
	}
	return token, nil
}

// Seed creates the bootstrap operator when the store is empty so a
// fresh deployment has a way in. No-op otherwise.
func (s *Service) Seed(ctx context.Context, username, password string) error {
	count, err := s.operators.Count(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count operators")
	}
	if count > 0 {
		return nil
	}

	hash, err := secrets.Hash(password)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash bootstrap password")
	}
	operator, err := models.NewOperator(id.OperatorID(uuid.New()), username, hash, time.Now())
	if err != nil {
		return err
	}
	if err := s.operators.Create(ctx, operator); err != nil {
		// A concurrent seeder beat us to it; that is fine.
		if dErrors.Is(err, sentinel.ErrConflict) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create bootstrap operator")
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "seeded bootstrap operator; change its password",
			"username", username,
		)
	}
	return nil
}
