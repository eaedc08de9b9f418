// Package service implements the distribution manager: token issuance,
// resolution, and completion.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	distmetrics "rfdist/internal/distribution/metrics"
	"rfdist/internal/distribution/models"
	"rfdist/internal/notify"
	programmodels "rfdist/internal/program/models"
	usermodels "rfdist/internal/user/models"
	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
	"rfdist/pkg/platform/sentinel"
	"rfdist/pkg/requestcontext"
	"rfdist/pkg/secrets"
)

// GenericProgramName is the display name returned to end-user clients.
// Clients never see the program's stored name; every payload presents
// itself the same way.
const GenericProgramName = "RF Access Programming"

// DistributionStore is the persistence port for distribution rows.
type DistributionStore interface {
	Create(ctx context.Context, d *models.Distribution) error
	FindByToken(ctx context.Context, token string) (*models.Distribution, error)
	Complete(ctx context.Context, token string, now time.Time) (*models.Distribution, error)
	List(ctx context.Context) ([]*models.Distribution, error)
}

// ProgramStore is the narrow view of the program catalog this service needs.
type ProgramStore interface {
	FindByID(ctx context.Context, programID id.ProgramID) (*programmodels.Program, error)
}

// UserStore is the narrow view of the user directory this service needs.
type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

// Service orchestrates the distribution token lifecycle.
type Service struct {
	distributions DistributionStore
	programs      ProgramStore
	users         UserStore
	notifier      notify.Notifier
	logger        *slog.Logger
	metrics       *distmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNotifier(notifier notify.Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithMetrics(m *distmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. Without WithNotifier the service dispatches
// to a no-op notifier.
func New(distributions DistributionStore, programs ProgramStore, users UserStore, opts ...Option) *Service {
	s := &Service{
		distributions: distributions,
		programs:      programs,
		users:         users,
		notifier:      notify.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a distribution binding one program to one user and
// returns it with the bearer token. This is the only place the token is
// ever surfaced.
//
// Existence of both identities is required; their active flags are
// deliberately not checked here. If issuance to inactive targets should
// be rejected, that is the API layer's policy call.
func (s *Service) Issue(ctx context.Context, programID id.ProgramID, userID id.UserID) (*models.Distribution, error) {
	start := time.Now()

	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "program not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load program")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	token, err := secrets.Generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate token")
	}

	now := requestcontext.Now(ctx)
	d := models.New(id.DistributionID(uuid.New()), programID, userID, token, now)
	if err := s.distributions.Create(ctx, d); err != nil {
		// A token collision would surface as a conflict; with 256 bits
		// of entropy that is effectively unreachable, so treat it as an
		// internal failure rather than retrying.
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create distribution")
	}

	// The notification is a detached side effect: it runs after the row
	// insert and its failure never fails the issuance.
	s.dispatchNotification(ctx, user, program)

	s.log(ctx, "distribution issued",
		"distribution_id", d.ID,
		"program_id", programID,
		"user_id", userID,
		"expires_at", d.ExpiresAt,
	)
	if s.metrics != nil {
		s.metrics.IncIssued()
		s.metrics.ObserveIssueDuration(time.Since(start).Seconds())
	}
	return d, nil
}

// ResolvedProgram is the read-only view an end-user client receives for
// a valid pending token.
type ResolvedProgram struct {
	Distribution *models.Distribution
	ProgramName  string
	SectorData   json.RawMessage
}

// Resolve looks up a token and returns the program payload when the
// distribution is still pending and unexpired. Non-consuming: callers
// may resolve the same token repeatedly.
//
// Failure taxonomy, each distinguishable via the wrapped sentinel:
//   - sentinel.ErrNotFound + "invalid token": no such token
//   - sentinel.ErrAlreadyUsed: distribution already completed
//   - sentinel.ErrExpired: validity window has passed (checked against
//     request time; stored status stays pending)
//   - sentinel.ErrNotFound + "program not found": referenced program row gone
func (s *Service) Resolve(ctx context.Context, token string) (*ResolvedProgram, error) {
	d, err := s.distributions.FindByToken(ctx, token)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			s.incResolved("invalid_token")
			return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "invalid token")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up token")
	}

	// Completed wins over expired: a used token reports "already used"
	// even when it is also past its expiry.
	if d.IsCompleted() {
		s.incResolved("already_used")
		return nil, dErrors.Wrap(sentinel.ErrAlreadyUsed, dErrors.CodeInvalidRequest, "program already used")
	}
	if d.IsExpired(requestcontext.Now(ctx)) {
		s.incResolved("expired")
		return nil, dErrors.Wrap(sentinel.ErrExpired, dErrors.CodeInvalidRequest, "program expired")
	}

	program, err := s.programs.FindByID(ctx, d.ProgramID)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			s.incResolved("program_missing")
			return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "program not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load program")
	}

	s.incResolved("success")
	return &ResolvedProgram{
		Distribution: d,
		ProgramName:  GenericProgramName,
		SectorData:   program.SectorData,
	}, nil
}

// Complete marks the distribution behind the token as completed.
//
// Unconditional by design: prior status and expiry are not checked, the
// completion timestamp is overwritten on repeat calls, and an expired
// token still completes. This mirrors the asymmetry with Resolve.
func (s *Service) Complete(ctx context.Context, token string) error {
	now := requestcontext.Now(ctx)
	d, err := s.distributions.Complete(ctx, token, now)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "invalid token")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to complete distribution")
	}

	s.log(ctx, "distribution completed",
		"distribution_id", d.ID,
		"program_id", d.ProgramID,
		"user_id", d.UserID,
	)
	if s.metrics != nil {
		s.metrics.IncCompleted()
	}
	return nil
}

// List returns all distributions for the operator view, newest first.
// Callers use DisplayStatus for the derived expired presentation.
func (s *Service) List(ctx context.Context) ([]*models.Distribution, error) {
	distributions, err := s.distributions.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list distributions")
	}
	return distributions, nil
}

// dispatchNotification invokes the notifier and swallows any error.
// Transport failures are logged and counted, never propagated.
func (s *Service) dispatchNotification(ctx context.Context, user *usermodels.User, program *programmodels.Program) {
	if err := s.notifier.Notify(ctx, user, program); err != nil {
		s.warn(ctx, "failed to send notification",
			"user_id", user.ID,
			"program_id", program.ID,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncNotifyFailure()
		}
	}
}

func (s *Service) incResolved(outcome string) {
	if s.metrics != nil {
		s.metrics.IncResolved(outcome)
	}
}

func (s *Service) log(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		s.logger.InfoContext(ctx, msg, args...)
	}
}

func (s *Service) warn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		s.logger.WarnContext(ctx, msg, args...)
	}
}
