// Package handler exposes the operator-facing distribution endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rfdist/internal/distribution/models"
	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
	"rfdist/pkg/platform/httputil"
	"rfdist/pkg/requestcontext"
)

// Service is the distribution manager surface the admin API needs.
type Service interface {
	Issue(ctx context.Context, programID id.ProgramID, userID id.UserID) (*models.Distribution, error)
	List(ctx context.Context) ([]*models.Distribution, error)
}

// Handler wires distribution endpoints to the distribution service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the distribution endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/distributions", h.HandleIssue)
	r.Get("/distributions", h.HandleList)
}

type issueRequest struct {
	ProgramID string `json:"program_id"`
	UserID    string `json:"user_id"`
}

// issueResponse surfaces the bearer token. This is the only response in
// the system that ever carries it.
type issueResponse struct {
	ID        id.DistributionID `json:"id"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// distributionView is the operator listing row. Status is the derived
// display status, so expired pending tokens show as expired.
type distributionView struct {
	ID          id.DistributionID `json:"id"`
	ProgramID   id.ProgramID      `json:"program_id"`
	UserID      id.UserID         `json:"user_id"`
	Status      models.Status     `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// HandleIssue handles POST /admin/distributions.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[issueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	programID, err := id.ParseProgramID(req.ProgramID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid program_id"))
		return
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user_id"))
		return
	}

	d, err := h.service.Issue(ctx, programID, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue distribution",
			"request_id", requestID,
			"program_id", programID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, issueResponse{
		ID:        d.ID,
		Token:     d.Token,
		ExpiresAt: d.ExpiresAt,
	})
}

// HandleList handles GET /admin/distributions.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	distributions, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list distributions",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	now := requestcontext.Now(ctx)
	views := make([]distributionView, 0, len(distributions))
	for _, d := range distributions {
		views = append(views, distributionView{
			ID:          d.ID,
			ProgramID:   d.ProgramID,
			UserID:      d.UserID,
			Status:      d.DisplayStatus(now),
			CreatedAt:   d.CreatedAt,
			ExpiresAt:   d.ExpiresAt,
			CompletedAt: d.CompletedAt,
		})
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"distributions": views})
}
