// Package handler exposes the token-facing access endpoints used by the
// mobile programmer app. Callers authenticate with the bearer token in
// the URL; there is no session.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rfdist/internal/distribution/service"
	dErrors "rfdist/pkg/domain-errors"
	"rfdist/pkg/platform/httputil"
	"rfdist/pkg/platform/sentinel"
	"rfdist/pkg/requestcontext"
)

// Service is the distribution manager surface the access API needs.
type Service interface {
	Resolve(ctx context.Context, token string) (*service.ResolvedProgram, error)
	Complete(ctx context.Context, token string) error
}

// Handler wires the public access endpoints to the distribution service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the access endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/program/{token}", h.HandleFetchProgram)
	r.Post("/api/programming-complete/{token}", h.HandleProgrammingComplete)
}

// programResponse is the success payload for a valid pending token. The
// program name is always the generic display name; the stored name
// never reaches end-user clients.
type programResponse struct {
	Success     bool            `json:"success"`
	ProgramName string          `json:"program_name"`
	SectorData  json.RawMessage `json:"sector_data"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleFetchProgram handles GET /api/program/{token}.
//
// Non-consuming: fetching does not change the distribution's state, so
// a client may retry the same token until it completes or expires.
func (h *Handler) HandleFetchProgram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")

	resolved, err := h.service.Resolve(ctx, token)
	if err != nil {
		h.writeFailure(ctx, w, err, "failed to resolve token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, programResponse{
		Success:     true,
		ProgramName: resolved.ProgramName,
		SectorData:  resolved.SectorData,
		ExpiresAt:   resolved.Distribution.ExpiresAt,
	})
}

// HandleProgrammingComplete handles POST /api/programming-complete/{token}.
// Succeeds for any existing token regardless of prior state or expiry.
func (h *Handler) HandleProgrammingComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")

	if err := h.service.Complete(ctx, token); err != nil {
		h.writeFailure(ctx, w, err, "failed to complete distribution")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "programming marked complete",
	})
}

// writeFailure translates a service error into the access API's
// {success, message} envelope. Token failures map to 404 (unknown) or
// 400 (used or expired); anything else is a 500 with no detail.
func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, err error, logMsg string) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		status = http.StatusNotFound
		message = dErrors.MessageOf(err)
	case errors.Is(err, sentinel.ErrAlreadyUsed), errors.Is(err, sentinel.ErrExpired):
		status = http.StatusBadRequest
		message = dErrors.MessageOf(err)
	default:
		if h.logger != nil {
			h.logger.ErrorContext(ctx, logMsg,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}

	httputil.WriteJSON(w, status, messageResponse{Success: false, Message: message})
}
