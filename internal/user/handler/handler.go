// Package handler exposes the operator-facing user directory endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rfdist/internal/user/models"
	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
	"rfdist/pkg/platform/httputil"
	"rfdist/pkg/requestcontext"
)

// Service is the user directory surface the admin API needs.
type Service interface {
	CreateUser(ctx context.Context, username, email, pushHandle string) (*models.User, error)
	GetUser(ctx context.Context, userID id.UserID) (*models.User, error)
	ListUsers(ctx context.Context, activeOnly bool) ([]*models.User, error)
	DeactivateUser(ctx context.Context, userID id.UserID) error
}

// Handler wires user endpoints to the user service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the user endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.HandleCreate)
	r.Get("/users", h.HandleList)
	r.Get("/users/{userID}", h.HandleGet)
	r.Delete("/users/{userID}", h.HandleDeactivate)
}

type createRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	PushHandle string `json:"push_handle"`
}

// HandleCreate handles POST /admin/users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.CreateUser(ctx, req.Username, req.Email, req.PushHandle)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create user",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

// HandleGet handles GET /admin/users/{userID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user id"))
		return
	}

	user, err := h.service.GetUser(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// HandleList handles GET /admin/users. Pass ?all=true to include
// deactivated users.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activeOnly := r.URL.Query().Get("all") != "true"

	users, err := h.service.ListUsers(ctx, activeOnly)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// HandleDeactivate handles DELETE /admin/users/{userID}.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user id"))
		return
	}

	if err := h.service.DeactivateUser(ctx, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
