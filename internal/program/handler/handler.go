// Package handler exposes the operator-facing program catalog endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rfdist/internal/program/models"
	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
	"rfdist/pkg/platform/httputil"
	"rfdist/pkg/requestcontext"
)

// Service is the program catalog surface the admin API needs.
type Service interface {
	CreateProgram(ctx context.Context, name, description string, sectorData []byte) (*models.Program, error)
	GetProgram(ctx context.Context, programID id.ProgramID) (*models.Program, error)
	ListPrograms(ctx context.Context, activeOnly bool) ([]*models.Program, error)
	DeactivateProgram(ctx context.Context, programID id.ProgramID) error
}

// Handler wires program endpoints to the program service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the program endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/programs", h.HandleCreate)
	r.Get("/programs", h.HandleList)
	r.Get("/programs/{programID}", h.HandleGet)
	r.Delete("/programs/{programID}", h.HandleDeactivate)
}

type createRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SectorData  json.RawMessage `json:"sector_data"`
}

// HandleCreate handles POST /admin/programs.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	program, err := h.service.CreateProgram(ctx, req.Name, req.Description, req.SectorData)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create program",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, program)
}

// HandleGet handles GET /admin/programs/{programID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	programID, err := id.ParseProgramID(chi.URLParam(r, "programID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid program id"))
		return
	}

	program, err := h.service.GetProgram(ctx, programID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, program)
}

// HandleList handles GET /admin/programs. Pass ?all=true to include
// deactivated programs.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activeOnly := r.URL.Query().Get("all") != "true"

	programs, err := h.service.ListPrograms(ctx, activeOnly)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list programs",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"programs": programs})
}

// HandleDeactivate handles DELETE /admin/programs/{programID}.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	programID, err := id.ParseProgramID(chi.URLParam(r, "programID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid program id"))
		return
	}

	if err := h.service.DeactivateProgram(ctx, programID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
