// Package handler exposes mandate management over HTTP. All routes are
// scoped to the company carried in the access token.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	contractModel "payshield/internal/contract/models"
	"payshield/internal/mandate/models"
	"payshield/internal/platform/metrics"
	"payshield/internal/platform/middleware"
	"payshield/internal/transport/http/shared"
	dErrors "payshield/pkg/domain-errors"
)

// Service defines the interface for mandate operations.
type Service interface {
	Create(ctx context.Context, companyID string, req models.CreateMandateRequest) (*contractModel.Policy, error)
	List(ctx context.Context, companyID string, activeOnly bool) ([]contractModel.Policy, error)
	Get(ctx context.Context, companyID, policyID string) (*contractModel.Policy, error)
	Update(ctx context.Context, companyID, policyID string, req models.UpdateMandateRequest) (*contractModel.Policy, error)
	Toggle(ctx context.Context, companyID, policyID string) (*contractModel.Policy, error)
	Delete(ctx context.Context, companyID, policyID string) error
	Templates() []contractModel.Policy
}

// Handler handles mandate endpoints.
type Handler struct {
	logger       *slog.Logger
	mandates     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new mandate Handler.
func New(mandates Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		mandates:     mandates,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the mandate routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	mandateRouter := chi.NewRouter()
	mandateRouter.Use(middleware.Recovery(h.logger))
	mandateRouter.Use(middleware.RequestID)
	mandateRouter.Use(middleware.Logger(h.logger))
	mandateRouter.Use(middleware.Timeout(30 * time.Second))
	mandateRouter.Use(middleware.ContentTypeJSON)
	mandateRouter.Use(middleware.LatencyMiddleware(h.metrics))
	mandateRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	mandateRouter.Post("/", h.handleCreate)
	mandateRouter.Get("/", h.handleList)
	mandateRouter.Get("/templates", h.handleTemplates)
	mandateRouter.Get("/{policyID}", h.handleGet)
	mandateRouter.Put("/{policyID}", h.handleUpdate)
	mandateRouter.Post("/{policyID}/toggle", h.handleToggle)
	mandateRouter.Delete("/{policyID}", h.handleDelete)

	r.Mount("/api/mandates", mandateRouter)
}

// company extracts the authenticated company or writes an error.
func (h *Handler) company(w http.ResponseWriter, r *http.Request) (string, bool) {
	companyID := middleware.GetCompanyID(r.Context())
	if companyID == "" {
		h.logger.ErrorContext(r.Context(), "companyID missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return companyID, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	var req models.CreateMandateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	policy, err := h.mandates.Create(r.Context(), companyID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, policy)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	activeOnly := r.URL.Query().Get("active_only") != "false"
	policies, err := h.mandates.List(r.Context(), companyID, activeOnly)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, policies)
}

func (h *Handler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.mandates.Templates())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	policy, err := h.mandates.Get(r.Context(), companyID, chi.URLParam(r, "policyID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, policy)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	var req models.UpdateMandateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	policy, err := h.mandates.Update(r.Context(), companyID, chi.URLParam(r, "policyID"), req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, policy)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	policy, err := h.mandates.Toggle(r.Context(), companyID, chi.URLParam(r, "policyID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, policy)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	if err := h.mandates.Delete(r.Context(), companyID, chi.URLParam(r, "policyID")); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
