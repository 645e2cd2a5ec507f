// Package handler exposes vendor management over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"payshield/internal/platform/metrics"
	"payshield/internal/platform/middleware"
	"payshield/internal/transport/http/shared"
	"payshield/internal/vendors/models"
	dErrors "payshield/pkg/domain-errors"
)

// Service defines the interface for vendor operations.
type Service interface {
	Create(ctx context.Context, req models.CreateVendorRequest) (*models.Vendor, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateVendorRequest) (*models.Vendor, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, trustedOnly bool, limit, offset int) ([]*models.Vendor, error)
}

// Handler handles vendor endpoints.
type Handler struct {
	logger       *slog.Logger
	vendors      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new vendor Handler.
func New(vendors Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		vendors:      vendors,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the vendor routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	vendorRouter := chi.NewRouter()
	vendorRouter.Use(middleware.Recovery(h.logger))
	vendorRouter.Use(middleware.RequestID)
	vendorRouter.Use(middleware.Logger(h.logger))
	vendorRouter.Use(middleware.Timeout(30 * time.Second))
	vendorRouter.Use(middleware.ContentTypeJSON)
	vendorRouter.Use(middleware.LatencyMiddleware(h.metrics))
	vendorRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	vendorRouter.Post("/", h.handleCreate)
	vendorRouter.Get("/", h.handleList)
	vendorRouter.Get("/{vendorID}", h.handleGet)
	vendorRouter.Put("/{vendorID}", h.handleUpdate)
	vendorRouter.Delete("/{vendorID}", h.handleDelete)

	r.Mount("/api/vendors", vendorRouter)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	vendor, err := h.vendors.Create(ctx, req)
	if err != nil {
		h.logError(ctx, "create vendor failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, vendor)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	trustedOnly := r.URL.Query().Get("trusted_only") == "true"
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	vendors, err := h.vendors.List(r.Context(), trustedOnly, limit, offset)
	if err != nil {
		h.logError(r.Context(), "list vendors failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, vendors)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "vendorID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid vendor id"))
		return
	}

	vendor, err := h.vendors.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, vendor)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "vendorID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid vendor id"))
		return
	}

	var req models.UpdateVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	vendor, err := h.vendors.Update(r.Context(), id, req)
	if err != nil {
		h.logError(r.Context(), "update vendor failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, vendor)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "vendorID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid vendor id"))
		return
	}

	if err := h.vendors.Delete(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
