// Package handler exposes the threat intelligence network over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	contractModel "payshield/internal/contract/models"
	"payshield/internal/platform/metrics"
	"payshield/internal/platform/middleware"
	"payshield/internal/threat/models"
	"payshield/internal/transport/http/shared"
	dErrors "payshield/pkg/domain-errors"
)

// Service defines the interface for threat operations.
type Service interface {
	Report(ctx context.Context, req models.ReportThreatRequest) (*models.ReportThreatResponse, error)
	CheckVendor(ctx context.Context, vendorIdentifier string) (*models.VendorStatus, error)
	List(ctx context.Context, vendorHash string, limit int) ([]contractModel.Threat, error)
	Get(ctx context.Context, threatID string) (*contractModel.Threat, error)
	Statistics(ctx context.Context) (contractModel.ThreatStatistics, error)
}

// Handler handles threat network endpoints.
type Handler struct {
	logger       *slog.Logger
	threats      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new threat Handler.
func New(threats Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		threats:      threats,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the threat routes with the chi router. Submissions
// require authentication; queries are open to any network participant.
func (h *Handler) Register(r chi.Router) {
	threatRouter := chi.NewRouter()
	threatRouter.Use(middleware.Recovery(h.logger))
	threatRouter.Use(middleware.RequestID)
	threatRouter.Use(middleware.Logger(h.logger))
	threatRouter.Use(middleware.Timeout(30 * time.Second))
	threatRouter.Use(middleware.ContentTypeJSON)
	threatRouter.Use(middleware.LatencyMiddleware(h.metrics))

	threatRouter.Group(func(auth chi.Router) {
		auth.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		auth.Post("/threat/submit", h.handleSubmit)
	})

	threatRouter.Post("/vendor/check", h.handleCheckVendor)
	threatRouter.Get("/threats", h.handleList)
	threatRouter.Get("/threats/{threatID}", h.handleGet)
	threatRouter.Get("/statistics", h.handleStatistics)

	r.Mount("/api/network", threatRouter)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.ReportThreatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.threats.Report(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "threat submit failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleCheckVendor(w http.ResponseWriter, r *http.Request) {
	var req models.CheckVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	status, err := h.threats.CheckVendor(r.Context(), req.VendorIdentifier)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	vendorHash := r.URL.Query().Get("vendor_hash")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	threats, err := h.threats.List(r.Context(), vendorHash, limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, threats)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.threats.Get(r.Context(), chi.URLParam(r, "threatID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.threats.Statistics(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}
