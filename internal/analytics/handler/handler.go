// Package handler exposes the analytics dashboard over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"payshield/internal/analytics/service"
	"payshield/internal/audit"
	"payshield/internal/platform/metrics"
	"payshield/internal/platform/middleware"
	"payshield/internal/transport/http/shared"
	dErrors "payshield/pkg/domain-errors"
)

// Service defines the interface for analytics operations.
type Service interface {
	Dashboard(ctx context.Context) (*service.Dashboard, error)
	AuditTrail(ctx context.Context, companyID string, limit int) ([]audit.Event, error)
}

// Handler handles analytics endpoints.
type Handler struct {
	logger       *slog.Logger
	analytics    Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new analytics Handler.
func New(analytics Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, analytics: analytics, metrics: m, jwtValidator: jwtValidator}
}

// Register registers the analytics routes with the chi router. The
// dashboard reads only aggregate, anonymized data, so it needs no auth;
// the audit trail is company-scoped and sits behind it.
func (h *Handler) Register(r chi.Router) {
	analyticsRouter := chi.NewRouter()
	analyticsRouter.Use(middleware.Recovery(h.logger))
	analyticsRouter.Use(middleware.RequestID)
	analyticsRouter.Use(middleware.Logger(h.logger))
	analyticsRouter.Use(middleware.Timeout(30 * time.Second))
	analyticsRouter.Use(middleware.LatencyMiddleware(h.metrics))
	analyticsRouter.Get("/dashboard", h.handleDashboard)
	analyticsRouter.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		authed.Get("/audit", h.handleAudit)
	})

	r.Mount("/api/analytics", analyticsRouter)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.analytics.Dashboard(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "build dashboard",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.GetCompanyID(r.Context())
	if companyID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	events, err := h.analytics.AuditTrail(r.Context(), companyID, limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, events)
}
