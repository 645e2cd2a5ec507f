// Package handler exposes treasury operations over HTTP.
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
	"payshield/internal/transport/http/shared"
	"payshield/internal/treasury/models"
	dErrors "payshield/pkg/domain-errors"
)

// Service defines the interface for treasury operations.
type Service interface {
	Pay(ctx context.Context, companyID string, req models.PayRequest) (*models.PayResponse, error)
	Overview(ctx context.Context, companyID string) (contractModel.CompanyTreasury, error)
	Transactions(ctx context.Context, companyID, status string, limit int) ([]contractModel.Transaction, error)
	GlobalStats(ctx context.Context) (contractModel.GlobalTreasuryStats, error)
}

// Handler handles treasury endpoints.
type Handler struct {
	logger       *slog.Logger
	treasury     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new treasury Handler.
func New(treasury Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		treasury:     treasury,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the treasury routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	treasuryRouter := chi.NewRouter()
	treasuryRouter.Use(middleware.Recovery(h.logger))
	treasuryRouter.Use(middleware.RequestID)
	treasuryRouter.Use(middleware.Logger(h.logger))
	treasuryRouter.Use(middleware.Timeout(30 * time.Second))
	treasuryRouter.Use(middleware.ContentTypeJSON)
	treasuryRouter.Use(middleware.LatencyMiddleware(h.metrics))
	treasuryRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	treasuryRouter.Post("/pay", h.handlePay)
	treasuryRouter.Get("/overview", h.handleOverview)
	treasuryRouter.Get("/transactions", h.handleTransactions)
	treasuryRouter.Get("/stats", h.handleStats)

	r.Mount("/api/treasury", treasuryRouter)
}

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

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	var req models.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.treasury.Pay(r.Context(), companyID, req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "payment failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	overview, err := h.treasury.Overview(r.Context(), companyID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, overview)
}

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	txs, err := h.treasury.Transactions(r.Context(), companyID, status, limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, txs)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.treasury.GlobalStats(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}
