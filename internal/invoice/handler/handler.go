// Package handler exposes invoice processing over HTTP.
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

	"payshield/internal/invoice/models"
	"payshield/internal/platform/metrics"
	"payshield/internal/platform/middleware"
	"payshield/internal/transport/http/shared"
	dErrors "payshield/pkg/domain-errors"
)

// Service defines the interface for invoice operations.
type Service interface {
	Process(ctx context.Context, companyID string, req models.ProcessInvoiceRequest) (*models.ProcessInvoiceResponse, error)
	Get(ctx context.Context, companyID string, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, companyID, status, vendor string, limit, offset int) ([]*models.Invoice, error)
}

// Handler handles invoice endpoints.
type Handler struct {
	logger       *slog.Logger
	invoices     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new invoice Handler.
func New(invoices Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		invoices:     invoices,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the invoice routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	invoiceRouter := chi.NewRouter()
	invoiceRouter.Use(middleware.Recovery(h.logger))
	invoiceRouter.Use(middleware.RequestID)
	invoiceRouter.Use(middleware.Logger(h.logger))
	invoiceRouter.Use(middleware.Timeout(30 * time.Second))
	invoiceRouter.Use(middleware.ContentTypeJSON)
	invoiceRouter.Use(middleware.LatencyMiddleware(h.metrics))
	invoiceRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	invoiceRouter.Post("/process", h.handleProcess)
	invoiceRouter.Get("/", h.handleList)
	invoiceRouter.Get("/{invoiceID}", h.handleGet)

	r.Mount("/api/invoices", invoiceRouter)
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

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	var req models.ProcessInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.invoices.Process(r.Context(), companyID, req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "invoice processing failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "invoiceID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid invoice id"))
		return
	}

	inv, err := h.invoices.Get(r.Context(), companyID, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, inv)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	invoices, err := h.invoices.List(r.Context(), companyID,
		q.Get("status"), q.Get("vendor"), queryInt(q.Get("limit")), queryInt(q.Get("offset")))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, invoices)
}

func queryInt(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
