package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	contractModel "payshield/internal/contract/models"
	"payshield/internal/mandate/handler/mocks"
	"payshield/internal/mandate/models"
	"payshield/internal/platform/middleware"
	dErrors "payshield/pkg/domain-errors"
)

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != "valid-token" {
		return nil, assert.AnError
	}
	return &middleware.JWTClaims{UserID: "user-1", CompanyID: "acme_corp"}, nil
}

func newMandateRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, logger, nil, staticValidator{})
	router := chi.NewRouter()
	h.Register(router)
	return router, svc
}

func doJSON(t *testing.T, router chi.Router, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	router, _ := newMandateRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/mandates/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateMandate(t *testing.T) {
	router, svc := newMandateRouter(t)

	req := models.CreateMandateRequest{Name: "Auto-pay small invoices", AutoPay: true}
	svc.EXPECT().
		Create(gomock.Any(), "acme_corp", req).
		Return(&contractModel.Policy{
			CompanyID: "acme_corp",
			PolicyID:  "auto_pay_small_invoices",
			Name:      req.Name,
			AutoPay:   true,
			Active:    true,
		}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/mandates/", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var policy contractModel.Policy
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&policy))
	assert.Equal(t, "auto_pay_small_invoices", policy.PolicyID)
	assert.Equal(t, "acme_corp", policy.CompanyID, "company always comes from the token")
}

func TestCreateMandateConflict(t *testing.T) {
	router, svc := newMandateRouter(t)

	svc.EXPECT().
		Create(gomock.Any(), "acme_corp", gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeConflict, "mandate already exists"))

	rec := doJSON(t, router, http.MethodPost, "/api/mandates/", models.CreateMandateRequest{Name: "Dup"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListMandates(t *testing.T) {
	router, svc := newMandateRouter(t)

	t.Run("active only by default", func(t *testing.T) {
		svc.EXPECT().
			List(gomock.Any(), "acme_corp", true).
			Return([]contractModel.Policy{{PolicyID: "p1", Active: true}}, nil)

		rec := doJSON(t, router, http.MethodGet, "/api/mandates/", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var policies []contractModel.Policy
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&policies))
		require.Len(t, policies, 1)
	})

	t.Run("all when requested", func(t *testing.T) {
		svc.EXPECT().
			List(gomock.Any(), "acme_corp", false).
			Return(nil, nil)

		rec := doJSON(t, router, http.MethodGet, "/api/mandates/?active_only=false", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetMandateNotFound(t *testing.T) {
	router, svc := newMandateRouter(t)

	svc.EXPECT().
		Get(gomock.Any(), "acme_corp", "missing").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "mandate not found"))

	rec := doJSON(t, router, http.MethodGet, "/api/mandates/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleMandate(t *testing.T) {
	router, svc := newMandateRouter(t)

	svc.EXPECT().
		Toggle(gomock.Any(), "acme_corp", "auto_pay_small_invoices").
		Return(&contractModel.Policy{PolicyID: "auto_pay_small_invoices", Active: false}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/mandates/auto_pay_small_invoices/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var policy contractModel.Policy
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&policy))
	assert.False(t, policy.Active)
}

func TestDeleteMandate(t *testing.T) {
	router, svc := newMandateRouter(t)

	svc.EXPECT().
		Delete(gomock.Any(), "acme_corp", "old_policy").
		Return(nil)

	rec := doJSON(t, router, http.MethodDelete, "/api/mandates/old_policy", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTemplates(t *testing.T) {
	router, svc := newMandateRouter(t)

	svc.EXPECT().Templates().Return([]contractModel.Policy{{PolicyID: "auto_pay_for_small_trusted_invoices"}})

	rec := doJSON(t, router, http.MethodGet, "/api/mandates/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var templates []contractModel.Policy
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&templates))
	require.Len(t, templates, 1)
}
