package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payshield/internal/contract"
	"payshield/internal/contract/jsonbackend"
	contractModel "payshield/internal/contract/models"
	"payshield/internal/threat/models"
	dErrors "payshield/pkg/domain-errors"
	"payshield/pkg/fingerprint"
	"payshield/pkg/requestcontext"
)

type capturePublisher struct {
	published []contractModel.Threat
}

func (p *capturePublisher) Publish(_ context.Context, t contractModel.Threat) error {
	p.published = append(p.published, t)
	return nil
}

func (p *capturePublisher) Close() {}

func newTestService(t *testing.T) (*Service, contract.Backend, *capturePublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend, err := jsonbackend.New(t.TempDir(), jsonbackend.WithLogger(logger))
	require.NoError(t, err)
	pub := &capturePublisher{}
	svc := New(backend, pub, logger, "payshield_node", 0.8)
	return svc, backend, pub
}

func TestReportHashesIdentifiers(t *testing.T) {
	ctx := context.Background()
	svc, backend, pub := newTestService(t)

	resp, err := svc.Report(ctx, models.ReportThreatRequest{
		VendorIdentifier: "scam-vendor.com",
		WalletAddress:    "0xabc123",
		InvoiceTemplate:  "INVOICE 2026-01-15 $15,000.00",
		Amount:           15000,
		FraudScore:       0.91,
		Reasons:          []string{models.ReasonNoPOMatch, models.ReasonHoursExceedLogs},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, fingerprint.HashVendor("scam-vendor.com"), resp.VendorHash)

	stored, err := backend.GetThreat(ctx, resp.ThreatID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 0.91, stored.FraudScore)
	assert.Equal(t, "5k-20k", stored.AmountBucket)
	assert.Equal(t, "USDC", stored.Currency)
	assert.Equal(t, string(fingerprint.TargetWalletAddress), stored.PaymentTargetType)
	assert.Equal(t, fingerprint.HashPaymentTarget("0xabc123", fingerprint.TargetWalletAddress), stored.PaymentTargetHash)
	assert.NotContains(t, stored.VendorHash, "scam", "raw identifiers never reach the ledger")

	require.Len(t, pub.published, 1)
	assert.Equal(t, resp.ThreatID, pub.published[0].ThreatID)
}

func TestReportDerivesScoreFromReasons(t *testing.T) {
	ctx := context.Background()
	svc, backend, _ := newTestService(t)

	resp, err := svc.Report(ctx, models.ReportThreatRequest{
		VendorIdentifier: "scam-vendor.com",
		Amount:           500,
		Reasons:          []string{models.ReasonSuspiciousWalletChange},
	})
	require.NoError(t, err)

	stored, err := backend.GetThreat(ctx, resp.ThreatID)
	require.NoError(t, err)
	assert.Equal(t, 0.9, stored.FraudScore)
}

func TestReportUsesBankAccountTarget(t *testing.T) {
	ctx := context.Background()
	svc, backend, _ := newTestService(t)

	resp, err := svc.Report(ctx, models.ReportThreatRequest{
		VendorIdentifier: "scam-vendor.com",
		BankAccount:      "12-3456-789",
		Amount:           500,
		FraudScore:       0.5,
	})
	require.NoError(t, err)

	stored, err := backend.GetThreat(ctx, resp.ThreatID)
	require.NoError(t, err)
	assert.Equal(t, string(fingerprint.TargetBankAccount), stored.PaymentTargetType)
	assert.Equal(t, fingerprint.HashPaymentTarget("12-3456-789", fingerprint.TargetBankAccount), stored.PaymentTargetHash)
}

func TestReportUsesAuthenticatedCompanyAsReporter(t *testing.T) {
	svc, backend, _ := newTestService(t)
	ctx := requestcontext.WithCompanyID(context.Background(), "acme_corp")

	resp, err := svc.Report(ctx, models.ReportThreatRequest{
		VendorIdentifier: "scam-vendor.com",
		Amount:           500,
		FraudScore:       0.5,
	})
	require.NoError(t, err)

	stored, err := backend.GetThreat(ctx, resp.ThreatID)
	require.NoError(t, err)
	assert.Equal(t, "acme_corp", stored.ReporterID)
	assert.Equal(t, fingerprint.HashCompanyID("acme_corp"), stored.ReporterHash)
}

func TestReportValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Report(ctx, models.ReportThreatRequest{Amount: 100, FraudScore: 0.5})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = svc.Report(ctx, models.ReportThreatRequest{VendorIdentifier: "x", Amount: 100, FraudScore: 1.5})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestCheckVendor(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	t.Run("clear when unknown", func(t *testing.T) {
		status, err := svc.CheckVendor(ctx, "honest-vendor.com")
		require.NoError(t, err)
		assert.False(t, status.HasThreats)
		assert.False(t, status.IsBlocked)
		assert.Equal(t, models.RecommendationClear, status.Recommendation)
	})

	t.Run("hold on low-score reports", func(t *testing.T) {
		_, err := svc.Report(ctx, models.ReportThreatRequest{
			VendorIdentifier: "iffy-vendor.com", Amount: 100, FraudScore: 0.4,
		})
		require.NoError(t, err)

		status, err := svc.CheckVendor(ctx, "iffy-vendor.com")
		require.NoError(t, err)
		assert.True(t, status.HasThreats)
		assert.False(t, status.IsBlocked)
		assert.Equal(t, 1, status.ThreatCount)
		assert.Equal(t, models.RecommendationHold, status.Recommendation)
	})

	t.Run("block at threshold", func(t *testing.T) {
		_, err := svc.Report(ctx, models.ReportThreatRequest{
			VendorIdentifier: "scam-vendor.com", Amount: 100, FraudScore: 0.8,
		})
		require.NoError(t, err)

		status, err := svc.CheckVendor(ctx, "scam-vendor.com")
		require.NoError(t, err)
		assert.True(t, status.IsBlocked)
		assert.Equal(t, 0.8, status.MaxFraudScore)
		assert.Equal(t, models.RecommendationBlock, status.Recommendation)
	})
}

func TestGetThreatNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "threat_missing")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
