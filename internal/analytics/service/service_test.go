package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payshield/internal/audit"
	"payshield/internal/contract/jsonbackend"
	contractModel "payshield/internal/contract/models"
	vendorModel "payshield/internal/vendors/models"
	vendorService "payshield/internal/vendors/service"
	vendorStore "payshield/internal/vendors/store"
	"payshield/pkg/fingerprint"
)

func TestDashboardCombinesSources(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend, err := jsonbackend.New(t.TempDir(), jsonbackend.WithLogger(logger))
	require.NoError(t, err)
	vendors := vendorService.New(vendorStore.NewMemory(), logger)
	svc := New(backend, vendors, logger)

	_, err = backend.AppendThreat(ctx, contractModel.Threat{
		ThreatID:            "threat_one",
		VendorHash:          fingerprint.HashVendor("scam-vendor.com"),
		PaymentTargetType:   string(fingerprint.TargetWalletAddress),
		PaymentTargetHash:   fingerprint.HashPaymentTarget("0xabc", fingerprint.TargetWalletAddress),
		InvoiceTemplateHash: fingerprint.HashInvoiceTemplate("INVOICE $100"),
		AmountBucket:        "1k-5k",
		Currency:            "USDC",
		FraudScore:          0.9,
		Reasons:             []string{"SUSPICIOUS_WALLET_CHANGE"},
		FirstSeenAt:         fingerprint.Timestamp(time.Now()),
		LastSeenAt:          fingerprint.Timestamp(time.Now()),
		TimesSeen:           1,
		ReporterID:          "acme_corp",
		ReporterHash:        fingerprint.HashCompanyID("acme_corp"),
		Verified:            true,
	})
	require.NoError(t, err)

	_, err = backend.RecordPayment(ctx, "acme_corp", contractModel.Transaction{
		Vendor: "CloudTech", Amount: 4200,
		Status: contractModel.StatusPaid, Decision: contractModel.DecisionApprove,
	})
	require.NoError(t, err)

	risky, err := vendors.Create(ctx, vendorModel.CreateVendorRequest{Name: "Shady Imports"})
	require.NoError(t, err)
	require.NoError(t, vendors.RaiseRiskScore(ctx, risky.ID, 0.7))
	_, err = vendors.Create(ctx, vendorModel.CreateVendorRequest{Name: "CloudTech", IsTrusted: true})
	require.NoError(t, err)

	dashboard, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, dashboard.Threats.TotalThreats)
	assert.Equal(t, 1, dashboard.Treasury.TotalCompanies)
	assert.Equal(t, 4200.0, dashboard.Treasury.TotalPaid)
	require.Len(t, dashboard.TopRiskyVendors, 1, "zero-risk vendors stay off the ranking")
	assert.Equal(t, "Shady Imports", dashboard.TopRiskyVendors[0].Name)
	assert.Equal(t, 0.7, dashboard.TopRiskyVendors[0].RiskScore)
	require.Len(t, dashboard.RecentThreats, 1)
	assert.Equal(t, "threat_one", dashboard.RecentThreats[0].ThreatID)
}

func TestAuditTrailScopedToCompany(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend, err := jsonbackend.New(t.TempDir(), jsonbackend.WithLogger(logger))
	require.NoError(t, err)

	store := audit.NewMemory(10)
	require.NoError(t, store.Append(ctx, audit.Event{CompanyID: "acme_corp", Subject: "inv_1", Action: audit.ActionInvoiceProcessed}))
	require.NoError(t, store.Append(ctx, audit.Event{CompanyID: "globex", Subject: "inv_2", Action: audit.ActionInvoiceProcessed}))

	svc := New(backend, vendorService.New(vendorStore.NewMemory(), logger), logger, WithAuditStore(store))

	events, err := svc.AuditTrail(ctx, "acme_corp", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "inv_1", events[0].Subject)
}

func TestAuditTrailWithoutStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend, err := jsonbackend.New(t.TempDir(), jsonbackend.WithLogger(logger))
	require.NoError(t, err)
	svc := New(backend, vendorService.New(vendorStore.NewMemory(), logger), logger)

	events, err := svc.AuditTrail(context.Background(), "acme_corp", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
