package jsonbackend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"payshield/internal/contract/models"
	"payshield/pkg/fingerprint"
)

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testClock is a manually advanced timestamp source.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBackend(t *testing.T) (*Backend, *testClock, string) {
	t.Helper()
	dir := t.TempDir()
	clock := &testClock{now: testBase}
	b, err := New(dir,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(clock.Now),
	)
	require.NoError(t, err)
	return b, clock, dir
}

func samplePolicy(companyID, policyID string) models.Policy {
	max := 5000.0
	return models.Policy{
		CompanyID:     companyID,
		PolicyID:      policyID,
		Name:          "Auto-pay small invoices",
		MaxAmount:     &max,
		MinConfidence: 0.85,
		MaxFraudScore: 0.15,
		AutoPay:       true,
		Active:        true,
	}
}

func sampleThreat(threatID, vendor, reporter string) models.Threat {
	return models.Threat{
		ThreatID:            threatID,
		VendorHash:          fingerprint.HashVendor(vendor),
		PaymentTargetType:   string(fingerprint.TargetWalletAddress),
		PaymentTargetHash:   fingerprint.HashPaymentTarget("0xDEADBEEF", fingerprint.TargetWalletAddress),
		InvoiceTemplateHash: fingerprint.HashInvoiceTemplate("INVOICE 2026-01-15 $4,200.00 NET 30"),
		AmountBucket:        "1k-5k",
		Currency:            "USD",
		FraudScore:          0.9,
		Reasons:             []string{"SUSPICIOUS_WALLET_CHANGE"},
		FirstSeenAt:         fingerprint.Timestamp(testBase),
		LastSeenAt:          fingerprint.Timestamp(testBase),
		TimesSeen:           1,
		ReporterID:          "acme_corp",
		ReporterHash:        fingerprint.HashCompanyID(reporter),
		Verified:            true,
	}
}

func sampleTransaction(txID string, amount float64, status, decision string) models.Transaction {
	return models.Transaction{
		TxID:      txID,
		InvoiceID: "inv_001",
		Vendor:    "Acme Supplies",
		VendorID:  "vendor_acme",
		Amount:    amount,
		Currency:  "USDC",
		Status:    status,
		Decision:  decision,
		Meta: models.TransactionMeta{
			FraudScore: 0.05,
			Confidence: 0.95,
		},
	}
}

func TestNewCreatesDocumentsLazily(t *testing.T) {
	b, _, dir := newTestBackend(t)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "no document should exist before first access")

	_, err = b.GetPolicies(context.Background(), "acme_corp")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "PolicyContract.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "TreasuryContract.json"))
	require.ErrorIs(t, err, os.ErrNotExist, "untouched documents stay unmaterialized")
}

func TestStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	b, _, dir := newTestBackend(t)

	require.NoError(t, b.AddPolicy(ctx, samplePolicy("acme_corp", "auto_pay_small")))
	_, err := b.RecordPayment(ctx, "acme_corp", sampleTransaction("tx_1", 4200, models.StatusPaid, models.DecisionApprove))
	require.NoError(t, err)

	reopened, err := New(dir, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	policies, err := reopened.GetPolicies(ctx, "acme_corp")
	require.NoError(t, err)
	require.Len(t, policies, 1)

	treasury, err := reopened.CompanyTreasury(ctx, "acme_corp")
	require.NoError(t, err)
	require.Equal(t, float64(StartingBalance)-4200, treasury.Balance)
}
