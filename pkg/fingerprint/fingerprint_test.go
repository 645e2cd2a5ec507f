package fingerprint

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVendor(t *testing.T) {
	t.Run("is case and whitespace insensitive", func(t *testing.T) {
		assert.Equal(t, HashVendor("acme.com"), HashVendor("  ACME.com "))
	})

	t.Run("produces 64 hex characters", func(t *testing.T) {
		h := HashVendor("acme.com")
		assert.Len(t, h, 64)
		assert.True(t, IsValidHash(h, 64))
	})

	t.Run("distinct vendors produce distinct hashes", func(t *testing.T) {
		assert.NotEqual(t, HashVendor("acme.com"), HashVendor("acme.org"))
	})
}

func TestHashPaymentTarget(t *testing.T) {
	t.Run("wallet addresses are case insensitive", func(t *testing.T) {
		assert.Equal(t,
			HashPaymentTarget("0xAbC123", TargetWalletAddress),
			HashPaymentTarget("0xabc123", TargetWalletAddress))
	})

	t.Run("bank accounts ignore spaces and dashes", func(t *testing.T) {
		assert.Equal(t,
			HashPaymentTarget("12-34 5678", TargetBankAccount),
			HashPaymentTarget("12345678", TargetBankAccount))
	})

	t.Run("bank accounts keep case", func(t *testing.T) {
		assert.NotEqual(t,
			HashPaymentTarget("GB29NWBK", TargetBankAccount),
			HashPaymentTarget("gb29nwbk", TargetBankAccount))
	})
}

func TestHashInvoiceTemplate(t *testing.T) {
	t.Run("amount and date changes do not change the fingerprint", func(t *testing.T) {
		a := HashInvoiceTemplate("INVOICE #1234\nAmount: $8,500\nDue: 2025-12-01")
		b := HashInvoiceTemplate("INVOICE #9876\nAmount: $120\nDue: 2026-01-15")
		assert.Equal(t, a, b)
	})

	t.Run("structural changes do change the fingerprint", func(t *testing.T) {
		a := HashInvoiceTemplate("INVOICE\nAmount: $100")
		b := HashInvoiceTemplate("RECEIPT\nAmount: $100")
		assert.NotEqual(t, a, b)
	})
}

func TestHashCompanyID(t *testing.T) {
	h := HashCompanyID("company_1")
	assert.Len(t, h, 32)
	assert.True(t, IsValidHash(h, 32))
}

func TestBucketAmount(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "0-1k"},
		{500, "0-1k"},
		{1000, "0-1k"},
		{1001, "1k-5k"},
		{5000, "1k-5k"},
		{5001, "5k-20k"},
		{20000, "5k-20k"},
		{35000, "20k-50k"},
		{75000, "50k-100k"},
		{100000, "50k-100k"},
		{100001, "100k+"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BucketAmount(tc.amount), "amount %v", tc.amount)
	}
}

func TestBucketMidpoint(t *testing.T) {
	assert.Equal(t, 500.0, BucketMidpoint("0-1k"))
	assert.Equal(t, 3000.0, BucketMidpoint("1k-5k"))
	assert.Equal(t, 12500.0, BucketMidpoint("5k-20k"))
	assert.Equal(t, 35000.0, BucketMidpoint("20k-50k"))
	assert.Equal(t, 75000.0, BucketMidpoint("50k-100k"))
	assert.Equal(t, 150000.0, BucketMidpoint("100k+"))
	assert.Equal(t, 10000.0, BucketMidpoint("not-a-bucket"))
}

func TestIdentifiers(t *testing.T) {
	t.Run("threat IDs are unique and prefixed", func(t *testing.T) {
		a, b := NewThreatID(), NewThreatID()
		require.True(t, strings.HasPrefix(a, "threat_"))
		assert.NotEqual(t, a, b)
	})

	t.Run("transaction IDs encode the millisecond timestamp", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, "tx_1772366400000", NewTransactionID(now))
	})

	t.Run("policy IDs are snake_case slugs", func(t *testing.T) {
		assert.Equal(t, "auto_small_invoices", PolicyIDFromName("Auto Small Invoices"))
		assert.Equal(t, "block_unknown_vendors", PolicyIDFromName("  Block unknown-vendors! "))
	})
}

func TestIsValidHash(t *testing.T) {
	assert.True(t, IsValidHash(strings.Repeat("a1", 32), 64))
	assert.False(t, IsValidHash(strings.Repeat("a1", 31), 64))
	assert.False(t, IsValidHash(strings.Repeat("zz", 32), 64))
	assert.False(t, IsValidHash("", 64))
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USDC", NormalizeCurrency(" usdc "))
}

func TestTimestamp(t *testing.T) {
	ts := Timestamp(time.Date(2026, 3, 1, 12, 34, 56, 789, time.FixedZone("X", 3600)))
	assert.Equal(t, "2026-03-01T11:34:56Z", ts)
}
