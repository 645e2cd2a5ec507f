// Package fingerprint produces the stable, privacy-preserving digests and
// identifiers shared across the fraud intelligence network.
//
// Raw vendor names, payment targets, and invoice bodies never leave the
// process; only their normalized SHA-256 digests do. Normalization rules are
// part of the network protocol: two members hashing the same vendor must get
// the same digest, so changes here are breaking.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentTargetType distinguishes wallet addresses from bank accounts, which
// normalize differently before hashing.
type PaymentTargetType string

const (
	TargetWalletAddress PaymentTargetType = "wallet_address"
	TargetBankAccount   PaymentTargetType = "bank_account"
)

// HashVendor digests a vendor name or domain. Case and surrounding whitespace
// are ignored so "Acme.COM " and "acme.com" collide.
func HashVendor(vendor string) string {
	normalized := strings.ToLower(strings.TrimSpace(vendor))
	return hexDigest(normalized)
}

// HashPaymentTarget digests a wallet address or bank account number. Wallet
// addresses are lowercased; bank accounts additionally lose spaces and dashes
// so formatting differences do not defeat matching.
func HashPaymentTarget(target string, targetType PaymentTargetType) string {
	var normalized string
	switch targetType {
	case TargetBankAccount:
		normalized = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(target))
	default:
		normalized = strings.ToLower(strings.TrimSpace(target))
	}
	return hexDigest(normalized)
}

var (
	datePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	amountPattern = regexp.MustCompile(`\$?\d+[,.]?\d*`)
	digitPattern  = regexp.MustCompile(`\d+`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// HashInvoiceTemplate digests the structure of an invoice body. Dates,
// amounts, and digit runs are replaced with placeholders first, so the same
// template reused with different numbers produces the same fingerprint.
func HashInvoiceTemplate(invoiceText string) string {
	normalized := strings.ToLower(strings.TrimSpace(invoiceText))
	normalized = datePattern.ReplaceAllString(normalized, "DATE")
	normalized = amountPattern.ReplaceAllString(normalized, "AMOUNT")
	normalized = digitPattern.ReplaceAllString(normalized, "NUM")
	normalized = spacePattern.ReplaceAllString(normalized, " ")
	return hexDigest(normalized)
}

// HashCompanyID digests a company identifier for anonymous threat reporting,
// truncated to 32 hex characters.
func HashCompanyID(companyID string) string {
	return hexDigest(companyID)[:32]
}

func hexDigest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Amount bucket labels, coarse ranges standing in for exact amounts.
const (
	Bucket0To1K    = "0-1k"
	Bucket1KTo5K   = "1k-5k"
	Bucket5KTo20K  = "5k-20k"
	Bucket20KTo50K = "20k-50k"
	Bucket50KTo100 = "50k-100k"
	Bucket100KPlus = "100k+"
)

// BucketAmount maps an exact amount to its privacy bucket. Boundaries are
// inclusive on the lower bucket: 1000 is "0-1k", 1001 is "1k-5k".
func BucketAmount(amount float64) string {
	switch {
	case amount <= 1000:
		return Bucket0To1K
	case amount <= 5000:
		return Bucket1KTo5K
	case amount <= 20000:
		return Bucket5KTo20K
	case amount <= 50000:
		return Bucket20KTo50K
	case amount <= 100000:
		return Bucket50KTo100
	default:
		return Bucket100KPlus
	}
}

var bucketMidpoints = map[string]float64{
	Bucket0To1K:    500,
	Bucket1KTo5K:   3000,
	Bucket5KTo20K:  12500,
	Bucket20KTo50K: 35000,
	Bucket50KTo100: 75000,
	Bucket100KPlus: 150000,
}

// BucketMidpoint returns the representative value used when aggregating
// bucketed amounts. Unrecognized labels get a conservative 10000.
func BucketMidpoint(bucket string) float64 {
	if v, ok := bucketMidpoints[bucket]; ok {
		return v
	}
	return 10000
}

// NewThreatID generates a network-unique threat identifier.
func NewThreatID() string {
	return "threat_" + uuid.NewString()
}

// NewTransactionID generates a treasury transaction identifier from the
// current millisecond timestamp.
func NewTransactionID(now time.Time) string {
	return fmt.Sprintf("tx_%d", now.UTC().UnixMilli())
}

var nonWordPattern = regexp.MustCompile(`[^\w\s-]`)
var separatorPattern = regexp.MustCompile(`[-\s]+`)

// PolicyIDFromName derives a stable snake_case policy identifier from a
// human-readable policy name.
func PolicyIDFromName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = nonWordPattern.ReplaceAllString(normalized, "")
	return separatorPattern.ReplaceAllString(normalized, "_")
}

// IsValidHash reports whether s is a hex digest of the expected length.
func IsValidHash(s string, expectedLen int) bool {
	if len(s) != expectedLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// NormalizeCurrency uppercases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// Timestamp renders t the way the contract documents persist times:
// UTC, RFC 3339, second precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
