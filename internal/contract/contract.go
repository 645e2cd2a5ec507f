// Package contract defines the smart-contract backend abstraction.
//
// The Backend interface is the only surface the rest of the application
// depends on. The JSON-file implementation in jsonbackend is the current
// backend; an on-chain implementation must satisfy the identical contract,
// so callers never learn which storage technology is underneath.
package contract

import (
	"context"

	"payshield/internal/contract/models"
)

// StartingBalance is credited to a company treasury created by its first
// recorded payment, whatever backend holds the ledger.
const StartingBalance = 100000

// Backend is the complete contract operation surface: policy ledger, threat
// intelligence ledger, and treasury ledger.
//
// Absence is not an error: lookups for unknown policies and threats return
// nil, and unknown companies get a synthetic zero-balance treasury. Errors
// are reserved for validation failures and storage problems.
type Backend interface {
	// Policy ledger.
	GetPolicies(ctx context.Context, companyID string) ([]models.Policy, error)
	GetPolicy(ctx context.Context, companyID, policyID string) (*models.Policy, error)
	// UpdatePolicies replaces the entire policy set of one company; other
	// companies' policies are untouched.
	UpdatePolicies(ctx context.Context, companyID string, policies []models.Policy) error
	// AddPolicy upserts keyed on (companyId, policyId) with last-write-wins
	// semantics.
	AddPolicy(ctx context.Context, policy models.Policy) error
	// DeletePolicy reports whether a record was removed; false is a no-op,
	// not an error.
	DeletePolicy(ctx context.Context, companyID, policyID string) (bool, error)

	// Threat intelligence ledger.
	AppendThreat(ctx context.Context, threat models.Threat) (string, error)
	// ListThreats returns threats sorted by lastSeenAt descending,
	// optionally filtered by vendor hash. limit <= 0 applies the default.
	ListThreats(ctx context.Context, vendorHash string, limit int) ([]models.Threat, error)
	GetThreat(ctx context.Context, threatID string) (*models.Threat, error)
	ThreatStatistics(ctx context.Context) (models.ThreatStatistics, error)

	// Treasury ledger.
	RecordPayment(ctx context.Context, companyID string, tx models.Transaction) (string, error)
	CompanyTreasury(ctx context.Context, companyID string) (models.CompanyTreasury, error)
	ListTransactions(ctx context.Context, companyID, status string, limit int) ([]models.Transaction, error)
	GlobalTreasuryStats(ctx context.Context) (models.GlobalTreasuryStats, error)
}
