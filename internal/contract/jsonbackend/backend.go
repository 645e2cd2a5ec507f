// Package jsonbackend implements the contract backend over three JSON
// documents in a local directory.
//
// Every operation is one guarded read-modify-write cycle against a single
// document. The three documents have independent locks, so policy, threat,
// and treasury operations can proceed in parallel, but there is no
// cross-document transaction: an operation that touches two ledgers can see
// one write succeed and the other fail.
package jsonbackend

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"payshield/internal/contract"
	"payshield/internal/contract/docstore"
	"payshield/internal/contract/models"
	"payshield/internal/platform/metrics"
	"payshield/pkg/fingerprint"
)

const schemaVersion = "1.0.0"

// Document kinds, used as filenames and metric labels.
const (
	policyContract   = "PolicyContract"
	threatContract   = "ThreatIntelContract"
	treasuryContract = "TreasuryContract"
)

// StartingBalance mirrors the contract-level constant for local use.
const StartingBalance = contract.StartingBalance

const defaultListLimit = 100

// Backend stores contract state in JSON files under one directory.
type Backend struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	dedup   DedupStrategy

	policies *docstore.Store[models.PolicyDocument]
	threats  *docstore.Store[models.ThreatDocument]
	treasury *docstore.Store[models.TreasuryDocument]
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) { b.logger = logger }
}

// WithMetrics sets the metrics collector. nil disables metric recording.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Backend) { b.metrics = m }
}

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithDedupStrategy selects how resubmitted threats are matched to stored
// records. See DedupStrategy.
func WithDedupStrategy(s DedupStrategy) Option {
	return func(b *Backend) { b.dedup = s }
}

// New creates a backend rooted at dir, creating the directory if needed.
// The three contract documents are materialized lazily on first access.
func New(dir string, opts ...Option) (*Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create contracts directory %s: %w", dir, err)
	}

	b := &Backend{
		logger: slog.Default(),
		now:    time.Now,
		dedup:  DedupByThreatID,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.policies = docstore.New(dir, policyContract+".json", func() models.PolicyDocument {
		return models.PolicyDocument{
			Version:      schemaVersion,
			ContractType: policyContract,
			Description:  "Stores company payment policies and mandate rules",
			LastUpdated:  b.timestamp(),
			Policies:     []models.Policy{},
		}
	})
	b.threats = docstore.New(dir, threatContract+".json", func() models.ThreatDocument {
		return models.ThreatDocument{
			Version:      schemaVersion,
			ContractType: threatContract,
			Description:  "Decentralized threat intelligence network",
			LastUpdated:  b.timestamp(),
			Threats:      []models.Threat{},
		}
	})
	b.treasury = docstore.New(dir, treasuryContract+".json", func() models.TreasuryDocument {
		return models.TreasuryDocument{
			Version:      schemaVersion,
			ContractType: treasuryContract,
			Description:  "Treasury management and payment ledger",
			LastUpdated:  b.timestamp(),
			Companies:    []models.CompanyTreasury{},
		}
	})

	b.logger.Info("json contract backend initialized", "dir", dir)
	return b, nil
}

func (b *Backend) timestamp() string {
	return fingerprint.Timestamp(b.now())
}
