// Package service implements threat reporting and vendor checks over the
// threat intelligence ledger.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"payshield/internal/contract"
	contractModel "payshield/internal/contract/models"
	"payshield/internal/threat"
	"payshield/internal/threat/models"
	"payshield/internal/threat/publisher"
	dErrors "payshield/pkg/domain-errors"
	"payshield/pkg/fingerprint"
	"payshield/pkg/requestcontext"
)

// Service hashes incoming reports, records them on the ledger, and publishes
// them to the threat feed.
type Service struct {
	backend        contract.Backend
	publisher      publisher.Publisher
	logger         *slog.Logger
	reporterID     string
	blockThreshold float64
	now            func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a threat Service. reporterID identifies this node on reports
// that arrive without an authenticated company; blockThreshold is the max
// fraud score at or above which a vendor check recommends blocking.
func New(backend contract.Backend, pub publisher.Publisher, logger *slog.Logger,
	reporterID string, blockThreshold float64, opts ...Option) *Service {
	s := &Service{
		backend:        backend,
		publisher:      pub,
		logger:         logger,
		reporterID:     reporterID,
		blockThreshold: blockThreshold,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report anonymizes and records a fraud report. Identifiers are hashed
// before they reach the ledger; the raw values are never persisted.
func (s *Service) Report(ctx context.Context, req models.ReportThreatRequest) (*models.ReportThreatResponse, error) {
	vendorIdentifier := strings.TrimSpace(req.VendorIdentifier)
	if vendorIdentifier == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "vendorIdentifier is required")
	}
	if req.FraudScore < 0 || req.FraudScore > 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "fraudScore must be in [0,1]")
	}

	fraudScore := req.FraudScore
	if fraudScore == 0 && len(req.Reasons) > 0 {
		fraudScore = threat.ScoreFromReasons(req.Reasons)
	}

	targetType := fingerprint.TargetWalletAddress
	target := req.WalletAddress
	if target == "" && req.BankAccount != "" {
		targetType = fingerprint.TargetBankAccount
		target = req.BankAccount
	}

	reporter := requestcontext.CompanyID(ctx)
	if reporter == "" {
		reporter = s.reporterID
	}

	stamp := fingerprint.Timestamp(s.now())
	record := contractModel.Threat{
		ThreatID:            fingerprint.NewThreatID(),
		VendorHash:          fingerprint.HashVendor(vendorIdentifier),
		PaymentTargetType:   string(targetType),
		PaymentTargetHash:   fingerprint.HashPaymentTarget(target, targetType),
		InvoiceTemplateHash: fingerprint.HashInvoiceTemplate(req.InvoiceTemplate),
		AmountBucket:        fingerprint.BucketAmount(req.Amount),
		Currency:            currencyOrDefault(req.Currency),
		FraudScore:          fraudScore,
		Reasons:             req.Reasons,
		FirstSeenAt:         stamp,
		LastSeenAt:          stamp,
		TimesSeen:           1,
		ReporterID:          reporter,
		ReporterHash:        fingerprint.HashCompanyID(reporter),
	}

	threatID, err := s.backend.AppendThreat(ctx, record)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, record); err != nil {
		// The ledger write already succeeded; a feed failure is not fatal.
		s.logger.WarnContext(ctx, "threat feed publish failed",
			"threat_id", threatID, "error", err.Error())
	}

	return &models.ReportThreatResponse{
		Success:    true,
		ThreatID:   threatID,
		VendorHash: record.VendorHash,
		Message:    "threat report recorded",
	}, nil
}

// CheckVendor summarizes the network's reports against one vendor and
// recommends how to treat its invoices.
func (s *Service) CheckVendor(ctx context.Context, vendorIdentifier string) (*models.VendorStatus, error) {
	vendorIdentifier = strings.TrimSpace(vendorIdentifier)
	if vendorIdentifier == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "vendorIdentifier is required")
	}

	vendorHash := fingerprint.HashVendor(vendorIdentifier)
	threats, err := s.backend.ListThreats(ctx, vendorHash, 0)
	if err != nil {
		return nil, err
	}

	status := &models.VendorStatus{
		VendorIdentifier: vendorIdentifier,
		VendorHash:       vendorHash,
		HasThreats:       len(threats) > 0,
		ThreatCount:      len(threats),
		Threats:          threats,
	}
	for _, t := range threats {
		if t.FraudScore > status.MaxFraudScore {
			status.MaxFraudScore = t.FraudScore
		}
		status.TimesSeen += t.TimesSeen
	}
	status.IsBlocked = status.MaxFraudScore >= s.blockThreshold

	switch {
	case status.IsBlocked:
		status.Recommendation = models.RecommendationBlock
		status.Message = "vendor has a high fraud score; do not process payment"
	case status.HasThreats:
		status.Recommendation = models.RecommendationHold
		status.Message = "vendor has fraud reports; requires manual review"
	default:
		status.Recommendation = models.RecommendationClear
		status.Message = "no fraud reports found on network"
	}
	return status, nil
}

// List returns threats, optionally filtered to one vendor hash.
func (s *Service) List(ctx context.Context, vendorHash string, limit int) ([]contractModel.Threat, error) {
	if vendorHash != "" && !fingerprint.IsValidHash(vendorHash, 64) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "vendorHash must be a 64-character hex digest")
	}
	return s.backend.ListThreats(ctx, vendorHash, limit)
}

// Get returns one threat by id.
func (s *Service) Get(ctx context.Context, threatID string) (*contractModel.Threat, error) {
	t, err := s.backend.GetThreat(ctx, threatID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "threat not found")
	}
	return t, nil
}

// Statistics returns the network-wide aggregate.
func (s *Service) Statistics(ctx context.Context) (contractModel.ThreatStatistics, error) {
	return s.backend.ThreatStatistics(ctx)
}

func currencyOrDefault(currency string) string {
	if strings.TrimSpace(currency) == "" {
		return "USDC"
	}
	return fingerprint.NormalizeCurrency(currency)
}
