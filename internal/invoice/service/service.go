// Package service runs invoices through the decision pipeline: gather
// evidence, score fraud, apply the company's mandate policies, and record
// the outcome in the invoice store and the treasury ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"payshield/internal/audit"
	"payshield/internal/contract"
	contractModel "payshield/internal/contract/models"
	"payshield/internal/invoice/cache"
	"payshield/internal/invoice/models"
	"payshield/internal/invoice/store"
	"payshield/internal/platform/metrics"
	"payshield/internal/threat"
	threatModel "payshield/internal/threat/models"
	vendorModel "payshield/internal/vendors/models"
	dErrors "payshield/pkg/domain-errors"
	"payshield/pkg/fingerprint"
	"payshield/pkg/platform/sentinel"
	"payshield/pkg/requestcontext"
)

// Default decision thresholds for invoices no policy claims.
const (
	highConfidenceThreshold = 0.85
	lowFraudThreshold       = 0.15
)

// VendorDirectory is the slice of the vendor service used during
// processing.
type VendorDirectory interface {
	GetByName(ctx context.Context, name string) (*vendorModel.Vendor, error)
	RaiseRiskScore(ctx context.Context, id uuid.UUID, score float64) error
}

// ThreatNetwork is the slice of the threat service used during processing.
type ThreatNetwork interface {
	CheckVendor(ctx context.Context, vendorIdentifier string) (*threatModel.VendorStatus, error)
	Report(ctx context.Context, req threatModel.ReportThreatRequest) (*threatModel.ReportThreatResponse, error)
}

// Config carries the service dependencies.
type Config struct {
	Store          store.Store
	Vendors        VendorDirectory
	Network        ThreatNetwork
	Backend        contract.Backend
	Cache          *cache.VendorStatusCache
	Audit          *audit.Trail
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	BlockThreshold float64
	HoldThreshold  float64
}

// Service processes and serves invoices.
type Service struct {
	store          store.Store
	vendors        VendorDirectory
	network        ThreatNetwork
	backend        contract.Backend
	cache          *cache.VendorStatusCache
	audit          *audit.Trail
	logger         *slog.Logger
	metrics        *metrics.Metrics
	blockThreshold float64
	holdThreshold  float64
	now            func() time.Time
}

func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:          cfg.Store,
		vendors:        cfg.Vendors,
		network:        cfg.Network,
		backend:        cfg.Backend,
		cache:          cfg.Cache,
		audit:          cfg.Audit,
		logger:         logger,
		metrics:        cfg.Metrics,
		blockThreshold: cfg.BlockThreshold,
		holdThreshold:  cfg.HoldThreshold,
		now:            time.Now,
	}
}

// evidence is everything the decision step needs, gathered concurrently.
type evidence struct {
	vendor    *vendorModel.Vendor
	policies  []contractModel.Policy
	network   *threatModel.VendorStatus
	duplicate bool
}

// Process runs one invoice through the pipeline and returns the decision.
// The invoice record, the treasury transaction, and (on block) the threat
// report are separate writes with no cross-store atomicity; a failure
// between them surfaces to the caller with the earlier writes intact.
func (s *Service) Process(ctx context.Context, companyID string, req models.ProcessInvoiceRequest) (*models.ProcessInvoiceResponse, error) {
	if companyID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "companyId is required")
	}
	vendorName := strings.TrimSpace(req.Vendor)
	if vendorName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "vendor is required")
	}
	if req.Amount <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}

	now := s.now().UTC()
	invoiceNumber := strings.TrimSpace(req.InvoiceNumber)
	if invoiceNumber == "" {
		invoiceNumber = fmt.Sprintf("INV-%s", now.Format("20060102_150405"))
	}
	currency := fingerprint.NormalizeCurrency(req.Currency)
	if currency == "" {
		currency = "USDC"
	}

	inv := &models.Invoice{
		ID:            uuid.New(),
		CompanyID:     companyID,
		InvoiceNumber: invoiceNumber,
		Vendor:        vendorName,
		Amount:        req.Amount,
		Currency:      currency,
		PONumber:      strings.TrimSpace(req.PONumber),
		LineItems:     req.LineItems,
		Status:        models.StatusPending,
		CreatedAt:     now,
	}
	if req.InvoiceText != "" {
		inv.TemplateHash = fingerprint.HashInvoiceTemplate(req.InvoiceText)
	}

	// Duplicate detection must run before this invoice is stored, or the
	// lookup would find the new record itself.
	duplicate := false
	if _, err := s.store.GetByNumber(ctx, companyID, vendorName, invoiceNumber); err == nil {
		duplicate = true
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check duplicate invoice")
	}

	if err := s.store.Create(ctx, inv); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create invoice record")
	}

	ev, err := s.gatherEvidence(ctx, inv)
	if err != nil {
		return nil, err
	}
	ev.duplicate = duplicate

	reasons := s.deriveReasons(inv, ev)
	fraudScore := threat.ScoreFromReasons(reasons)
	if ev.network != nil && ev.network.HasThreats && ev.network.MaxFraudScore > fraudScore {
		fraudScore = ev.network.MaxFraudScore
	}
	confidence := scoreConfidence(inv, ev)

	decision, reason, policyMatched, autoPay := s.decide(inv, ev, fraudScore, confidence)

	txID, err := s.recordOutcome(ctx, inv, decision, autoPay, fraudScore, confidence, reasons, policyMatched, reason)
	if err != nil {
		return nil, err
	}

	if decision == contractModel.DecisionBlock {
		s.reportBlock(ctx, inv, ev, req.InvoiceText, fraudScore, reasons)
	}

	processedAt := s.now().UTC()
	inv.Status = invoiceStatus(decision, autoPay)
	inv.ConfidenceScore = confidence
	inv.FraudScore = fraudScore
	inv.FraudReasons = reasons
	inv.Decision = decision
	inv.DecisionReason = reason
	inv.PolicyMatched = policyMatched
	inv.TxID = txID
	inv.ProcessedAt = &processedAt
	if ev.vendor != nil {
		inv.VendorID = ev.vendor.ID.String()
	}
	if err := s.store.Update(ctx, inv); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update invoice record")
	}

	s.metrics.IncInvoicesProcessed(decision)
	s.audit.Record(ctx, audit.Event{
		CompanyID: companyID,
		Subject:   inv.ID.String(),
		Action:    audit.ActionInvoiceProcessed,
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "invoice processed",
		"invoice_id", inv.ID.String(),
		"company_id", companyID,
		"decision", decision,
		"fraud_score", fraudScore,
		"confidence", confidence,
	)

	return &models.ProcessInvoiceResponse{
		Invoice:        *inv,
		Decision:       decision,
		DecisionReason: reason,
		FraudScore:     fraudScore,
		Confidence:     confidence,
		FraudReasons:   reasons,
		PolicyMatched:  policyMatched,
		TxID:           txID,
	}, nil
}

func (s *Service) gatherEvidence(ctx context.Context, inv *models.Invoice) (*evidence, error) {
	ev := &evidence{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := s.vendors.GetByName(gctx, inv.Vendor)
		if err != nil {
			if dErrors.Is(err, dErrors.CodeNotFound) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "look up vendor")
		}
		ev.vendor = v
		return nil
	})

	g.Go(func() error {
		policies, err := s.backend.GetPolicies(gctx, inv.CompanyID)
		if err != nil {
			return err
		}
		active := policies[:0]
		for _, p := range policies {
			if p.Active {
				active = append(active, p)
			}
		}
		ev.policies = active
		return nil
	})

	g.Go(func() error {
		vendorHash := fingerprint.HashVendor(inv.Vendor)
		if cached := s.cache.Get(gctx, vendorHash); cached != nil {
			ev.network = cached
			return nil
		}
		status, err := s.network.CheckVendor(gctx, inv.Vendor)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "check vendor against network")
		}
		ev.network = status
		if err := s.cache.Set(gctx, vendorHash, status); err != nil {
			s.logger.WarnContext(gctx, "cache vendor status", "error", err.Error())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *Service) deriveReasons(inv *models.Invoice, ev *evidence) []string {
	var reasons []string
	if ev.vendor == nil {
		reasons = append(reasons, threatModel.ReasonVendorNotRecognized)
	}
	if ev.duplicate {
		reasons = append(reasons, threatModel.ReasonDuplicateInvoice)
	}
	if inv.PONumber == "" {
		reasons = append(reasons, threatModel.ReasonNoPOMatch)
	}
	if inv.TemplateHash != "" && ev.network != nil {
		for _, t := range ev.network.Threats {
			if t.InvoiceTemplateHash == inv.TemplateHash {
				reasons = append(reasons, threatModel.ReasonTemplateSimilarityKnownScam)
				break
			}
		}
	}
	return reasons
}

func scoreConfidence(inv *models.Invoice, ev *evidence) float64 {
	confidence := 0.95
	if ev.vendor == nil {
		confidence -= 0.2
	} else if ev.vendor.IsTrusted {
		confidence += 0.05
	}
	if inv.PONumber == "" {
		confidence -= 0.15
	}
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// decide picks the outcome: network block wins, then the fraud score, then
// the first matching active policy, then the default thresholds.
func (s *Service) decide(inv *models.Invoice, ev *evidence, fraudScore, confidence float64) (decision, reason, policyMatched string, autoPay bool) {
	if ev.network != nil && ev.network.IsBlocked {
		return contractModel.DecisionBlock,
			"vendor is blocked by the threat intelligence network", "", false
	}
	if fraudScore >= s.blockThreshold {
		return contractModel.DecisionBlock,
			fmt.Sprintf("fraud score %.2f exceeds block threshold %.2f", fraudScore, s.blockThreshold), "", false
	}

	for _, p := range ev.policies {
		if p.BlockUnknownVendors && p.AutoBlock && ev.vendor == nil {
			return contractModel.DecisionBlock,
				fmt.Sprintf("policy %q blocks unknown vendors", p.Name), p.PolicyID, false
		}
		if !amountInRange(p, inv.Amount) {
			continue
		}
		if p.AutoPay {
			if confidence >= p.MinConfidence && fraudScore <= p.MaxFraudScore {
				return contractModel.DecisionApprove,
					fmt.Sprintf("policy %q auto-approved the payment", p.Name), p.PolicyID, true
			}
			continue
		}
		if p.MinAmount != nil {
			return contractModel.DecisionHold,
				fmt.Sprintf("policy %q requires manual review above %.2f", p.Name, *p.MinAmount), p.PolicyID, false
		}
	}

	if fraudScore >= s.holdThreshold {
		return contractModel.DecisionHold,
			fmt.Sprintf("fraud score %.2f exceeds hold threshold %.2f", fraudScore, s.holdThreshold), "", false
	}
	if confidence >= highConfidenceThreshold && fraudScore <= lowFraudThreshold {
		return contractModel.DecisionApprove, "high confidence, low fraud risk", "", false
	}
	return contractModel.DecisionHold, "confidence too low for automatic approval", "", false
}

func amountInRange(p contractModel.Policy, amount float64) bool {
	if p.MaxAmount != nil && amount > *p.MaxAmount {
		return false
	}
	if p.MinAmount != nil && amount < *p.MinAmount {
		return false
	}
	return true
}

// recordOutcome writes the treasury transaction matching the decision. An
// auto-paid approval lands as PAID; a plain approval as PENDING awaiting
// execution through the treasury API.
func (s *Service) recordOutcome(ctx context.Context, inv *models.Invoice, decision string, autoPay bool, fraudScore, confidence float64, reasons []string, policyMatched, reason string) (string, error) {
	tx := contractModel.Transaction{
		InvoiceID: inv.ID.String(),
		Vendor:    inv.Vendor,
		VendorID:  inv.VendorID,
		Amount:    inv.Amount,
		Currency:  inv.Currency,
		Decision:  decision,
		Meta: contractModel.TransactionMeta{
			FraudScore:    fraudScore,
			Confidence:    confidence,
			PolicyMatched: policyMatched,
		},
	}
	switch decision {
	case contractModel.DecisionApprove:
		if autoPay {
			tx.Status = contractModel.StatusPaid
		} else {
			tx.Status = contractModel.StatusPending
		}
	case contractModel.DecisionBlock:
		tx.Status = contractModel.StatusBlocked
		tx.Meta.BlockReasons = reasons
	default:
		tx.Status = contractModel.StatusHeld
		tx.Meta.HoldReason = reason
		tx.Meta.ManualReview = true
	}

	txID, err := s.backend.RecordPayment(ctx, inv.CompanyID, tx)
	if err != nil {
		return "", err
	}
	return txID, nil
}

// reportBlock shares the blocked invoice with the network and nudges the
// vendor risk score. Both are best effort: the block decision stands even
// if the network write fails.
func (s *Service) reportBlock(ctx context.Context, inv *models.Invoice, ev *evidence, invoiceText string, fraudScore float64, reasons []string) {
	_, err := s.network.Report(ctx, threatModel.ReportThreatRequest{
		VendorIdentifier: inv.Vendor,
		InvoiceTemplate:  invoiceText,
		Amount:           inv.Amount,
		Currency:         inv.Currency,
		FraudScore:       fraudScore,
		Reasons:          reasons,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "report blocked invoice to network",
			"invoice_id", inv.ID.String(), "error", err.Error())
	}
	s.cache.Invalidate(ctx, fingerprint.HashVendor(inv.Vendor))

	if ev.vendor != nil {
		if err := s.vendors.RaiseRiskScore(ctx, ev.vendor.ID, fraudScore); err != nil {
			s.logger.WarnContext(ctx, "raise vendor risk score",
				"vendor_id", ev.vendor.ID.String(), "error", err.Error())
		}
	}
}

func invoiceStatus(decision string, autoPay bool) string {
	switch decision {
	case contractModel.DecisionApprove:
		if autoPay {
			return models.StatusPaid
		}
		return models.StatusApproved
	case contractModel.DecisionBlock:
		return models.StatusBlocked
	default:
		return models.StatusHeld
	}
}

// Get returns one invoice, scoped to the caller's company.
func (s *Service) Get(ctx context.Context, companyID string, id uuid.UUID) (*models.Invoice, error) {
	inv, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "invoice not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get invoice")
	}
	if inv.CompanyID != companyID {
		return nil, dErrors.New(dErrors.CodeNotFound, "invoice not found")
	}
	return inv, nil
}

// List returns the company's invoices, newest first.
func (s *Service) List(ctx context.Context, companyID, status, vendor string, limit, offset int) ([]*models.Invoice, error) {
	if status != "" {
		switch status {
		case models.StatusPending, models.StatusApproved, models.StatusPaid,
			models.StatusBlocked, models.StatusHeld:
		default:
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", status)
		}
	}
	invoices, err := s.store.List(ctx, store.Filter{
		CompanyID: companyID,
		Status:    status,
		Vendor:    vendor,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list invoices")
	}
	return invoices, nil
}
