// Package service implements treasury operations over the treasury ledger.
package service

import (
	"context"
	"log/slog"
	"strings"

	"payshield/internal/audit"
	"payshield/internal/contract"
	contractModel "payshield/internal/contract/models"
	"payshield/internal/treasury/models"
	dErrors "payshield/pkg/domain-errors"
	"payshield/pkg/requestcontext"
)

// Service executes payments and serves treasury views.
type Service struct {
	backend contract.Backend
	logger  *slog.Logger
	audit   *audit.Trail
}

// Option configures a Service.
type Option func(*Service)

// WithAudit attaches a decision audit trail.
func WithAudit(trail *audit.Trail) Option {
	return func(s *Service) { s.audit = trail }
}

func New(backend contract.Backend, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{backend: backend, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pay records a PAID transaction against the company treasury. The balance
// check happens before the write so an overdraft never reaches the ledger.
func (s *Service) Pay(ctx context.Context, companyID string, req models.PayRequest) (*models.PayResponse, error) {
	if strings.TrimSpace(req.Vendor) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "vendor is required")
	}
	if req.Amount <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}

	treasury, err := s.backend.CompanyTreasury(ctx, companyID)
	if err != nil {
		return nil, err
	}
	// A company unknown to the ledger starts at the initial balance once it
	// first records a payment; the synthetic view reports zero.
	balance := treasury.Balance
	if treasury.CreatedAt == "" {
		balance = contract.StartingBalance
	}
	if req.Amount > balance {
		return nil, dErrors.Newf(dErrors.CodeUnprocessable,
			"insufficient treasury balance: %0.2f available, %0.2f requested", balance, req.Amount)
	}

	tx := contractModel.Transaction{
		InvoiceID: req.InvoiceID,
		Vendor:    strings.TrimSpace(req.Vendor),
		VendorID:  req.VendorID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    contractModel.StatusPaid,
		Decision:  contractModel.DecisionApprove,
		Meta: contractModel.TransactionMeta{
			Confidence:     1,
			PaymentMethod:  req.PaymentMethod,
			PaymentAddress: req.PaymentAddress,
			ApprovedBy:     req.ApprovedBy,
			ManualReview:   req.ApprovedBy != "",
		},
	}
	txID, err := s.backend.RecordPayment(ctx, companyID, tx)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		CompanyID: companyID,
		Subject:   txID,
		Action:    audit.ActionPaymentExecuted,
		Decision:  contractModel.DecisionApprove,
		RequestID: requestcontext.RequestID(ctx),
	})

	after, err := s.backend.CompanyTreasury(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &models.PayResponse{
		Success: true,
		TxID:    txID,
		Balance: after.Balance,
		Message: "payment executed",
	}, nil
}

// Overview returns the company treasury, synthesizing an empty view for
// companies with no recorded activity.
func (s *Service) Overview(ctx context.Context, companyID string) (contractModel.CompanyTreasury, error) {
	return s.backend.CompanyTreasury(ctx, companyID)
}

// Transactions lists the company's transactions newest first.
func (s *Service) Transactions(ctx context.Context, companyID, status string, limit int) ([]contractModel.Transaction, error) {
	if status != "" {
		switch status {
		case contractModel.StatusPaid, contractModel.StatusBlocked,
			contractModel.StatusHeld, contractModel.StatusPending:
		default:
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", status)
		}
	}
	return s.backend.ListTransactions(ctx, companyID, status, limit)
}

// GlobalStats returns the cross-company aggregate.
func (s *Service) GlobalStats(ctx context.Context) (contractModel.GlobalTreasuryStats, error) {
	return s.backend.GlobalTreasuryStats(ctx)
}
