// Package service implements vendor management on top of a vendor store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"payshield/internal/vendors/models"
	"payshield/internal/vendors/store"
	dErrors "payshield/pkg/domain-errors"
	"payshield/pkg/platform/sentinel"
)

// Service orchestrates vendor CRUD and risk updates.
type Service struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st store.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: st, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new vendor with a zero initial risk score.
func (s *Service) Create(ctx context.Context, req models.CreateVendorRequest) (*models.Vendor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "vendor name is required")
	}

	vendor := &models.Vendor{
		ID:            uuid.New(),
		Name:          name,
		WalletAddress: strings.TrimSpace(req.WalletAddress),
		BankAccount:   strings.TrimSpace(req.BankAccount),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		IsTrusted:     req.IsTrusted,
		RiskScore:     0,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.Create(ctx, vendor); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "vendor %q already exists", name)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create vendor")
	}

	s.logger.InfoContext(ctx, "vendor created", "vendor_id", vendor.ID, "trusted", vendor.IsTrusted)
	return vendor, nil
}

// Get returns a vendor by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vendor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get vendor")
	}
	return vendor, nil
}

// GetByName returns a vendor by case-insensitive name match.
func (s *Service) GetByName(ctx context.Context, name string) (*models.Vendor, error) {
	vendor, err := s.store.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vendor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get vendor by name")
	}
	return vendor, nil
}

// Update applies the non-nil fields of req to the vendor.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateVendorRequest) (*models.Vendor, error) {
	vendor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "vendor name must not be empty")
		}
		vendor.Name = strings.TrimSpace(*req.Name)
	}
	if req.WalletAddress != nil {
		vendor.WalletAddress = strings.TrimSpace(*req.WalletAddress)
	}
	if req.BankAccount != nil {
		vendor.BankAccount = strings.TrimSpace(*req.BankAccount)
	}
	if req.Email != nil {
		vendor.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		vendor.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.IsTrusted != nil {
		vendor.IsTrusted = *req.IsTrusted
	}
	if req.RiskScore != nil {
		if *req.RiskScore < 0 || *req.RiskScore > 1 {
			return nil, dErrors.New(dErrors.CodeBadRequest, "riskScore must be in [0,1]")
		}
		vendor.RiskScore = *req.RiskScore
	}

	if err := s.store.Update(ctx, vendor); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vendor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update vendor")
	}
	return vendor, nil
}

// Delete removes a vendor.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "vendor not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete vendor")
	}
	s.logger.InfoContext(ctx, "vendor deleted", "vendor_id", id)
	return nil
}

// List returns vendors ordered by name.
func (s *Service) List(ctx context.Context, trustedOnly bool, limit, offset int) ([]*models.Vendor, error) {
	vendors, err := s.store.List(ctx, trustedOnly, limit, offset)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list vendors")
	}
	return vendors, nil
}

// RaiseRiskScore lifts the vendor's risk score to at least score. Risk only
// ratchets up from threat intelligence; lowering it is a manual Update.
func (s *Service) RaiseRiskScore(ctx context.Context, id uuid.UUID, score float64) error {
	vendor, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if score <= vendor.RiskScore {
		return nil
	}
	if score > 1 {
		score = 1
	}
	vendor.RiskScore = score
	if err := s.store.Update(ctx, vendor); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update vendor risk score")
	}
	s.logger.InfoContext(ctx, "vendor risk score raised", "vendor_id", id, "risk_score", score)
	return nil
}
