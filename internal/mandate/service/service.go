// Package service implements mandate management over the policy ledger.
package service

import (
	"context"
	"log/slog"
	"strings"

	"payshield/internal/contract"
	contractModel "payshield/internal/contract/models"
	"payshield/internal/mandate/models"
	dErrors "payshield/pkg/domain-errors"
	"payshield/pkg/fingerprint"
)

// Service manages company payment policies.
type Service struct {
	backend contract.Backend
	logger  *slog.Logger
}

func New(backend contract.Backend, logger *slog.Logger) *Service {
	return &Service{backend: backend, logger: logger}
}

// Create registers a new policy. The policy id is derived from the name, so
// two policies with the same name conflict.
func (s *Service) Create(ctx context.Context, companyID string, req models.CreateMandateRequest) (*contractModel.Policy, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "mandate name is required")
	}

	policyID := fingerprint.PolicyIDFromName(name)
	existing, err := s.backend.GetPolicy(ctx, companyID, policyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, dErrors.Newf(dErrors.CodeConflict, "mandate %q already exists", policyID)
	}

	policy := contractModel.Policy{
		CompanyID:           companyID,
		PolicyID:            policyID,
		Name:                name,
		MaxAmount:           req.MaxAmount,
		MinAmount:           req.MinAmount,
		MinConfidence:       req.MinConfidence,
		MaxFraudScore:       req.MaxFraudScore,
		AutoPay:             req.AutoPay,
		BlockUnknownVendors: req.BlockUnknownVendors,
		RequirePO:           req.RequirePO,
		AutoBlock:           req.AutoBlock,
		Active:              true,
	}
	if err := s.backend.AddPolicy(ctx, policy); err != nil {
		return nil, err
	}

	created, err := s.backend.GetPolicy(ctx, companyID, policyID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "mandate created", "company_id", companyID, "policy_id", policyID)
	return created, nil
}

// List returns the company's policies, optionally only active ones.
func (s *Service) List(ctx context.Context, companyID string, activeOnly bool) ([]contractModel.Policy, error) {
	policies, err := s.backend.GetPolicies(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return policies, nil
	}
	active := policies[:0]
	for _, p := range policies {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

// Get returns one policy.
func (s *Service) Get(ctx context.Context, companyID, policyID string) (*contractModel.Policy, error) {
	policy, err := s.backend.GetPolicy(ctx, companyID, policyID)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "mandate not found")
	}
	return policy, nil
}

// Update applies the non-nil fields of req to the policy.
func (s *Service) Update(ctx context.Context, companyID, policyID string, req models.UpdateMandateRequest) (*contractModel.Policy, error) {
	policy, err := s.Get(ctx, companyID, policyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		policy.Name = strings.TrimSpace(*req.Name)
	}
	if req.MaxAmount != nil {
		policy.MaxAmount = req.MaxAmount
	}
	if req.MinAmount != nil {
		policy.MinAmount = req.MinAmount
	}
	if req.MinConfidence != nil {
		policy.MinConfidence = *req.MinConfidence
	}
	if req.MaxFraudScore != nil {
		policy.MaxFraudScore = *req.MaxFraudScore
	}
	if req.AutoPay != nil {
		policy.AutoPay = *req.AutoPay
	}
	if req.BlockUnknownVendors != nil {
		policy.BlockUnknownVendors = *req.BlockUnknownVendors
	}
	if req.RequirePO != nil {
		policy.RequirePO = *req.RequirePO
	}
	if req.AutoBlock != nil {
		policy.AutoBlock = *req.AutoBlock
	}
	if req.Active != nil {
		policy.Active = *req.Active
	}

	if err := s.backend.AddPolicy(ctx, *policy); err != nil {
		return nil, err
	}
	return s.Get(ctx, companyID, policyID)
}

// Toggle flips the policy's active flag and returns the new state.
func (s *Service) Toggle(ctx context.Context, companyID, policyID string) (*contractModel.Policy, error) {
	policy, err := s.Get(ctx, companyID, policyID)
	if err != nil {
		return nil, err
	}
	policy.Active = !policy.Active
	if err := s.backend.AddPolicy(ctx, *policy); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "mandate toggled",
		"company_id", companyID, "policy_id", policyID, "active", policy.Active)
	return s.Get(ctx, companyID, policyID)
}

// Delete removes the policy from the ledger.
func (s *Service) Delete(ctx context.Context, companyID, policyID string) error {
	deleted, err := s.backend.DeletePolicy(ctx, companyID, policyID)
	if err != nil {
		return err
	}
	if !deleted {
		return dErrors.New(dErrors.CodeNotFound, "mandate not found")
	}
	s.logger.InfoContext(ctx, "mandate deleted", "company_id", companyID, "policy_id", policyID)
	return nil
}

// Templates returns ready-made policies a company can adopt as-is.
func (s *Service) Templates() []contractModel.Policy {
	autoPayMax := 2000.0
	holdMax := 10000.0
	return []contractModel.Policy{
		{
			PolicyID:      "auto_pay_for_small_trusted_invoices",
			Name:          "Auto-pay for small trusted invoices",
			MaxAmount:     &autoPayMax,
			MinConfidence: 0.85,
			MaxFraudScore: 0.15,
			AutoPay:       true,
			Active:        true,
		},
		{
			PolicyID:            "block_unknown_vendors",
			Name:                "Block unknown vendors",
			BlockUnknownVendors: true,
			AutoBlock:           true,
			Active:              true,
		},
		{
			PolicyID:  "hold_high_amount_invoices_for_review",
			Name:      "Hold high-amount invoices for review",
			MaxAmount: &holdMax,
			Active:    true,
		},
	}
}
