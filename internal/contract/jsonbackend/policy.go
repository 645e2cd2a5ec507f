package jsonbackend

import (
	"context"

	"payshield/internal/contract/models"
	dErrors "payshield/pkg/domain-errors"
)

// GetPolicies returns all policies of a company, in stored order.
func (b *Backend) GetPolicies(_ context.Context, companyID string) ([]models.Policy, error) {
	var out []models.Policy
	err := b.policies.View(func(doc *models.PolicyDocument) error {
		for _, p := range doc.Policies {
			if p.CompanyID == companyID {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

// GetPolicy returns the first policy matching (companyID, policyID), or nil.
func (b *Backend) GetPolicy(_ context.Context, companyID, policyID string) (*models.Policy, error) {
	var found *models.Policy
	err := b.policies.View(func(doc *models.PolicyDocument) error {
		for i := range doc.Policies {
			p := doc.Policies[i]
			if p.CompanyID == companyID && p.PolicyID == policyID {
				found = &p
				return nil
			}
		}
		return nil
	})
	return found, err
}

// UpdatePolicies replaces the company's entire policy set with the given
// list. Policies of other companies are untouched; a policy in the list
// claiming a different companyId is rejected before anything is written.
func (b *Backend) UpdatePolicies(_ context.Context, companyID string, policies []models.Policy) error {
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return err
		}
		if p.CompanyID != companyID {
			return dErrors.Newf(dErrors.CodeBadRequest,
				"policy %s belongs to company %s, not %s", p.PolicyID, p.CompanyID, companyID)
		}
	}

	err := b.policies.Update(func(doc *models.PolicyDocument) (bool, error) {
		kept := doc.Policies[:0]
		for _, p := range doc.Policies {
			if p.CompanyID != companyID {
				kept = append(kept, p)
			}
		}
		doc.Policies = append(kept, policies...)
		doc.LastUpdated = b.timestamp()
		return true, nil
	})
	if err != nil {
		return err
	}

	b.metrics.IncContractWrites(policyContract)
	b.logger.Info("policies replaced", "company_id", companyID, "count", len(policies))
	return nil
}

// AddPolicy upserts a policy keyed on (companyId, policyId): an existing
// record with the same key is removed before the new one is appended.
func (b *Backend) AddPolicy(_ context.Context, policy models.Policy) error {
	if err := policy.Validate(); err != nil {
		return err
	}

	err := b.policies.Update(func(doc *models.PolicyDocument) (bool, error) {
		kept := doc.Policies[:0]
		for _, p := range doc.Policies {
			if !(p.CompanyID == policy.CompanyID && p.PolicyID == policy.PolicyID) {
				kept = append(kept, p)
			}
		}
		doc.Policies = append(kept, policy)
		doc.LastUpdated = b.timestamp()
		return true, nil
	})
	if err != nil {
		return err
	}

	b.metrics.IncContractWrites(policyContract)
	b.logger.Info("policy upserted", "company_id", policy.CompanyID, "policy_id", policy.PolicyID)
	return nil
}

// DeletePolicy removes the matching record if present and reports whether a
// removal occurred. When nothing matches the document is not rewritten.
func (b *Backend) DeletePolicy(_ context.Context, companyID, policyID string) (bool, error) {
	deleted := false
	err := b.policies.Update(func(doc *models.PolicyDocument) (bool, error) {
		kept := doc.Policies[:0]
		for _, p := range doc.Policies {
			if p.CompanyID == companyID && p.PolicyID == policyID {
				deleted = true
				continue
			}
			kept = append(kept, p)
		}
		if !deleted {
			return false, nil
		}
		doc.Policies = kept
		doc.LastUpdated = b.timestamp()
		return true, nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		b.metrics.IncContractWrites(policyContract)
		b.logger.Info("policy deleted", "company_id", companyID, "policy_id", policyID)
	}
	return deleted, nil
}
