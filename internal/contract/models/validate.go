package models

import (
	dErrors "payshield/pkg/domain-errors"
	"payshield/pkg/fingerprint"
)

// Validation runs before any document write; a rejected entity leaves the
// ledger untouched.

// Validate checks Policy field constraints.
func (p Policy) Validate() error {
	if p.CompanyID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "policy companyId is required")
	}
	if p.PolicyID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "policy policyId is required")
	}
	if p.MinConfidence < 0 || p.MinConfidence > 1 {
		return dErrors.New(dErrors.CodeBadRequest, "policy minConfidence must be in [0,1]")
	}
	if p.MaxFraudScore < 0 || p.MaxFraudScore > 1 {
		return dErrors.New(dErrors.CodeBadRequest, "policy maxFraudScore must be in [0,1]")
	}
	if p.MinAmount != nil && p.MaxAmount != nil && *p.MinAmount > *p.MaxAmount {
		return dErrors.New(dErrors.CodeBadRequest, "policy minAmount exceeds maxAmount")
	}
	return nil
}

// Validate checks Threat field constraints.
func (t Threat) Validate() error {
	if t.ThreatID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "threatId is required")
	}
	if !fingerprint.IsValidHash(t.VendorHash, 64) {
		return dErrors.New(dErrors.CodeBadRequest, "vendorHash must be a 64-character hex digest")
	}
	if !fingerprint.IsValidHash(t.PaymentTargetHash, 64) {
		return dErrors.New(dErrors.CodeBadRequest, "paymentTargetHash must be a 64-character hex digest")
	}
	if !fingerprint.IsValidHash(t.InvoiceTemplateHash, 64) {
		return dErrors.New(dErrors.CodeBadRequest, "invoiceTemplateHash must be a 64-character hex digest")
	}
	switch fingerprint.PaymentTargetType(t.PaymentTargetType) {
	case fingerprint.TargetWalletAddress, fingerprint.TargetBankAccount:
	default:
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown paymentTargetType %q", t.PaymentTargetType)
	}
	if t.FraudScore < 0 || t.FraudScore > 1 {
		return dErrors.New(dErrors.CodeBadRequest, "fraudScore must be in [0,1]")
	}
	if t.TimesSeen < 1 {
		return dErrors.New(dErrors.CodeBadRequest, "timesSeen must be at least 1")
	}
	if t.NetworkReward < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "networkReward must not be negative")
	}
	return nil
}

// Validate checks Transaction field constraints.
func (tx Transaction) Validate() error {
	if tx.TxID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "txId is required")
	}
	if tx.Amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "transaction amount must be positive")
	}
	switch tx.Status {
	case StatusPaid, StatusBlocked, StatusHeld, StatusPending:
	default:
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown transaction status %q", tx.Status)
	}
	switch tx.Decision {
	case DecisionApprove, DecisionBlock, DecisionHold:
	default:
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown transaction decision %q", tx.Decision)
	}
	if tx.Meta.FraudScore < 0 || tx.Meta.FraudScore > 1 {
		return dErrors.New(dErrors.CodeBadRequest, "meta fraudScore must be in [0,1]")
	}
	if tx.Meta.Confidence < 0 || tx.Meta.Confidence > 1 {
		return dErrors.New(dErrors.CodeBadRequest, "meta confidence must be in [0,1]")
	}
	return nil
}
