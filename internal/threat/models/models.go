// Package models defines the request and response shapes of the threat
// intelligence API. Ledger entities live in internal/contract/models.
package models

import (
	contractModel "payshield/internal/contract/models"
)

// Fraud reason codes reported with threats and invoice decisions.
const (
	ReasonSuspiciousWalletChange      = "SUSPICIOUS_WALLET_CHANGE"
	ReasonTemplateSimilarityKnownScam = "TEMPLATE_SIMILARITY_KNOWN_FRAUD"
	ReasonNoPOMatch                   = "NO_PO_MATCH"
	ReasonHoursExceedLogs             = "HOURS_EXCEED_LOGS"
	ReasonAccountNumberMismatch       = "ACCOUNT_NUMBER_MISMATCH"
	ReasonDuplicateInvoice            = "DUPLICATE_INVOICE"
	ReasonVendorNotRecognized         = "VENDOR_NOT_RECOGNIZED"
	ReasonUnusualAmount               = "UNUSUAL_AMOUNT"
	ReasonSuspiciousTiming            = "SUSPICIOUS_TIMING"
)

// Vendor check recommendations.
const (
	RecommendationBlock = "BLOCK"
	RecommendationHold  = "HOLD"
	RecommendationClear = "CLEAR"
)

// ReportThreatRequest is the payload for submitting a fraud report to the
// network. Raw identifiers are hashed before anything is persisted.
type ReportThreatRequest struct {
	VendorIdentifier string   `json:"vendorIdentifier"`
	WalletAddress    string   `json:"walletAddress,omitempty"`
	BankAccount      string   `json:"bankAccount,omitempty"`
	InvoiceTemplate  string   `json:"invoiceTemplate,omitempty"`
	Amount           float64  `json:"amount"`
	Currency         string   `json:"currency,omitempty"`
	FraudScore       float64  `json:"fraudScore,omitempty"`
	Reasons          []string `json:"reasons"`
}

// ReportThreatResponse acknowledges a recorded threat.
type ReportThreatResponse struct {
	Success    bool   `json:"success"`
	ThreatID   string `json:"threatId"`
	VendorHash string `json:"vendorHash"`
	Message    string `json:"message"`
}

// CheckVendorRequest queries the network for reports against a vendor.
type CheckVendorRequest struct {
	VendorIdentifier string `json:"vendorIdentifier"`
}

// VendorStatus summarizes the network's view of one vendor.
type VendorStatus struct {
	VendorIdentifier string                 `json:"vendorIdentifier"`
	VendorHash       string                 `json:"vendorHash"`
	HasThreats       bool                   `json:"hasThreats"`
	ThreatCount      int                    `json:"threatCount"`
	MaxFraudScore    float64                `json:"maxFraudScore"`
	TimesSeen        int                    `json:"timesSeen"`
	IsBlocked        bool                   `json:"isBlocked"`
	Threats          []contractModel.Threat `json:"threats"`
	Recommendation   string                 `json:"recommendation"`
	Message          string                 `json:"message"`
}
