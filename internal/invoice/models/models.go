// Package models defines invoice records and the processing API shapes.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses. APPROVED means cleared for payment but not yet executed;
// PAID means an auto-pay policy already moved the money.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusPaid     = "PAID"
	StatusBlocked  = "BLOCKED"
	StatusHeld     = "HELD"
)

// LineItem is one billed line on an invoice.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// Invoice is a processed invoice record.
type Invoice struct {
	ID              uuid.UUID  `json:"id"`
	CompanyID       string     `json:"companyId"`
	InvoiceNumber   string     `json:"invoiceNumber"`
	Vendor          string     `json:"vendor"`
	VendorID        string     `json:"vendorId,omitempty"`
	Amount          float64    `json:"amount"`
	Currency        string     `json:"currency"`
	PONumber        string     `json:"poNumber,omitempty"`
	LineItems       []LineItem `json:"lineItems,omitempty"`
	TemplateHash    string     `json:"templateHash,omitempty"`
	Status          string     `json:"status"`
	ConfidenceScore float64    `json:"confidenceScore"`
	FraudScore      float64    `json:"fraudScore"`
	FraudReasons    []string   `json:"fraudReasons,omitempty"`
	Decision        string     `json:"decision,omitempty"`
	DecisionReason  string     `json:"decisionReason,omitempty"`
	PolicyMatched   string     `json:"policyMatched,omitempty"`
	TxID            string     `json:"txId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
}

// ProcessInvoiceRequest submits an invoice to the decision pipeline.
type ProcessInvoiceRequest struct {
	InvoiceNumber string     `json:"invoiceNumber"`
	Vendor        string     `json:"vendor"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency,omitempty"`
	PONumber      string     `json:"poNumber,omitempty"`
	LineItems     []LineItem `json:"lineItems,omitempty"`
	InvoiceText   string     `json:"invoiceText,omitempty"`
}

// ProcessInvoiceResponse reports the decision taken on one invoice.
type ProcessInvoiceResponse struct {
	Invoice        Invoice  `json:"invoice"`
	Decision       string   `json:"decision"`
	DecisionReason string   `json:"decisionReason"`
	FraudScore     float64  `json:"fraudScore"`
	Confidence     float64  `json:"confidence"`
	FraudReasons   []string `json:"fraudReasons,omitempty"`
	PolicyMatched  string   `json:"policyMatched,omitempty"`
	TxID           string   `json:"txId,omitempty"`
}
