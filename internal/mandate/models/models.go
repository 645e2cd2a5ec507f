// Package models defines mandate API shapes. The persisted form is the
// Policy entity in internal/contract/models.
package models

// CreateMandateRequest creates a payment policy for the authenticated
// company. The policy id is derived from the name.
type CreateMandateRequest struct {
	Name                string   `json:"name"`
	MaxAmount           *float64 `json:"maxAmount,omitempty"`
	MinAmount           *float64 `json:"minAmount,omitempty"`
	MinConfidence       float64  `json:"minConfidence"`
	MaxFraudScore       float64  `json:"maxFraudScore"`
	AutoPay             bool     `json:"autoPay"`
	BlockUnknownVendors bool     `json:"blockUnknownVendors"`
	RequirePO           bool     `json:"requirePO"`
	AutoBlock           bool     `json:"autoBlock"`
}

// UpdateMandateRequest carries optional field updates; nil means unchanged.
type UpdateMandateRequest struct {
	Name                *string  `json:"name,omitempty"`
	MaxAmount           *float64 `json:"maxAmount,omitempty"`
	MinAmount           *float64 `json:"minAmount,omitempty"`
	MinConfidence       *float64 `json:"minConfidence,omitempty"`
	MaxFraudScore       *float64 `json:"maxFraudScore,omitempty"`
	AutoPay             *bool    `json:"autoPay,omitempty"`
	BlockUnknownVendors *bool    `json:"blockUnknownVendors,omitempty"`
	RequirePO           *bool    `json:"requirePO,omitempty"`
	AutoBlock           *bool    `json:"autoBlock,omitempty"`
	Active              *bool    `json:"active,omitempty"`
}
