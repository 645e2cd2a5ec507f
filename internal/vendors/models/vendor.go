package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a payee a company does business with. Trusted vendors skip the
// unknown-vendor block during invoice processing; the risk score is updated
// from threat intelligence as reports come in.
type Vendor struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	WalletAddress string     `json:"walletAddress,omitempty"`
	BankAccount   string     `json:"bankAccount,omitempty"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	IsTrusted     bool       `json:"isTrusted"`
	RiskScore     float64    `json:"riskScore"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// CreateVendorRequest is the payload for registering a vendor.
type CreateVendorRequest struct {
	Name          string `json:"name"`
	WalletAddress string `json:"walletAddress"`
	BankAccount   string `json:"bankAccount"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	IsTrusted     bool   `json:"isTrusted"`
}

// UpdateVendorRequest carries optional field updates; nil means unchanged.
type UpdateVendorRequest struct {
	Name          *string  `json:"name,omitempty"`
	WalletAddress *string  `json:"walletAddress,omitempty"`
	BankAccount   *string  `json:"bankAccount,omitempty"`
	Email         *string  `json:"email,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	IsTrusted     *bool    `json:"isTrusted,omitempty"`
	RiskScore     *float64 `json:"riskScore,omitempty"`
}
