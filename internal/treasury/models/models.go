// Package models defines treasury API shapes. The persisted forms live in
// internal/contract/models.
package models

// PayRequest executes a direct payment from the authenticated company's
// treasury.
type PayRequest struct {
	InvoiceID      string  `json:"invoiceId"`
	Vendor         string  `json:"vendor"`
	VendorID       string  `json:"vendorId,omitempty"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency,omitempty"`
	PaymentMethod  string  `json:"paymentMethod,omitempty"`
	PaymentAddress string  `json:"paymentAddress,omitempty"`
	ApprovedBy     string  `json:"approvedBy,omitempty"`
}

// PayResponse acknowledges an executed payment.
type PayResponse struct {
	Success bool    `json:"success"`
	TxID    string  `json:"txId"`
	Balance float64 `json:"balance"`
	Message string  `json:"message"`
}
