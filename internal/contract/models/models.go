// Package models defines the entities persisted in the three contract
// documents. JSON field names are part of the on-disk format and of the wire
// format a future on-chain backend must honor; do not rename them.
package models

// Policy is a company payment rule used for automated invoice decisions.
type Policy struct {
	CompanyID           string   `json:"companyId"`
	PolicyID            string   `json:"policyId"`
	Name                string   `json:"name"`
	MaxAmount           *float64 `json:"maxAmount,omitempty"`
	MinAmount           *float64 `json:"minAmount,omitempty"`
	MinConfidence       float64  `json:"minConfidence"`
	MaxFraudScore       float64  `json:"maxFraudScore"`
	AutoPay             bool     `json:"autoPay"`
	BlockUnknownVendors bool     `json:"blockUnknownVendors"`
	RequirePO           bool     `json:"requirePO"`
	AutoBlock           bool     `json:"autoBlock"`
	CreatedAt           string   `json:"createdAt"`
	UpdatedAt           string   `json:"updatedAt"`
	Active              bool     `json:"active"`
}

// PolicyDocument is the root of PolicyContract.json.
type PolicyDocument struct {
	Version      string   `json:"version"`
	ContractType string   `json:"contractType"`
	Description  string   `json:"description"`
	LastUpdated  string   `json:"lastUpdated"`
	Policies     []Policy `json:"policies"`
}

// Threat is an anonymized fraud fingerprint shared across the network.
// All hashes are 64-character lowercase hex SHA-256 digests.
type Threat struct {
	ThreatID            string   `json:"threatId"`
	VendorHash          string   `json:"vendorHash"`
	PaymentTargetType   string   `json:"paymentTargetType"`
	PaymentTargetHash   string   `json:"paymentTargetHash"`
	InvoiceTemplateHash string   `json:"invoiceTemplateHash"`
	AmountBucket        string   `json:"amountBucket"`
	Currency            string   `json:"currency"`
	FraudScore          float64  `json:"fraudScore"`
	Reasons             []string `json:"reasons"`
	FirstSeenAt         string   `json:"firstSeenAt"`
	LastSeenAt          string   `json:"lastSeenAt"`
	TimesSeen           int      `json:"timesSeen"`
	ReporterID          string   `json:"reporterId"`
	ReporterHash        string   `json:"reporterHash"`
	NetworkReward       float64  `json:"networkReward"`
	Verified            bool     `json:"verified"`
}

// ThreatStatistics is the aggregate view over the threat list. It is derived
// state: recomputed in full on every mutation, never patched incrementally.
type ThreatStatistics struct {
	TotalThreats       int     `json:"totalThreats"`
	TotalBlockedAmount float64 `json:"totalBlockedAmount"`
	VerifiedReporters  int     `json:"verifiedReporters"`
	HighRiskVendors    int     `json:"highRiskVendors"`
	LastThreatReported string  `json:"lastThreatReported,omitempty"`
}

// ThreatDocument is the root of ThreatIntelContract.json.
type ThreatDocument struct {
	Version      string           `json:"version"`
	ContractType string           `json:"contractType"`
	Description  string           `json:"description"`
	LastUpdated  string           `json:"lastUpdated"`
	Threats      []Threat         `json:"threats"`
	Statistics   ThreatStatistics `json:"statistics"`
}

// Transaction statuses and decisions.
const (
	StatusPaid    = "PAID"
	StatusBlocked = "BLOCKED"
	StatusHeld    = "HELD"
	StatusPending = "PENDING"

	DecisionApprove = "APPROVE"
	DecisionBlock   = "BLOCK"
	DecisionHold    = "HOLD"
)

// TransactionMeta carries the evidence behind a payment decision.
type TransactionMeta struct {
	FraudScore     float64  `json:"fraudScore"`
	Confidence     float64  `json:"confidence"`
	PolicyMatched  string   `json:"policyMatched,omitempty"`
	PaymentMethod  string   `json:"paymentMethod,omitempty"`
	PaymentAddress string   `json:"paymentAddress,omitempty"`
	BlockReasons   []string `json:"blockReasons,omitempty"`
	ThreatID       string   `json:"threatId,omitempty"`
	ManualReview   bool     `json:"manualReview"`
	ApprovedBy     string   `json:"approvedBy,omitempty"`
	HoldReason     string   `json:"holdReason,omitempty"`
	AssignedTo     string   `json:"assignedTo,omitempty"`
}

// Transaction is one payment record in a company treasury.
type Transaction struct {
	TxID      string          `json:"txId"`
	InvoiceID string          `json:"invoiceId"`
	Vendor    string          `json:"vendor"`
	VendorID  string          `json:"vendorId"`
	Amount    float64         `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Decision  string          `json:"decision"`
	Timestamp string          `json:"timestamp"`
	Meta      TransactionMeta `json:"meta"`
}

// CompanyTreasury is the treasury state of a single company.
//
// Invariant: Balance changes only for PAID transactions. BLOCKED and HELD
// amounts accumulate in their running totals without touching the balance.
type CompanyTreasury struct {
	CompanyID    string        `json:"companyId"`
	CompanyName  string        `json:"companyName"`
	Balance      float64       `json:"balance"`
	Currency     string        `json:"currency"`
	TotalPaid    float64       `json:"totalPaid"`
	TotalBlocked float64       `json:"totalBlocked"`
	TotalHeld    float64       `json:"totalHeld"`
	CreatedAt    string        `json:"createdAt"`
	LastActivity string        `json:"lastActivity"`
	Transactions []Transaction `json:"transactions"`
}

// GlobalTreasuryStats is the derived aggregate across all companies,
// recomputed in full after every payment-recording operation.
type GlobalTreasuryStats struct {
	TotalCompanies    int     `json:"totalCompanies"`
	TotalBalance      float64 `json:"totalBalance"`
	TotalTransactions int     `json:"totalTransactions"`
	TotalPaid         float64 `json:"totalPaid"`
	TotalBlocked      float64 `json:"totalBlocked"`
	TotalHeld         float64 `json:"totalHeld"`
	LastTransaction   string  `json:"lastTransaction,omitempty"`
}

// TreasuryDocument is the root of TreasuryContract.json.
type TreasuryDocument struct {
	Version      string              `json:"version"`
	ContractType string              `json:"contractType"`
	Description  string              `json:"description"`
	LastUpdated  string              `json:"lastUpdated"`
	Companies    []CompanyTreasury   `json:"companies"`
	GlobalStats  GlobalTreasuryStats `json:"globalStats"`
}
