package jsonbackend

import (
	"context"
	"sort"
	"strings"

	dErrors "payshield/pkg/domain-errors"
	"payshield/pkg/fingerprint"

	"payshield/internal/contract/models"
)

// RecordPayment appends a transaction to a company treasury, creating the
// treasury with the starting balance on first use. Only PAID transactions
// move the balance; BLOCKED and HELD amounts accumulate in their running
// totals. Returns the transaction id.
func (b *Backend) RecordPayment(_ context.Context, companyID string, tx models.Transaction) (string, error) {
	if companyID == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "company id is required")
	}

	now := b.now()
	stamp := fingerprint.Timestamp(now)
	if tx.TxID == "" {
		tx.TxID = fingerprint.NewTransactionID(now)
	}
	if tx.Timestamp == "" {
		tx.Timestamp = stamp
	}
	if tx.Currency == "" {
		tx.Currency = "USDC"
	} else {
		tx.Currency = fingerprint.NormalizeCurrency(tx.Currency)
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}

	err := b.treasury.Update(func(doc *models.TreasuryDocument) (bool, error) {
		idx := -1
		for i := range doc.Companies {
			if doc.Companies[i].CompanyID == companyID {
				idx = i
				break
			}
		}
		if idx < 0 {
			doc.Companies = append(doc.Companies, models.CompanyTreasury{
				CompanyID:   companyID,
				CompanyName: companyDisplayName(companyID),
				Balance:     StartingBalance,
				Currency:    tx.Currency,
				CreatedAt:   stamp,
			})
			idx = len(doc.Companies) - 1
		}

		company := &doc.Companies[idx]
		switch tx.Status {
		case models.StatusPaid:
			company.Balance -= tx.Amount
			company.TotalPaid += tx.Amount
		case models.StatusBlocked:
			company.TotalBlocked += tx.Amount
		case models.StatusHeld:
			company.TotalHeld += tx.Amount
		case models.StatusPending:
			// Recorded without touching any running total.
		}
		company.Transactions = append(company.Transactions, tx)
		company.LastActivity = stamp

		doc.GlobalStats = computeTreasuryStats(doc.Companies, stamp)
		doc.LastUpdated = stamp
		return true, nil
	})
	if err != nil {
		return "", err
	}

	b.metrics.IncContractWrites(treasuryContract)
	b.metrics.IncPaymentsRecorded(tx.Status)
	b.logger.Info("payment recorded",
		"company_id", companyID, "tx_id", tx.TxID, "status", tx.Status, "amount", tx.Amount)
	return tx.TxID, nil
}

func computeTreasuryStats(companies []models.CompanyTreasury, now string) models.GlobalTreasuryStats {
	stats := models.GlobalTreasuryStats{
		TotalCompanies:  len(companies),
		LastTransaction: now,
	}
	for _, c := range companies {
		stats.TotalBalance += c.Balance
		stats.TotalTransactions += len(c.Transactions)
		stats.TotalPaid += c.TotalPaid
		stats.TotalBlocked += c.TotalBlocked
		stats.TotalHeld += c.TotalHeld
	}
	return stats
}

// CompanyTreasury returns the treasury for a company. Unknown companies get
// a synthetic zero-balance record that is never persisted, so reads cannot
// create ledger entries.
func (b *Backend) CompanyTreasury(_ context.Context, companyID string) (models.CompanyTreasury, error) {
	var out models.CompanyTreasury
	found := false
	err := b.treasury.View(func(doc *models.TreasuryDocument) error {
		for i := range doc.Companies {
			if doc.Companies[i].CompanyID == companyID {
				out = doc.Companies[i]
				found = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return models.CompanyTreasury{}, err
	}
	if !found {
		out = models.CompanyTreasury{
			CompanyID:    companyID,
			CompanyName:  companyDisplayName(companyID),
			Currency:     "USDC",
			Transactions: []models.Transaction{},
		}
	}
	return out, nil
}

// ListTransactions returns a company's transactions newest first, optionally
// filtered by status.
func (b *Backend) ListTransactions(_ context.Context, companyID, status string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var out []models.Transaction
	err := b.treasury.View(func(doc *models.TreasuryDocument) error {
		for i := range doc.Companies {
			if doc.Companies[i].CompanyID != companyID {
				continue
			}
			for _, tx := range doc.Companies[i].Transactions {
				if status == "" || tx.Status == status {
					out = append(out, tx)
				}
			}
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Callers may back-date Timestamp, so arrival order is not enough.
	// RFC 3339 UTC timestamps order lexicographically.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GlobalTreasuryStats returns the stored aggregate across all companies.
func (b *Backend) GlobalTreasuryStats(_ context.Context) (models.GlobalTreasuryStats, error) {
	var stats models.GlobalTreasuryStats
	err := b.treasury.View(func(doc *models.TreasuryDocument) error {
		stats = doc.GlobalStats
		return nil
	})
	return stats, err
}

// companyDisplayName turns an identifier like "acme_corp" into "Acme Corp".
func companyDisplayName(companyID string) string {
	words := strings.FieldsFunc(companyID, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
