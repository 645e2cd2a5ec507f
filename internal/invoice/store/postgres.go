package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"payshield/internal/invoice/models"
	"payshield/pkg/platform/sentinel"
)

// PostgresStore persists invoices in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed invoice store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolationCode = "23505"

const invoiceColumns = `
	id, company_id, invoice_number, vendor, vendor_id, amount, currency,
	po_number, line_items, template_hash, status, confidence_score,
	fraud_score, fraud_reasons, decision, decision_reason, policy_matched,
	tx_id, created_at, processed_at
`

func (s *PostgresStore) Create(ctx context.Context, invoice *models.Invoice) error {
	lineItems, err := json.Marshal(invoice.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err = s.db.ExecContext(ctx, query,
		invoice.ID, invoice.CompanyID, invoice.InvoiceNumber, invoice.Vendor,
		invoice.VendorID, invoice.Amount, invoice.Currency, invoice.PONumber,
		lineItems, invoice.TemplateHash, invoice.Status, invoice.ConfidenceScore,
		invoice.FraudScore, pq.Array(invoice.FraudReasons), invoice.Decision,
		invoice.DecisionReason, invoice.PolicyMatched, invoice.TxID,
		invoice.CreatedAt, invoice.ProcessedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+` FROM invoices WHERE id = $1
	`, id)
	return scanInvoice(row)
}

func (s *PostgresStore) GetByNumber(ctx context.Context, companyID, vendor, invoiceNumber string) (*models.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE company_id = $1 AND lower(vendor) = lower($2) AND lower(invoice_number) = lower($3)
	`, companyID, vendor, invoiceNumber)
	return scanInvoice(row)
}

func (s *PostgresStore) Update(ctx context.Context, invoice *models.Invoice) error {
	lineItems, err := json.Marshal(invoice.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	query := `
		UPDATE invoices SET
			status = $2, confidence_score = $3, fraud_score = $4,
			fraud_reasons = $5, decision = $6, decision_reason = $7,
			policy_matched = $8, tx_id = $9, processed_at = $10,
			vendor_id = $11, line_items = $12
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		invoice.ID, invoice.Status, invoice.ConfidenceScore, invoice.FraudScore,
		pq.Array(invoice.FraudReasons), invoice.Decision, invoice.DecisionReason,
		invoice.PolicyMatched, invoice.TxID, invoice.ProcessedAt,
		invoice.VendorID, lineItems)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update invoice rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*models.Invoice, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + invoiceColumns + ` FROM invoices
		WHERE ($1 = '' OR company_id = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR lower(vendor) = lower($3))
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := s.db.QueryContext(ctx, query, filter.CompanyID, filter.Status, filter.Vendor, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*models.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var inv models.Invoice
	var lineItems []byte
	var reasons pq.StringArray
	var processedAt sql.NullTime
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.InvoiceNumber, &inv.Vendor,
		&inv.VendorID, &inv.Amount, &inv.Currency, &inv.PONumber,
		&lineItems, &inv.TemplateHash, &inv.Status, &inv.ConfidenceScore,
		&inv.FraudScore, &reasons, &inv.Decision, &inv.DecisionReason,
		&inv.PolicyMatched, &inv.TxID, &inv.CreatedAt, &processedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
			return nil, fmt.Errorf("unmarshal line items: %w", err)
		}
	}
	if len(reasons) > 0 {
		inv.FraudReasons = []string(reasons)
	}
	if processedAt.Valid {
		inv.ProcessedAt = &processedAt.Time
	}
	return &inv, nil
}
