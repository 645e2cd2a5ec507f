package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"payshield/internal/vendors/models"
	"payshield/pkg/platform/sentinel"
)

// PostgresStore persists vendors in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed vendor store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, vendor *models.Vendor) error {
	query := `
		INSERT INTO vendors (id, name, wallet_address, bank_account, email, phone, is_trusted, risk_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		vendor.ID, vendor.Name, vendor.WalletAddress, vendor.BankAccount,
		vendor.Email, vendor.Phone, vendor.IsTrusted, vendor.RiskScore, vendor.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create vendor: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, wallet_address, bank_account, email, phone, is_trusted, risk_score, created_at, updated_at
		FROM vendors WHERE id = $1
	`, id)
	return scanVendor(row)
}

func (s *PostgresStore) GetByName(ctx context.Context, name string) (*models.Vendor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, wallet_address, bank_account, email, phone, is_trusted, risk_score, created_at, updated_at
		FROM vendors WHERE lower(name) = lower($1)
	`, name)
	return scanVendor(row)
}

func (s *PostgresStore) Update(ctx context.Context, vendor *models.Vendor) error {
	query := `
		UPDATE vendors
		SET name = $2, wallet_address = $3, bank_account = $4, email = $5, phone = $6,
		    is_trusted = $7, risk_score = $8, updated_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		vendor.ID, vendor.Name, vendor.WalletAddress, vendor.BankAccount,
		vendor.Email, vendor.Phone, vendor.IsTrusted, vendor.RiskScore)
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, trustedOnly bool, limit, offset int) ([]*models.Vendor, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, name, wallet_address, bank_account, email, phone, is_trusted, risk_score, created_at, updated_at
		FROM vendors
		WHERE ($1 = false OR is_trusted = true)
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, trustedOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	vendors := make([]*models.Vendor, 0)
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (*models.Vendor, error) {
	var v models.Vendor
	var updatedAt sql.NullTime
	err := row.Scan(&v.ID, &v.Name, &v.WalletAddress, &v.BankAccount,
		&v.Email, &v.Phone, &v.IsTrusted, &v.RiskScore, &v.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan vendor: %w", err)
	}
	if updatedAt.Valid {
		v.UpdatedAt = &updatedAt.Time
	}
	return &v, nil
}
