//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Schema creates the tables the Postgres-backed stores expect. Applied once
// per container.
const Schema = `
CREATE TABLE IF NOT EXISTS vendors (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	wallet_address TEXT NOT NULL DEFAULT '',
	bank_account TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	is_trusted BOOLEAN NOT NULL DEFAULT FALSE,
	risk_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS invoices (
	id UUID PRIMARY KEY,
	company_id TEXT NOT NULL,
	invoice_number TEXT NOT NULL,
	vendor TEXT NOT NULL,
	vendor_id TEXT NOT NULL DEFAULT '',
	amount DOUBLE PRECISION NOT NULL,
	currency TEXT NOT NULL,
	po_number TEXT NOT NULL DEFAULT '',
	line_items JSONB,
	template_hash TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	fraud_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	fraud_reasons TEXT[],
	decision TEXT NOT NULL DEFAULT '',
	decision_reason TEXT NOT NULL DEFAULT '',
	policy_matched TEXT NOT NULL DEFAULT '',
	tx_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	processed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_invoices_company ON invoices (company_id, created_at DESC);
`

// PostgresContainer wraps a testcontainers Postgres instance with the
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
	DSN       string
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("payshield_test"),
		tcpostgres.WithUsername("payshield"),
		tcpostgres.WithPassword("payshield"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{Container: container, DB: db, DSN: dsn}
	t.Cleanup(func() {
		_ = pc.DB.Close()
		_ = pc.Container.Terminate(context.Background())
	})
	return pc
}

// TruncateTables empties the given tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", ")))
	return err
}
