//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"payshield/internal/invoice/models"
	"payshield/internal/invoice/store"
	"payshield/pkg/platform/sentinel"
	"payshield/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "invoices"))
}

func newTestInvoice(companyID, number string) *models.Invoice {
	return &models.Invoice{
		ID:            uuid.New(),
		CompanyID:     companyID,
		InvoiceNumber: number,
		Vendor:        "CloudTech Solutions",
		Amount:        1200,
		Currency:      "USDC",
		PONumber:      "PO-77",
		LineItems: []models.LineItem{
			{Description: "Cloud hosting", Quantity: 1, UnitPrice: 1200, Total: 1200},
		},
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestCreateAndGetRoundTrip() {
	ctx := context.Background()
	inv := newTestInvoice("acme_corp", "INV-1")

	s.Require().NoError(s.store.Create(ctx, inv))

	got, err := s.store.Get(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(inv.InvoiceNumber, got.InvoiceNumber)
	s.Require().Len(got.LineItems, 1)
	s.Equal("Cloud hosting", got.LineItems[0].Description)
	s.Nil(got.ProcessedAt)

	s.ErrorIs(s.store.Create(ctx, inv), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestGetByNumber() {
	ctx := context.Background()
	inv := newTestInvoice("acme_corp", "INV-1")
	s.Require().NoError(s.store.Create(ctx, inv))

	got, err := s.store.GetByNumber(ctx, "acme_corp", "cloudtech solutions", "inv-1")
	s.Require().NoError(err)
	s.Equal(inv.ID, got.ID)

	_, err = s.store.GetByNumber(ctx, "globex", "CloudTech Solutions", "INV-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdatePersistsDecision() {
	ctx := context.Background()
	inv := newTestInvoice("acme_corp", "INV-1")
	s.Require().NoError(s.store.Create(ctx, inv))

	processedAt := time.Now().UTC().Truncate(time.Microsecond)
	inv.Status = models.StatusBlocked
	inv.FraudScore = 0.9
	inv.FraudReasons = []string{"VENDOR_NOT_RECOGNIZED", "NO_PO_MATCH"}
	inv.Decision = "BLOCK"
	inv.DecisionReason = "fraud score exceeds block threshold"
	inv.TxID = "tx_1"
	inv.ProcessedAt = &processedAt
	s.Require().NoError(s.store.Update(ctx, inv))

	got, err := s.store.Get(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusBlocked, got.Status)
	s.Equal([]string{"VENDOR_NOT_RECOGNIZED", "NO_PO_MATCH"}, got.FraudReasons)
	s.Require().NotNil(got.ProcessedAt)
	s.Equal("tx_1", got.TxID)

	s.ErrorIs(s.store.Update(ctx, newTestInvoice("acme_corp", "INV-9")), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListFilters() {
	ctx := context.Background()
	first := newTestInvoice("acme_corp", "INV-1")
	first.CreatedAt = first.CreatedAt.Add(-time.Hour)
	second := newTestInvoice("acme_corp", "INV-2")
	second.Status = models.StatusBlocked
	other := newTestInvoice("globex", "INV-3")
	for _, inv := range []*models.Invoice{first, second, other} {
		s.Require().NoError(s.store.Create(ctx, inv))
	}

	acme, err := s.store.List(ctx, store.Filter{CompanyID: "acme_corp"})
	s.Require().NoError(err)
	s.Require().Len(acme, 2)
	s.Equal("INV-2", acme[0].InvoiceNumber, "newest first")

	blocked, err := s.store.List(ctx, store.Filter{CompanyID: "acme_corp", Status: models.StatusBlocked})
	s.Require().NoError(err)
	s.Len(blocked, 1)

	limited, err := s.store.List(ctx, store.Filter{Limit: 1})
	s.Require().NoError(err)
	s.Len(limited, 1)
}
