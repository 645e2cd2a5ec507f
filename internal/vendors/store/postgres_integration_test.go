//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"payshield/internal/vendors/models"
	"payshield/internal/vendors/store"
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "vendors"))
}

func newTestVendor(name string) *models.Vendor {
	return &models.Vendor{
		ID:        uuid.New(),
		Name:      name,
		IsTrusted: true,
		RiskScore: 0.1,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	v := newTestVendor("CloudTech Solutions")

	s.Require().NoError(s.store.Create(ctx, v))

	got, err := s.store.Get(ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(v.Name, got.Name)
	s.True(got.IsTrusted)
	s.Nil(got.UpdatedAt)
}

func (s *PostgresStoreSuite) TestCreateDuplicateNameConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestVendor("CloudTech Solutions")))

	err := s.store.Create(ctx, newTestVendor("CloudTech Solutions"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestGetByNameCaseInsensitive() {
	ctx := context.Background()
	v := newTestVendor("CloudTech Solutions")
	s.Require().NoError(s.store.Create(ctx, v))

	got, err := s.store.GetByName(ctx, "cloudtech solutions")
	s.Require().NoError(err)
	s.Equal(v.ID, got.ID)

	_, err = s.store.GetByName(ctx, "unknown")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	v := newTestVendor("CloudTech Solutions")
	s.Require().NoError(s.store.Create(ctx, v))

	now := time.Now().UTC().Truncate(time.Microsecond)
	v.RiskScore = 0.9
	v.IsTrusted = false
	v.UpdatedAt = &now
	s.Require().NoError(s.store.Update(ctx, v))

	got, err := s.store.Get(ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(0.9, got.RiskScore)
	s.False(got.IsTrusted)
	s.Require().NotNil(got.UpdatedAt)

	s.ErrorIs(s.store.Update(ctx, newTestVendor("Ghost")), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	v := newTestVendor("CloudTech Solutions")
	s.Require().NoError(s.store.Create(ctx, v))

	s.Require().NoError(s.store.Delete(ctx, v.ID))
	_, err := s.store.Get(ctx, v.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, v.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListTrustedOnly() {
	ctx := context.Background()
	trusted := newTestVendor("Alpha Corp")
	untrusted := newTestVendor("Beta Corp")
	untrusted.IsTrusted = false
	s.Require().NoError(s.store.Create(ctx, trusted))
	s.Require().NoError(s.store.Create(ctx, untrusted))

	all, err := s.store.List(ctx, false, 0, 0)
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal("Alpha Corp", all[0].Name, "ordered by name")

	trustedOnly, err := s.store.List(ctx, true, 0, 0)
	s.Require().NoError(err)
	s.Len(trustedOnly, 1)
	s.Equal("Alpha Corp", trustedOnly[0].Name)
}
