package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payshield/internal/vendors/models"
	"payshield/internal/vendors/store"
	dErrors "payshield/pkg/domain-errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(store.NewMemory(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateVendor(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	vendor, err := svc.Create(ctx, models.CreateVendorRequest{
		Name:          "  Acme Supplies  ",
		WalletAddress: "0xabc",
		IsTrusted:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Supplies", vendor.Name, "name is trimmed")
	assert.NotEqual(t, uuid.Nil, vendor.ID)
	assert.Zero(t, vendor.RiskScore, "new vendors start at zero risk")

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, models.CreateVendorRequest{Name: "acme supplies"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, models.CreateVendorRequest{Name: "   "})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestGetVendor(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.Create(ctx, models.CreateVendorRequest{Name: "Acme Supplies"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	byName, err := svc.GetByName(ctx, "ACME SUPPLIES")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = svc.Get(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestUpdateVendor(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.Create(ctx, models.CreateVendorRequest{Name: "Acme Supplies"})
	require.NoError(t, err)

	trusted := true
	email := "billing@acme.example"
	updated, err := svc.Update(ctx, created.ID, models.UpdateVendorRequest{
		IsTrusted: &trusted,
		Email:     &email,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsTrusted)
	assert.Equal(t, email, updated.Email)
	assert.Equal(t, "Acme Supplies", updated.Name, "unset fields unchanged")

	t.Run("risk score bounds", func(t *testing.T) {
		bad := 1.5
		_, err := svc.Update(ctx, created.ID, models.UpdateVendorRequest{RiskScore: &bad})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestDeleteVendor(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.Create(ctx, models.CreateVendorRequest{Name: "Acme Supplies"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	err = svc.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListVendors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, name := range []string{"Zeta Logistics", "Acme Supplies", "Midway Paper"} {
		_, err := svc.Create(ctx, models.CreateVendorRequest{Name: name, IsTrusted: name == "Acme Supplies"})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, false, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Acme Supplies", all[0].Name, "sorted by name")

	trusted, err := svc.List(ctx, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, trusted, 1)
	assert.Equal(t, "Acme Supplies", trusted[0].Name)
}

func TestRaiseRiskScore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.Create(ctx, models.CreateVendorRequest{Name: "Shady Vendor LLC"})
	require.NoError(t, err)

	require.NoError(t, svc.RaiseRiskScore(ctx, created.ID, 0.8))
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.8, got.RiskScore)

	// Lower scores never ratchet down.
	require.NoError(t, svc.RaiseRiskScore(ctx, created.ID, 0.3))
	got, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.8, got.RiskScore)

	// Scores cap at 1.
	require.NoError(t, svc.RaiseRiskScore(ctx, created.ID, 2.0))
	got, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.RiskScore)
}
