//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payshield/internal/invoice/cache"
	"payshield/internal/platform/redis"
	threatModel "payshield/internal/threat/models"
	"payshield/pkg/testutil/containers"
)

func TestVendorStatusCacheRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.NewRedisContainer(t)
	client := &redis.Client{Client: rc.Client}
	c := cache.New(client, time.Minute)
	ctx := context.Background()

	const vendorHash = "a1b2c3"
	assert.Nil(t, c.Get(ctx, vendorHash), "miss before set")

	status := &threatModel.VendorStatus{
		VendorHash:    vendorHash,
		HasThreats:    true,
		ThreatCount:   2,
		MaxFraudScore: 0.9,
		IsBlocked:     true,
	}
	require.NoError(t, c.Set(ctx, vendorHash, status))

	got := c.Get(ctx, vendorHash)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ThreatCount)
	assert.True(t, got.IsBlocked)

	c.Invalidate(ctx, vendorHash)
	assert.Nil(t, c.Get(ctx, vendorHash))
}

func TestVendorStatusCacheExpires(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.NewRedisContainer(t)
	client := &redis.Client{Client: rc.Client}
	c := cache.New(client, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "hash", &threatModel.VendorStatus{ThreatCount: 1}))
	require.Eventually(t, func() bool {
		return c.Get(ctx, "hash") == nil
	}, time.Second, 20*time.Millisecond)
}
