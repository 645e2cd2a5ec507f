// Package cache memoizes vendor threat lookups in Redis so invoice
// processing does not hit the threat ledger for every invoice from the same
// vendor.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payshield/internal/platform/redis"
	threatModel "payshield/internal/threat/models"
)

const keyPrefix = "payshield:vendorthreat:"

// VendorStatusCache caches network vendor status keyed by vendor hash.
// A nil *VendorStatusCache and a cache over a nil client are both no-ops,
// so callers need no Redis in tests or minimal deployments.
type VendorStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache with the given TTL. client may be nil.
func New(client *redis.Client, ttl time.Duration) *VendorStatusCache {
	return &VendorStatusCache{client: client, ttl: ttl}
}

// Get returns the cached status, or nil on miss or any Redis problem.
// Cache failures are not worth failing invoice processing over.
func (c *VendorStatusCache) Get(ctx context.Context, vendorHash string) *threatModel.VendorStatus {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := c.client.Client.Get(ctx, keyPrefix+vendorHash).Bytes()
	if err != nil {
		return nil
	}
	var status threatModel.VendorStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil
	}
	return &status
}

// Set stores the status for the configured TTL.
func (c *VendorStatusCache) Set(ctx context.Context, vendorHash string, status *threatModel.VendorStatus) error {
	if c == nil || c.client == nil || status == nil {
		return nil
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal vendor status: %w", err)
	}
	return c.client.Client.Set(ctx, keyPrefix+vendorHash, raw, c.ttl).Err()
}

// Invalidate drops the cached status, called when a new threat report names
// the vendor.
func (c *VendorStatusCache) Invalidate(ctx context.Context, vendorHash string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Client.Del(ctx, keyPrefix+vendorHash)
}
