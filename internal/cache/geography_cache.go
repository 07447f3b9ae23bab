package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/GTDGit/gtd_market/pkg/address"
)

// GeographySnapshot is the cached form of the reference data.
type GeographySnapshot struct {
	Provinces []address.Province `json:"provinces"`
	Cities    []address.City     `json:"cities"`
	Districts []address.District `json:"districts"`
	CachedAt  time.Time          `json:"cachedAt"`
}

// GeographyCache keeps the assembled geography tree in Redis.
type GeographyCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewGeographyCache creates a new GeographyCache.
func NewGeographyCache(redis *RedisClient, ttl time.Duration) *GeographyCache {
	return &GeographyCache{redis: redis, ttl: ttl}
}

const geographyKey = "geo:snapshot:v1"

// Get returns the cached snapshot or ErrMiss.
func (c *GeographyCache) Get(ctx context.Context) (*GeographySnapshot, error) {
	var snap GeographySnapshot
	if err := c.redis.GetJSON(ctx, geographyKey, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Set stores the snapshot with the configured TTL.
func (c *GeographyCache) Set(ctx context.Context, snap *GeographySnapshot) error {
	snap.CachedAt = time.Now()
	if err := c.redis.SetJSON(ctx, geographyKey, snap, c.ttl); err != nil {
		return fmt.Errorf("failed to cache geography: %w", err)
	}
	return nil
}

// Invalidate drops the snapshot.
func (c *GeographyCache) Invalidate(ctx context.Context) error {
	return c.redis.Delete(ctx, geographyKey)
}
