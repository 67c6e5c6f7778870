// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go caches raw upstream collections in Valkey so that repeated
// category listings and filter changes do not round-trip to the eFood API.
// Entries are invalidated on every mutation made through the dashboard.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// catalogKeyPrefix is the Valkey key prefix for cached collections.
	catalogKeyPrefix = "catalog:"

	// DefaultCatalogTTL is how long an upstream payload stays cached.
	DefaultCatalogTTL = 2 * time.Minute
)

// CategoriesKey returns the cache key for the category collection seen by
// one caller scope. An empty scope means the unscoped admin collection.
func CategoriesKey(scope string) string {
	if scope == "" {
		return "categories"
	}
	return "categories:" + scope
}

// ItemsKey returns the cache key for the item roster visible to a vendor.
// An empty vendorID means the unscoped admin roster.
func ItemsKey(vendorID string) string {
	if vendorID == "" {
		return "items"
	}
	return "items:" + vendorID
}

// Catalog manages cached upstream payloads in Valkey.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalog creates a new catalog cache backed by the given Valkey client.
func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	return &Catalog{client: client, ttl: ttl}
}

// Get retrieves a cached payload. The bool is false on a miss or an error.
func (c *Catalog) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("catalog cache hit", "key", key)
	return val, true
}

// Set stores a payload with the configured TTL.
func (c *Catalog) Set(ctx context.Context, key string, payload []byte) {
	if err := c.client.Set(ctx, catalogKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached payload.
func (c *Catalog) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, catalogKeyPrefix+key).Err(); err != nil {
		slog.Warn("catalog cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("catalog cache invalidated", "key", key)
}

// InvalidateAll removes every cached payload by scanning for the prefix.
func (c *Catalog) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, catalogKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("catalog cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("catalog cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("catalog cache cleared", "deleted", deleted)
	}
}
