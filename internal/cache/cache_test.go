// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "catalog:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, "")
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	// Verify connection.
	ctx := context.Background()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestCatalogKeys(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{CategoriesKey(""), "categories"},
		{CategoriesKey("vendor:77"), "categories:vendor:77"},
		{ItemsKey(""), "items"},
		{ItemsKey("12"), "items:12"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestCatalogSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	c := NewCatalog(client, 1*time.Minute)

	ctx := context.Background()

	// Miss.
	data, ok := c.Get(ctx, CategoriesKey(""))
	if ok {
		t.Error("expected cache miss")
	}
	if data != nil {
		t.Error("expected nil data on miss")
	}

	payload := []byte(`[{"id":1,"category_name":"Pizza"}]`)
	c.Set(ctx, CategoriesKey(""), payload)

	data, ok = c.Get(ctx, CategoriesKey(""))
	if !ok {
		t.Error("expected cache hit")
	}
	if string(data) != string(payload) {
		t.Errorf("data mismatch: got %q, want %q", data, payload)
	}
}

func TestCatalogTTL(t *testing.T) {
	client := testValkeyClient(t)
	c := NewCatalog(client, 30*time.Second)

	ctx := context.Background()
	c.Set(ctx, CategoriesKey(""), []byte("[]"))

	ttl, err := client.TTL(ctx, "catalog:"+CategoriesKey("")).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > 30*time.Second {
		t.Errorf("unexpected TTL %v", ttl)
	}
}

func TestCatalogInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	c := NewCatalog(client, 1*time.Minute)

	ctx := context.Background()

	c.Set(ctx, CategoriesKey(""), []byte("cached"))
	if _, ok := c.Get(ctx, CategoriesKey("")); !ok {
		t.Fatal("expected cache hit before invalidation")
	}

	c.Invalidate(ctx, CategoriesKey(""))

	if _, ok := c.Get(ctx, CategoriesKey("")); ok {
		t.Error("expected cache miss after invalidation")
	}
}

func TestCatalogInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	c := NewCatalog(client, 1*time.Minute)

	ctx := context.Background()

	keys := []string{CategoriesKey(""), CategoriesKey("vendor:77"), ItemsKey(""), ItemsKey("12")}
	for _, k := range keys {
		c.Set(ctx, k, []byte("x"))
	}

	c.InvalidateAll(ctx)

	for _, k := range keys {
		if _, ok := c.Get(ctx, k); ok {
			t.Errorf("expected miss for %q after InvalidateAll", k)
		}
	}
}

func TestItemsKey(t *testing.T) {
	tests := []struct {
		vendor string
		want   string
	}{
		{"", "items"},
		{"12", "items:12"},
	}
	for _, tt := range tests {
		if got := ItemsKey(tt.vendor); got != tt.want {
			t.Errorf("ItemsKey(%q) = %q, want %q", tt.vendor, got, tt.want)
		}
	}
}

func TestNewCatalogDefaultTTL(t *testing.T) {
	client := testValkeyClient(t)

	c := NewCatalog(client, 0)
	if c.ttl != DefaultCatalogTTL {
		t.Errorf("expected DefaultCatalogTTL (%v), got %v", DefaultCatalogTTL, c.ttl)
	}
}
