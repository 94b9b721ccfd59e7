// Package redisclient caches product availability snapshots for the
// gateway's read path. The cache is advisory: stock mutations are decided by
// the catalog's storage transaction, never by cached values.
package redisclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/apply_stock_delta.lua
var applyStockDeltaScript string

// ErrCacheMiss is returned when no snapshot is cached for a product.
var ErrCacheMiss = errors.New("snapshot not cached")

// Snapshot is the cached product projection.
type Snapshot struct {
	Name       string
	PriceCents int64
	Currency   string
	Available  int
}

type Client struct {
	rdb         *redis.Client
	deltaScript *redis.Script
	ttl         time.Duration
}

// NewClient connects to Redis and loads the delta script.
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:         rdb,
		deltaScript: redis.NewScript(applyStockDeltaScript),
		ttl:         ttl,
	}, nil
}

// GetClient returns the underlying Redis client.
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func snapshotKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}

// GetSnapshot retrieves a cached product snapshot.
func (c *Client) GetSnapshot(ctx context.Context, productID string) (Snapshot, error) {
	result, err := c.rdb.HGetAll(ctx, snapshotKey(productID)).Result()
	if err != nil {
		return Snapshot{}, err
	}
	if len(result) == 0 {
		return Snapshot{}, ErrCacheMiss
	}

	priceCents, err := strconv.ParseInt(result["price_cents"], 10, 64)
	if err != nil {
		return Snapshot{}, fmt.Errorf("corrupt cached snapshot for %s: %w", productID, err)
	}
	available, err := strconv.Atoi(result["available"])
	if err != nil {
		return Snapshot{}, fmt.Errorf("corrupt cached snapshot for %s: %w", productID, err)
	}

	return Snapshot{
		Name:       result["name"],
		PriceCents: priceCents,
		Currency:   result["currency"],
		Available:  available,
	}, nil
}

// SetSnapshot stores a product snapshot with the configured TTL.
func (c *Client) SetSnapshot(ctx context.Context, productID string, snapshot Snapshot) error {
	key := snapshotKey(productID)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key,
		"name", snapshot.Name,
		"price_cents", snapshot.PriceCents,
		"currency", snapshot.Currency,
		"available", snapshot.Available)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// ApplyStockDelta atomically adjusts the cached availability. A negative
// delta reflects a reservation, a positive one a release. Missing snapshots
// are left absent; the next read repopulates from the catalog.
func (c *Client) ApplyStockDelta(ctx context.Context, productID string, delta int) error {
	_, err := c.deltaScript.Run(ctx, c.rdb, []string{snapshotKey(productID)}, delta).Result()
	if err != nil {
		return fmt.Errorf("apply stock delta script failed: %w", err)
	}
	return nil
}

// InvalidateSnapshot drops the cached snapshot for a product.
func (c *Client) InvalidateSnapshot(ctx context.Context, productID string) error {
	return c.rdb.Del(ctx, snapshotKey(productID)).Err()
}
