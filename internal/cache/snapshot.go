package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const viewKeyPrefix = "retailsense:view:"

// SnapshotCache keeps the last published view-model of each view for a
// bounded time, shared between processes.
type SnapshotCache interface {
	// Get decodes the cached model of view into dst and reports whether one was found.
	Get(ctx context.Context, view string, dst any) (bool, error)
	Set(ctx context.Context, view string, model any) error
	Invalidate(ctx context.Context, view string) error
	InvalidateAll(ctx context.Context) error
}

type redisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSnapshotCache struct{}

func NewSnapshotCache(cfg config.CacheConfig) (SnapshotCache, error) {
	if !cfg.Enabled {
		return &noopSnapshotCache{}, nil
	}

	return connectSnapshotStore(context.Background(), cfg)
}

func NewNoopSnapshotCache() SnapshotCache {
	return &noopSnapshotCache{}
}

func (c *redisSnapshotCache) Get(ctx context.Context, view string, dst any) (bool, error) {
	payload, err := c.client.Get(ctx, viewKey(view)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode %s snapshot cache: %w", view, err)
	}

	return true, nil
}

func (c *redisSnapshotCache) Set(ctx context.Context, view string, model any) error {
	payload, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode %s snapshot cache: %w", view, err)
	}

	if err := c.client.Set(ctx, viewKey(view), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisSnapshotCache) Invalidate(ctx context.Context, view string) error {
	if err := c.client.Del(ctx, viewKey(view)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisSnapshotCache) InvalidateAll(ctx context.Context) error {
	return c.unlinkViews(ctx)
}

func (n *noopSnapshotCache) Get(ctx context.Context, view string, dst any) (bool, error) {
	return false, nil
}

func (n *noopSnapshotCache) Set(ctx context.Context, view string, model any) error {
	return nil
}

func (n *noopSnapshotCache) Invalidate(ctx context.Context, view string) error {
	return nil
}

func (n *noopSnapshotCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func viewKey(view string) string {
	return viewKeyPrefix + view
}
