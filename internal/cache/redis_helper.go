package cache

import (
	"cmp"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Snapshot writes run on the publish path, so every round trip is bounded.
const (
	defaultSnapshotTTL = time.Minute
	dialTimeout        = 3 * time.Second
	commandTimeout     = time.Second
	unlinkBatch        = 100
	clientName         = "retailsense-dashboard"
)

// redisOptions resolves the connection for cfg. REDIS_URL takes precedence
// over host and port.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	opts := &redis.Options{
		Addr:     net.JoinHostPort(cmp.Or(cfg.RedisHost, "127.0.0.1"), cmp.Or(cfg.RedisPort, "6379")),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}

	opts.ClientName = clientName
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = commandTimeout
	opts.WriteTimeout = commandTimeout
	return opts, nil
}

func snapshotTTL(cfg config.CacheConfig) time.Duration {
	if cfg.DashboardTTLSeconds <= 0 {
		return defaultSnapshotTTL
	}
	return time.Duration(cfg.DashboardTTLSeconds) * time.Second
}

// connectSnapshotStore fails when Redis does not answer a ping, so a
// misconfigured cache shows up at startup instead of as a miss per read.
func connectSnapshotStore(ctx context.Context, cfg config.CacheConfig) (*redisSnapshotCache, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}

	store := &redisSnapshotCache{client: client, ttl: snapshotTTL(cfg)}
	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Dur("ttl", store.ttl).Msg("snapshot cache connected")
	return store, nil
}

// unlinkViews drops every view snapshot, scanning and unlinking in batches.
func (c *redisSnapshotCache) unlinkViews(ctx context.Context) error {
	batch := make([]string, 0, unlinkBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink snapshots: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	iter := c.client.Scan(ctx, 0, viewKeyPrefix+"*", unlinkBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == unlinkBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan snapshots: %w", err)
	}
	return flush()
}
