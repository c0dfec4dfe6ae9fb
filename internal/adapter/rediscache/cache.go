// Package rediscache caches account configs in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shalev396/Call-Filter/internal/domain"
)

const keyPrefix = "callfilter:config:"

// Cache implements port.ConfigCache. Redis failures are logged and treated as misses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New returns a cache storing entries for ttl.
func New(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "rediscache").Logger(),
	}
}

func key(accountID string) string {
	return keyPrefix + accountID
}

func (c *Cache) Get(ctx context.Context, accountID string) (*domain.Config, bool) {
	if c.client == nil || c.ttl <= 0 {
		return nil, false
	}
	val, err := c.client.Get(ctx, key(accountID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("account_id", accountID).Msg("cache read failed")
		}
		return nil, false
	}
	var cfg domain.Config
	if err := json.Unmarshal([]byte(val), &cfg); err != nil {
		c.logger.Warn().Err(err).Str("account_id", accountID).Msg("cache entry corrupt")
		return nil, false
	}
	return &cfg, true
}

func (c *Cache) Set(ctx context.Context, accountID string, cfg domain.Config) {
	if c.client == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(accountID), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("account_id", accountID).Msg("cache write failed")
	}
}

func (c *Cache) Invalidate(ctx context.Context, accountID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key(accountID)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("account_id", accountID).Msg("cache invalidate failed")
	}
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
