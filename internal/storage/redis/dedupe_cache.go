package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	repo "github.com/warrantly/expiry-notifier/internal/domain/repository"
	"github.com/warrantly/expiry-notifier/pkg/keybuilder"
)

// Ensure DedupeCache implements the interface
var _ repo.DedupeCache = (*DedupeCache)(nil)

// DedupeCache implements the repository.DedupeCache interface on redis,
// making the already-notified set shared across scheduler instances.
type DedupeCache struct {
	redis  *goredis.Client
	logger zerolog.Logger
}

// NewDedupeCache creates a new instance of the redis-backed DedupeCache.
func NewDedupeCache(logger *zerolog.Logger, redis *goredis.Client) *DedupeCache {
	return &DedupeCache{
		redis:  redis,
		logger: logger.With().Str("layer", "redis_dedupe_cache").Logger(),
	}
}

// Contains reports whether the key exists and has not expired.
func (c *DedupeCache) Contains(ctx context.Context, key model.DedupeKey) (bool, error) {
	redisKey := keybuilder.DedupeKeyBuild(key.RecordID, key.RecipientID)
	n, err := c.redis.Exists(ctx, redisKey).Result()
	if err != nil {
		c.logger.Error().Err(err).Str("key", redisKey).Msg("failed to check key in redis")
		return false, fmt.Errorf("redis: EXISTS failed: %w", err)
	}
	return n > 0, nil
}

// Insert adds the key with the given TTL; redis handles expiry.
func (c *DedupeCache) Insert(ctx context.Context, key model.DedupeKey, ttl time.Duration) error {
	redisKey := keybuilder.DedupeKeyBuild(key.RecordID, key.RecipientID)
	if err := c.redis.Set(ctx, redisKey, 1, ttl).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", redisKey).Msg("failed to set key in redis")
		return fmt.Errorf("redis: SET failed: %w", err)
	}
	return nil
}
