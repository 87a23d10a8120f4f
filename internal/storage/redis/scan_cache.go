package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	repo "github.com/warrantly/expiry-notifier/internal/domain/repository"
	"github.com/warrantly/expiry-notifier/pkg/keybuilder"
)

// Ensure ScanCache implements the interface
var _ repo.ScanCache = (*ScanCache)(nil)

// ScanCache stores the per-owner approaching-deadline snapshot in redis as a
// JSON list under one key per owner.
type ScanCache struct {
	redis  *goredis.Client
	logger zerolog.Logger
}

// NewScanCache creates a new instance of the redis-backed ScanCache.
func NewScanCache(logger *zerolog.Logger, redis *goredis.Client) *ScanCache {
	return &ScanCache{
		redis:  redis,
		logger: logger.With().Str("layer", "redis_scan_cache").Logger(),
	}
}

// GetSnapshot returns the owner's last snapshot, or an empty list on a miss.
func (c *ScanCache) GetSnapshot(ctx context.Context, ownerID uuid.UUID) ([]model.PendingNotification, error) {
	key := keybuilder.ScanSnapshotKeyBuild(ownerID)
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return []model.PendingNotification{}, nil
		}
		c.logger.Error().Err(err).Str("key", key).Msg("failed to get snapshot from redis")
		return nil, fmt.Errorf("redis: GET failed: %w", err)
	}

	var list []model.PendingNotification
	if err := json.Unmarshal([]byte(val), &list); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to unmarshal snapshot from cache")
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}
	return list, nil
}

// SetSnapshot overwrites the owner's snapshot with the given TTL.
func (c *ScanCache) SetSnapshot(ctx context.Context, ownerID uuid.UUID, list []model.PendingNotification, ttl time.Duration) error {
	key := keybuilder.ScanSnapshotKeyBuild(ownerID)
	payload, err := json.Marshal(list)
	if err != nil {
		c.logger.Error().Err(err).Stringer("owner_id", ownerID).Msg("failed to marshal snapshot for cache")
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := c.redis.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to set snapshot in redis")
		return fmt.Errorf("redis: SET failed: %w", err)
	}
	return nil
}
