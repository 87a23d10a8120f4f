// Package memory provides mutex-guarded in-process implementations of the
// dedupe and scan caches. They are sufficient for a single scheduler
// instance; multi-instance deployments must use the redis backend instead.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	repo "github.com/warrantly/expiry-notifier/internal/domain/repository"
)

// Ensure the implementations satisfy the contracts.
var (
	_ repo.DedupeCache = (*DedupeCache)(nil)
	_ repo.ScanCache   = (*ScanCache)(nil)
)

// DedupeCache is an in-process TTL set of already-notified keys.
type DedupeCache struct {
	mu   sync.Mutex
	keys map[model.DedupeKey]time.Time // value is the expiry instant
	now  func() time.Time
}

// NewDedupeCache creates an empty in-process dedupe cache.
func NewDedupeCache() *DedupeCache {
	return &DedupeCache{
		keys: make(map[model.DedupeKey]time.Time),
		now:  time.Now,
	}
}

// Contains reports whether the key is present and unexpired.
// Expired keys are removed lazily on lookup.
func (c *DedupeCache) Contains(_ context.Context, key model.DedupeKey) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiry, ok := c.keys[key]
	if !ok {
		return false, nil
	}
	if c.now().After(expiry) {
		delete(c.keys, key)
		return false, nil
	}
	return true, nil
}

// Insert adds the key; re-insertion refreshes the TTL.
func (c *DedupeCache) Insert(_ context.Context, key model.DedupeKey, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keys[key] = c.now().Add(ttl)
	return nil
}

type snapshot struct {
	list      []model.PendingNotification
	expiresAt time.Time
}

// ScanCache holds the per-owner materialized view of approaching deadlines.
type ScanCache struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]snapshot
	now       func() time.Time
}

// NewScanCache creates an empty in-process scan cache.
func NewScanCache() *ScanCache {
	return &ScanCache{
		snapshots: make(map[uuid.UUID]snapshot),
		now:       time.Now,
	}
}

// GetSnapshot returns the owner's last snapshot, or an empty list when none
// has been written yet or the snapshot expired. Cold start is not an error.
func (c *ScanCache) GetSnapshot(_ context.Context, ownerID uuid.UUID) ([]model.PendingNotification, error) {
	c.mu.RLock()
	snap, ok := c.snapshots[ownerID]
	c.mu.RUnlock()

	if !ok || c.now().After(snap.expiresAt) {
		return []model.PendingNotification{}, nil
	}

	out := make([]model.PendingNotification, len(snap.list))
	copy(out, snap.list)
	return out, nil
}

// SetSnapshot overwrites the owner's snapshot.
func (c *ScanCache) SetSnapshot(_ context.Context, ownerID uuid.UUID, list []model.PendingNotification, ttl time.Duration) error {
	stored := make([]model.PendingNotification, len(list))
	copy(stored, list)

	c.mu.Lock()
	c.snapshots[ownerID] = snapshot{list: stored, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}
