package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
)

func TestDedupeCacheTTL(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := NewDedupeCache()
	c.now = func() time.Time { return now }

	key := model.DedupeKey{RecordID: uuid.New(), RecipientID: uuid.New()}
	ctx := context.Background()

	seen, err := c.Contains(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, c.Insert(ctx, key, time.Hour))

	seen, err = c.Contains(ctx, key)
	require.NoError(t, err)
	assert.True(t, seen)

	// Expired keys are dropped on lookup.
	now = now.Add(2 * time.Hour)
	seen, err = c.Contains(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDedupeCacheReinsertRefreshesTTL(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := NewDedupeCache()
	c.now = func() time.Time { return now }

	key := model.DedupeKey{RecordID: uuid.New(), RecipientID: uuid.New()}
	ctx := context.Background()

	require.NoError(t, c.Insert(ctx, key, time.Hour))
	now = now.Add(50 * time.Minute)
	require.NoError(t, c.Insert(ctx, key, time.Hour))

	now = now.Add(30 * time.Minute) // past the first expiry, within the second
	seen, err := c.Contains(ctx, key)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestScanCacheColdStartAndOverwrite(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := NewScanCache()
	c.now = func() time.Time { return now }

	owner := uuid.New()
	ctx := context.Background()

	// Cold start: empty, not an error.
	snap, err := c.GetSnapshot(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, snap)

	first := []model.PendingNotification{{RecordID: uuid.New(), Label: "TV", DaysRemaining: 4}}
	require.NoError(t, c.SetSnapshot(ctx, owner, first, time.Hour))

	snap, err = c.GetSnapshot(ctx, owner)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "TV", snap[0].Label)

	second := []model.PendingNotification{
		{RecordID: uuid.New(), Label: "TV", DaysRemaining: 4},
		{RecordID: uuid.New(), Label: "Phone", DaysRemaining: 1},
	}
	require.NoError(t, c.SetSnapshot(ctx, owner, second, time.Hour))

	snap, err = c.GetSnapshot(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, snap, 2)
}

func TestScanCacheExpiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := NewScanCache()
	c.now = func() time.Time { return now }

	owner := uuid.New()
	ctx := context.Background()

	require.NoError(t, c.SetSnapshot(ctx, owner, []model.PendingNotification{{Label: "TV"}}, time.Minute))

	now = now.Add(2 * time.Minute)
	snap, err := c.GetSnapshot(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, snap)
}
