package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateRecord is returned when an insert violates a uniqueness
	// constraint, e.g. a second delivery row for the same (record, recipient).
	ErrDuplicateRecord = errors.New("duplicate record")
)

// WarrantyStore is the read-only query surface over persisted warranty
// records. The store applies only the generous outer bound; the precise
// per-recipient threshold is the scheduler's concern.
type WarrantyStore interface {
	// FindApproachingDeadlines returns every (record, recipient, preference)
	// triple whose deadline falls within [asOf, asOf + outerBoundDays],
	// excluding recipients who opted out.
	FindApproachingDeadlines(ctx context.Context, asOf time.Time, outerBoundDays int) ([]model.Candidate, error)
}

// DedupeCache is a time-bounded set of "already notified" keys.
type DedupeCache interface {
	// Contains reports whether the key is present and unexpired.
	Contains(ctx context.Context, key model.DedupeKey) (bool, error)

	// Insert adds the key with the given TTL. Re-insertion refreshes the TTL.
	Insert(ctx context.Context, key model.DedupeKey, ttl time.Duration) error
}

// ScanCache holds the per-owner materialized view of approaching deadlines,
// rebuilt on every scan cycle and served to synchronous read callers.
type ScanCache interface {
	// GetSnapshot returns the last written snapshot for the owner, or an
	// empty list when no scan has run yet.
	GetSnapshot(ctx context.Context, ownerID uuid.UUID) ([]model.PendingNotification, error)

	// SetSnapshot overwrites the owner's snapshot with the given TTL.
	SetSnapshot(ctx context.Context, ownerID uuid.UUID, list []model.PendingNotification, ttl time.Duration) error
}

// NotificationLog records successful dispatches for auditing. It doubles as
// a durable dedupe backstop: Record returns ErrDuplicateRecord when a row
// for the same (record, recipient, kind) already exists.
type NotificationLog interface {
	Record(ctx context.Context, rec model.DeliveryRecord) error
}
