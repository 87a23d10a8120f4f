package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	repo "github.com/warrantly/expiry-notifier/internal/domain/repository"
)

// Ensure NotificationLog implements the interface
var _ repo.NotificationLog = (*NotificationLog)(nil)

// NotificationLog persists a history row per successful dispatch. The table
// carries a unique constraint on (warranty_id, recipient_id, kind), which
// acts as a durable dedupe backstop if the cache is ever lost.
type NotificationLog struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewNotificationLog creates a new instance of the NotificationLog.
func NewNotificationLog(pool *pgxpool.Pool, logger *zerolog.Logger) *NotificationLog {
	return &NotificationLog{
		pool:   pool,
		logger: logger.With().Str("layer", "postgres_notification_log").Logger(),
	}
}

const insertDeliveryQuery = `
INSERT INTO notification_history (warranty_id, recipient_id, kind, channel, sent_at)
VALUES ($1, $2, $3, $4, $5)
`

// Record inserts one delivery row. Returns ErrDuplicateRecord when a row for
// the same (record, recipient, kind) already exists.
func (l *NotificationLog) Record(ctx context.Context, rec model.DeliveryRecord) error {
	_, err := l.pool.Exec(ctx, insertDeliveryQuery,
		pgtype.UUID{Bytes: rec.RecordID, Valid: true},
		pgtype.UUID{Bytes: rec.RecipientID, Valid: true},
		string(rec.Kind),
		string(rec.Channel),
		pgtype.Timestamptz{Time: rec.SentAt, Valid: true},
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return repo.ErrDuplicateRecord
		}
		l.logger.Err(err).
			Stringer("record_id", rec.RecordID).
			Stringer("recipient_id", rec.RecipientID).
			Msg("cannot record delivery")
		return fmt.Errorf("postgres: Record failed: %w", err)
	}
	return nil
}
