package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	repo "github.com/warrantly/expiry-notifier/internal/domain/repository"
)

// Ensure WarrantyStore implements the interface
var _ repo.WarrantyStore = (*WarrantyStore)(nil)

// WarrantyStore implements the domain.repository.WarrantyStore interface
// using PostgreSQL as a backend. It is strictly read-only: warranty records
// are created and mutated by the receipt CRUD collaborator, never here.
type WarrantyStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWarrantyStore creates a new instance of the WarrantyStore.
func NewWarrantyStore(pool *pgxpool.Pool, logger *zerolog.Logger) *WarrantyStore {
	return &WarrantyStore{
		pool:   pool,
		logger: logger.With().Str("layer", "postgres_warranty_store").Logger(),
	}
}

// findApproachingQuery joins warranties with their recipients (owner plus
// shares) and each recipient's preference. The store applies only the
// generous outer bound; per-recipient thresholds are applied by the caller.
const findApproachingQuery = `
SELECT w.id, w.owner_id, r.recipient_id, w.label, w.deadline,
       p.channel, p.threshold_days, p.opted_out, p.email, p.phone, p.phone_verified
FROM warranties w
JOIN warranty_recipients r ON r.warranty_id = w.id
JOIN recipient_preferences p ON p.recipient_id = r.recipient_id
WHERE w.deadline IS NOT NULL
  AND w.deadline >= $1
  AND w.deadline < $2
  AND p.opted_out = FALSE
ORDER BY w.deadline
`

// FindApproachingDeadlines returns every (record, recipient, preference)
// triple whose deadline falls within [asOf, asOf + outerBoundDays],
// inclusive on both ends, computed on whole days in UTC.
func (s *WarrantyStore) FindApproachingDeadlines(ctx context.Context, asOf time.Time, outerBoundDays int) ([]model.Candidate, error) {
	day := asOf.UTC()
	lower := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	// Exclusive upper bound one day past the outer threshold, so a deadline
	// exactly outerBoundDays away still qualifies.
	upper := lower.AddDate(0, 0, outerBoundDays+1)

	rows, err := s.pool.Query(ctx, findApproachingQuery,
		pgtype.Timestamptz{Time: lower, Valid: true},
		pgtype.Timestamptz{Time: upper, Valid: true},
	)
	if err != nil {
		s.logger.Err(err).Msg("cannot query approaching deadlines")
		return nil, fmt.Errorf("postgres: FindApproachingDeadlines failed: %w", err)
	}
	defer rows.Close()

	var candidates []model.Candidate
	for rows.Next() {
		var (
			recordID    pgtype.UUID
			ownerID     pgtype.UUID
			recipientID pgtype.UUID
			label       string
			deadline    pgtype.Timestamptz
			channel     string
			threshold   int32
			optedOut    bool
			email       string
			phone       pgtype.Text
			verified    bool
		)
		if err := rows.Scan(&recordID, &ownerID, &recipientID, &label, &deadline,
			&channel, &threshold, &optedOut, &email, &phone, &verified); err != nil {
			s.logger.Err(err).Msg("cannot scan approaching deadline row")
			return nil, fmt.Errorf("postgres: scan failed: %w", err)
		}

		candidates = append(candidates, model.Candidate{
			RecordID:    recordID.Bytes,
			OwnerID:     ownerID.Bytes,
			RecipientID: recipientID.Bytes,
			Label:       label,
			Deadline:    deadline.Time,
			Preference: model.RecipientPreference{
				Channel:       model.Channel(channel),
				ThresholdDays: int(threshold),
				OptedOut:      optedOut,
				Email:         email,
				Phone:         phone.String,
				PhoneVerified: verified,
			},
		})
	}
	if err := rows.Err(); err != nil {
		s.logger.Err(err).Msg("row iteration failed")
		return nil, fmt.Errorf("postgres: rows error: %w", err)
	}

	return candidates, nil
}
