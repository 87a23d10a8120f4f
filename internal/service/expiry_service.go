package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	repo "github.com/warrantly/expiry-notifier/internal/domain/repository"
	"github.com/warrantly/expiry-notifier/internal/notifiers"
)

// ErrNoUsableChannel is returned when a recipient's preference resolves to
// no deliverable channel.
var ErrNoUsableChannel = errors.New("no usable notification channel for recipient")

// ExpiryService serves the synchronous read path over the scan cache and
// carries the receipt-shared dispatch. Read queries never hit the warranty
// store directly; they reflect the last completed scan cycle.
type ExpiryService struct {
	scan       repo.ScanCache
	history    repo.NotificationLog
	dispatcher notifiers.Resolver
	logger     zerolog.Logger
}

// NewExpiryService creates a new instance of ExpiryService.
func NewExpiryService(
	scan repo.ScanCache,
	history repo.NotificationLog,
	dispatcher notifiers.Resolver,
	logger *zerolog.Logger,
) *ExpiryService {
	return &ExpiryService{
		scan:       scan,
		history:    history,
		dispatcher: dispatcher,
		logger:     logger.With().Str("layer", "service").Logger(),
	}
}

// GetApproachingDeadlines returns the owner's last scan snapshot. A cold
// start (no scan has run yet) yields an empty list, not an error.
func (s *ExpiryService) GetApproachingDeadlines(ctx context.Context, ownerID uuid.UUID) ([]model.PendingNotification, error) {
	list, err := s.scan.GetSnapshot(ctx, ownerID)
	if err != nil {
		s.logger.Error().Err(err).Stringer("owner_id", ownerID).Msg("failed to read scan snapshot")
		return nil, err
	}
	return list, nil
}

// GetApproachingDeadlineCount returns how many deadlines are approaching for
// the owner.
func (s *ExpiryService) GetApproachingDeadlineCount(ctx context.Context, ownerID uuid.UUID) (int, error) {
	list, err := s.GetApproachingDeadlines(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// NotifyReceiptShared dispatches a receipt-shared notification to the share
// target, honoring the target's channel preference and contact downgrade
// rules. Called synchronously at share time by the CRUD collaborator.
func (s *ExpiryService) NotifyReceiptShared(ctx context.Context, recipientID uuid.UUID, pref model.RecipientPreference, recordID uuid.UUID, label, note string) error {
	notifier, channel, ok := s.dispatcher.Resolve(pref)
	if !ok {
		s.logger.Info().Stringer("recipient_id", recipientID).Msg("share notification skipped, no usable channel")
		return ErrNoUsableChannel
	}

	contact := model.Contact{Email: pref.Email}
	if pref.Phone != "" && pref.PhoneVerified {
		contact.Phone = pref.Phone
	}

	msg := model.Message{
		Kind:     model.KindReceiptShared,
		RecordID: recordID,
		Label:    label,
		Note:     note,
	}

	if err := notifier.Send(ctx, contact, msg); err != nil {
		s.logger.Warn().Err(err).Stringer("record_id", recordID).Msg("share notification dispatch failed")
		return err
	}

	if s.history != nil {
		rec := model.DeliveryRecord{
			RecordID:    recordID,
			RecipientID: recipientID,
			Kind:        model.KindReceiptShared,
			Channel:     channel,
			SentAt:      time.Now().UTC(),
		}
		if err := s.history.Record(ctx, rec); err != nil && !errors.Is(err, repo.ErrDuplicateRecord) {
			s.logger.Warn().Err(err).Stringer("record_id", recordID).Msg("failed to record share delivery history")
		}
	}

	return nil
}
