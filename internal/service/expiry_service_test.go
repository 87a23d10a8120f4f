package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warrantly/expiry-notifier/internal/config"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	"github.com/warrantly/expiry-notifier/internal/notifiers"
	"github.com/warrantly/expiry-notifier/internal/storage/memory"
)

type recordingLog struct {
	records []model.DeliveryRecord
}

func (r *recordingLog) Record(_ context.Context, rec model.DeliveryRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func newTestService(history *recordingLog) *ExpiryService {
	log := zerolog.Nop()
	cfg := &config.Config{Notifiers: config.NotifiersConfig{Mode: "log_only"}}
	dispatcher := notifiers.NewDispatcher(cfg, &log)
	return NewExpiryService(memory.NewScanCache(), history, dispatcher, &log)
}

func TestNotifyReceiptSharedRecordsHistory(t *testing.T) {
	history := &recordingLog{}
	svc := newTestService(history)

	recipientID := uuid.New()
	recordID := uuid.New()
	pref := model.RecipientPreference{Channel: model.ChannelEmail, Email: "friend@example.com"}

	err := svc.NotifyReceiptShared(context.Background(), recipientID, pref, recordID, "Coffee machine", "shared by Dana")
	require.NoError(t, err)

	require.Len(t, history.records, 1)
	assert.Equal(t, recordID, history.records[0].RecordID)
	assert.Equal(t, recipientID, history.records[0].RecipientID)
	assert.Equal(t, model.KindReceiptShared, history.records[0].Kind)
	assert.Equal(t, model.ChannelEmail, history.records[0].Channel)
}

func TestNotifyReceiptSharedNoUsableChannel(t *testing.T) {
	history := &recordingLog{}
	svc := newTestService(history)

	pref := model.RecipientPreference{Channel: model.ChannelSms} // no phone on file

	err := svc.NotifyReceiptShared(context.Background(), uuid.New(), pref, uuid.New(), "Coffee machine", "")
	assert.ErrorIs(t, err, ErrNoUsableChannel)
	assert.Empty(t, history.records)
}
