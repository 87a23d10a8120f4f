package notifiers

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
)

// LogNotifier records the notification in the log instead of sending it
// through a real channel. It always succeeds, which makes it the graceful
// default for environments without configured transports.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new instance of LogNotifier.
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With().Str("component", "log_notifier").Logger(),
	}
}

// Send implements the Notifier interface.
func (n *LogNotifier) Send(_ context.Context, contact model.Contact, msg model.Message) error {
	n.logger.Info().
		Stringer("record_id", msg.RecordID).
		Str("kind", string(msg.Kind)).
		Str("email", contact.Email).
		Str("phone", contact.Phone).
		Str("label", msg.Label).
		Int("days_remaining", msg.DaysRemaining).
		Msg(">>> MOCK SEND: notification dispatched")

	return nil
}
