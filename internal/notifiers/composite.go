package notifiers

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	"go.uber.org/multierr"
)

// CompositeNotifier fans one notification out to the email and SMS legs.
// Both legs are always attempted; the send succeeds if either leg succeeds,
// and the combined error is returned only when both fail.
type CompositeNotifier struct {
	email  Notifier
	sms    Notifier
	logger zerolog.Logger
}

// NewCompositeNotifier creates a new instance of CompositeNotifier.
func NewCompositeNotifier(email, sms Notifier, logger *zerolog.Logger) *CompositeNotifier {
	return &CompositeNotifier{
		email:  email,
		sms:    sms,
		logger: logger.With().Str("component", "composite_notifier").Logger(),
	}
}

// Send implements the Notifier interface. No short-circuit: a failing email
// leg does not block the SMS leg or vice versa.
func (n *CompositeNotifier) Send(ctx context.Context, contact model.Contact, msg model.Message) error {
	emailErr := n.email.Send(ctx, contact, msg)
	smsErr := n.sms.Send(ctx, contact, msg)

	if emailErr != nil && smsErr != nil {
		return multierr.Combine(emailErr, smsErr)
	}

	// Partial failure counts as overall success; the failing leg is logged
	// for operational visibility.
	if emailErr != nil {
		n.logger.Warn().Err(emailErr).Stringer("record_id", msg.RecordID).Msg("email leg failed, sms leg succeeded")
	}
	if smsErr != nil {
		n.logger.Warn().Err(smsErr).Stringer("record_id", msg.RecordID).Msg("sms leg failed, email leg succeeded")
	}

	return nil
}
