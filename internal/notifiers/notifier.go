package notifiers

import (
	"context"
	"errors"

	"github.com/warrantly/expiry-notifier/internal/domain/model"
)

// ErrNoContact is returned when a channel has no usable address for the
// recipient. It is a normal, expected outcome rather than a transport fault.
var ErrNoContact = errors.New("no contact for channel")

// Notifier defines the interface for any notification sending channel.
// Implementations return an error on delivery failure and never panic past
// their boundary.
type Notifier interface {
	// Send dispatches one notification to one recipient.
	Send(ctx context.Context, contact model.Contact, msg model.Message) error
}

// Resolver maps a recipient preference to the notifier that should carry
// the send. The Dispatcher is the production implementation.
type Resolver interface {
	Resolve(pref model.RecipientPreference) (Notifier, model.Channel, bool)
}
