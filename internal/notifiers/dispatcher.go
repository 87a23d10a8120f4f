package notifiers

import (
	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/config"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
)

// Dispatcher holds the configured channel implementations and resolves a
// recipient preference to the notifier that should carry the send.
type Dispatcher struct {
	email  Notifier
	sms    Notifier
	both   Notifier
	logger zerolog.Logger
}

// NewDispatcher creates a new Dispatcher and initializes channel-specific
// notifiers based on the application's configuration mode.
func NewDispatcher(cfg *config.Config, logger *zerolog.Logger) *Dispatcher {
	log := logger.With().Str("component", "dispatcher").Logger()
	log.Info().Str("mode", cfg.Notifiers.Mode).Msg("initializing notifiers")

	// The LogNotifier is the fallback for every leg.
	logNotifier := NewLogNotifier(logger)
	var email, sms Notifier = logNotifier, logNotifier

	// In "production" mode, override the defaults with real transports
	// where they are configured.
	if cfg.Notifiers.Mode == "production" {
		if cfg.Notifiers.Email.Host != "" {
			email = NewEmailNotifier(cfg.Notifiers.Email, logger)
			log.Info().Msg("email notifier enabled")
		}
		if cfg.Notifiers.SMS.GatewayURL != "" {
			sms = NewSMSNotifier(cfg.Notifiers.SMS, logger)
			log.Info().Msg("sms notifier enabled")
		}
	}

	return &Dispatcher{
		email:  email,
		sms:    sms,
		both:   NewCompositeNotifier(email, sms, logger),
		logger: log,
	}
}

// Resolve maps a recipient preference to the notifier carrying the send and
// the effective channel after contact-info downgrade. The second return is
// false when no usable channel remains, which the caller treats as a skip,
// never as an error.
func (d *Dispatcher) Resolve(pref model.RecipientPreference) (Notifier, model.Channel, bool) {
	switch effective := pref.EffectiveChannel(); effective {
	case model.ChannelEmail:
		return d.email, effective, true
	case model.ChannelSms:
		return d.sms, effective, true
	case model.ChannelEmailAndSms:
		return d.both, effective, true
	default:
		return nil, model.ChannelNone, false
	}
}
