package notifiers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/config"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
)

// smsMaxRunes is the single-segment SMS length budget.
const smsMaxRunes = 160

// SMSNotifier sends short text messages through an HTTP SMS gateway.
type SMSNotifier struct {
	client *http.Client
	url    string
	apiKey string
	from   string
	logger zerolog.Logger
}

// NewSMSNotifier creates a new instance of SMSNotifier.
func NewSMSNotifier(cfg config.SMSConfig, logger *zerolog.Logger) *SMSNotifier {
	return &SMSNotifier{
		client: &http.Client{Timeout: cfg.Timeout},
		url:    cfg.GatewayURL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		logger: logger.With().Str("component", "sms_notifier").Logger(),
	}
}

// smsPayload is the gateway wire format.
type smsPayload struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

// Send implements the Notifier interface for SMS. A missing phone number is
// a normal outcome and reported as ErrNoContact, not a transport failure.
func (n *SMSNotifier) Send(ctx context.Context, contact model.Contact, msg model.Message) error {
	if contact.Phone == "" {
		return ErrNoContact
	}
	if n.url == "" {
		return fmt.Errorf("sms: gateway url not configured")
	}

	body, err := json.Marshal(smsPayload{
		To:   contact.Phone,
		From: n.from,
		Body: renderSMS(msg),
	})
	if err != nil {
		return fmt.Errorf("sms: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn().Err(err).Stringer("record_id", msg.RecordID).Msg("failed to reach sms gateway")
		return fmt.Errorf("sms: gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.Warn().Int("status", resp.StatusCode).Stringer("record_id", msg.RecordID).Msg("sms gateway rejected message")
		return fmt.Errorf("sms: gateway returned status %d", resp.StatusCode)
	}

	n.logger.Info().Stringer("record_id", msg.RecordID).Str("recipient", contact.Phone).Msg("sms sent successfully")
	return nil
}

// renderSMS produces a plain-text body that fits one SMS segment.
func renderSMS(msg model.Message) string {
	var text string
	switch msg.Kind {
	case model.KindReceiptShared:
		text = fmt.Sprintf("Receipt shared with you: %s", msg.Label)
	default:
		text = fmt.Sprintf("Warranty alert: %s expires in %d day(s) on %s",
			msg.Label, msg.DaysRemaining, msg.Deadline.UTC().Format("2006-01-02"))
	}

	runes := []rune(text)
	if len(runes) > smsMaxRunes {
		return string(runes[:smsMaxRunes-1]) + "…"
	}
	return text
}
