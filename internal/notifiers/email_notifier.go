package notifiers

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/config"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	"gopkg.in/gomail.v2"
)

// urgencyTier maps days-remaining to the visual treatment of the email body.
type urgencyTier struct {
	Name  string
	Color string
}

// tierFor returns the urgency tier for the given days remaining:
// 3 or fewer days is urgent, 4..7 important, 8 and beyond a notice.
func tierFor(daysRemaining int) urgencyTier {
	switch {
	case daysRemaining <= 3:
		return urgencyTier{Name: "urgent", Color: "#d9534f"}
	case daysRemaining <= 7:
		return urgencyTier{Name: "important", Color: "#f0ad4e"}
	default:
		return urgencyTier{Name: "notice", Color: "#5bc0de"}
	}
}

var expiringBodyTmpl = template.Must(template.New("expiring").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="border-left: 6px solid {{.Color}}; padding: 12px 16px;">
    <h2 style="color: {{.Color}}; text-transform: uppercase;">{{.Tier}}</h2>
    <p>The warranty for <strong>{{.Label}}</strong> expires in
      <strong>{{.DaysRemaining}}</strong> day(s), on {{.Deadline}}.</p>
    <p style="color: #777; font-size: 12px;">Reference: {{.RecordID}}</p>
  </div>
</body>
</html>`))

var sharedBodyTmpl = template.Must(template.New("shared").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="border-left: 6px solid #5bc0de; padding: 12px 16px;">
    <h2 style="color: #5bc0de;">Receipt shared with you</h2>
    <p>The receipt <strong>{{.Label}}</strong> has been shared with you.</p>
    {{if .Note}}<p>{{.Note}}</p>{{end}}
    <p style="color: #777; font-size: 12px;">Reference: {{.RecordID}}</p>
  </div>
</body>
</html>`))

// EmailNotifier sends notifications via SMTP.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

// NewEmailNotifier creates a new instance of EmailNotifier.
func NewEmailNotifier(cfg config.EmailConfig, logger *zerolog.Logger) *EmailNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &EmailNotifier{
		dialer: d,
		from:   cfg.From,
		logger: logger.With().Str("component", "email_notifier").Logger(),
	}
}

// Send implements the Notifier interface for email.
func (n *EmailNotifier) Send(_ context.Context, contact model.Contact, msg model.Message) error {
	if contact.Email == "" {
		return ErrNoContact
	}

	subject, body, err := renderEmail(msg)
	if err != nil {
		n.logger.Error().Err(err).Stringer("record_id", msg.RecordID).Msg("failed to render email body")
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", contact.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	// DialAndSend opens a connection, sends the email, and closes it.
	if err := n.dialer.DialAndSend(m); err != nil {
		n.logger.Warn().Err(err).Stringer("record_id", msg.RecordID).Msg("failed to send email")
		return fmt.Errorf("email: send failed: %w", err)
	}

	n.logger.Info().Stringer("record_id", msg.RecordID).Str("recipient", contact.Email).Msg("email sent successfully")
	return nil
}

// renderEmail produces the subject line and HTML body for a message.
func renderEmail(msg model.Message) (string, string, error) {
	var buf bytes.Buffer

	switch msg.Kind {
	case model.KindReceiptShared:
		data := struct {
			Label, Note string
			RecordID    string
		}{msg.Label, msg.Note, msg.RecordID.String()}
		if err := sharedBodyTmpl.Execute(&buf, data); err != nil {
			return "", "", fmt.Errorf("email: render shared template: %w", err)
		}
		return fmt.Sprintf("A receipt was shared with you: %s", msg.Label), buf.String(), nil
	default:
		tier := tierFor(msg.DaysRemaining)
		data := struct {
			Tier, Color, Label string
			DaysRemaining      int
			Deadline           string
			RecordID           string
		}{tier.Name, tier.Color, msg.Label, msg.DaysRemaining, msg.Deadline.UTC().Format("2006-01-02"), msg.RecordID.String()}
		if err := expiringBodyTmpl.Execute(&buf, data); err != nil {
			return "", "", fmt.Errorf("email: render expiring template: %w", err)
		}
		return fmt.Sprintf("Warranty for %s expires in %d day(s)", msg.Label, msg.DaysRemaining), buf.String(), nil
	}
}
