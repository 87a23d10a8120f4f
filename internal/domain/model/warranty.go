package model

import (
	"time"

	"github.com/google/uuid"
)

// Channel represents a recipient's preferred notification delivery medium.
type Channel string

const (
	ChannelNone        Channel = "none"
	ChannelEmail       Channel = "email"
	ChannelSms         Channel = "sms"
	ChannelEmailAndSms Channel = "email_and_sms"
)

// Kind represents the type of event a notification describes.
type Kind string

const (
	KindWarrantyExpiring Kind = "warranty_expiring"
	KindReceiptShared    Kind = "receipt_shared"
)

// RecipientPreference holds a recipient's notification settings, joined in
// from the store alongside each warranty record.
type RecipientPreference struct {
	Channel       Channel
	ThresholdDays int // days before the deadline at which to warn, 1..90
	OptedOut      bool
	Email         string
	Phone         string
	PhoneVerified bool
}

// EffectiveChannel resolves the preferred channel against the contact
// information that is actually usable. The SMS leg requires a non-empty,
// verified phone number; without one it is silently dropped rather than
// failed, so email_and_sms degrades to email and sms degrades to none.
func (p RecipientPreference) EffectiveChannel() Channel {
	smsUsable := p.Phone != "" && p.PhoneVerified

	switch p.Channel {
	case ChannelEmailAndSms:
		if smsUsable {
			return ChannelEmailAndSms
		}
		return ChannelEmail
	case ChannelSms:
		if smsUsable {
			return ChannelSms
		}
		return ChannelNone
	case ChannelEmail:
		return ChannelEmail
	default:
		return ChannelNone
	}
}

// Candidate is one (record, recipient) pair returned by the warranty store:
// a record whose deadline falls within the outer scan bound, paired with the
// preference of one recipient of that record.
type Candidate struct {
	RecordID    uuid.UUID
	OwnerID     uuid.UUID
	RecipientID uuid.UUID
	Label       string
	Deadline    time.Time
	Preference  RecipientPreference
}

// PendingNotification is the per-cycle view of one approaching deadline.
// It lives for the duration of a scan cycle and inside the scan cache
// snapshot; it is never persisted.
type PendingNotification struct {
	RecordID      uuid.UUID `json:"record_id"`
	RecipientID   uuid.UUID `json:"recipient_id"`
	Label         string    `json:"label"`
	Deadline      time.Time `json:"deadline"`
	DaysRemaining int       `json:"days_remaining"`
}

// DedupeKey identifies "this recipient has been told about this record's
// current deadline". Once inserted into the dedupe cache, no further
// notification is sent for the pair until the key's TTL expires.
type DedupeKey struct {
	RecordID    uuid.UUID
	RecipientID uuid.UUID
}

// Contact carries the addressable endpoints for one recipient.
type Contact struct {
	Email string
	Phone string
}

// Message is the channel-agnostic payload handed to a notifier.
type Message struct {
	Kind          Kind
	RecordID      uuid.UUID
	Label         string
	DaysRemaining int
	Deadline      time.Time
	Note          string // free-form, used by the receipt-shared kind
}

// DeliveryRecord is one row of notification history, written after a
// successful dispatch.
type DeliveryRecord struct {
	RecordID    uuid.UUID
	RecipientID uuid.UUID
	Kind        Kind
	Channel     Channel
	SentAt      time.Time
}

// DaysUntil returns the number of whole calendar days between asOf and
// deadline, computed in UTC. Negative when the deadline has passed.
func DaysUntil(asOf, deadline time.Time) int {
	a := asOf.UTC()
	d := deadline.UTC()
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	dDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return int(dDay.Sub(aDay) / (24 * time.Hour))
}

// Pending builds the ephemeral notification view for a candidate.
func (c Candidate) Pending(asOf time.Time) PendingNotification {
	return PendingNotification{
		RecordID:      c.RecordID,
		RecipientID:   c.RecipientID,
		Label:         c.Label,
		Deadline:      c.Deadline,
		DaysRemaining: DaysUntil(asOf, c.Deadline),
	}
}

// Key returns the dedupe identity for the candidate.
func (c Candidate) Key() DedupeKey {
	return DedupeKey{RecordID: c.RecordID, RecipientID: c.RecipientID}
}
