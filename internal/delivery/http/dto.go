package http

import (
	"time"

	"github.com/google/uuid"
)

// PendingNotificationResponse is the read-API view of one approaching deadline.
type PendingNotificationResponse struct {
	RecordID      uuid.UUID `json:"record_id"`
	RecipientID   uuid.UUID `json:"recipient_id"`
	Label         string    `json:"label"`
	Deadline      time.Time `json:"deadline"`
	DaysRemaining int       `json:"days_remaining"`
}

// CountResponse wraps the approaching-deadline count.
type CountResponse struct {
	Count int `json:"count"`
}

// ShareRecipientRequest carries the share target's preference and contacts.
type ShareRecipientRequest struct {
	RecipientID   uuid.UUID `json:"recipient_id" binding:"required"`
	Channel       string    `json:"channel" binding:"required"`
	Email         string    `json:"email" binding:"required"`
	Phone         string    `json:"phone"`
	PhoneVerified bool      `json:"phone_verified"`
}

// ShareNotificationRequest triggers a receipt-shared notification.
type ShareNotificationRequest struct {
	RecordID  uuid.UUID             `json:"record_id" binding:"required"`
	Label     string                `json:"label" binding:"required"`
	Note      string                `json:"note"`
	Recipient ShareRecipientRequest `json:"recipient" binding:"required"`
}

// ErrorResponse defines a standard structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
