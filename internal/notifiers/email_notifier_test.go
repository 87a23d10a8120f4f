package notifiers

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
)

func TestTierForBoundaries(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "urgent"},
		{3, "urgent"},
		{4, "important"},
		{7, "important"},
		{8, "notice"},
		{30, "notice"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tierFor(tt.days).Name, "days=%d", tt.days)
	}
}

func TestRenderEmailExpiring(t *testing.T) {
	msg := model.Message{
		Kind:          model.KindWarrantyExpiring,
		RecordID:      uuid.New(),
		Label:         "Laptop",
		DaysRemaining: 2,
		Deadline:      time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	}

	subject, body, err := renderEmail(msg)
	require.NoError(t, err)

	assert.Equal(t, "Warranty for Laptop expires in 2 day(s)", subject)
	assert.Contains(t, body, "urgent")
	assert.Contains(t, body, "#d9534f")
	assert.Contains(t, body, "Laptop")
	assert.Contains(t, body, "2026-03-12")
	assert.Contains(t, body, msg.RecordID.String())
}

func TestRenderEmailEscapesLabel(t *testing.T) {
	msg := model.Message{
		Kind:          model.KindWarrantyExpiring,
		RecordID:      uuid.New(),
		Label:         `<script>alert("x")</script>`,
		DaysRemaining: 5,
		Deadline:      time.Now(),
	}

	_, body, err := renderEmail(msg)
	require.NoError(t, err)
	assert.False(t, strings.Contains(body, "<script>"), "label must be HTML-escaped")
}

func TestRenderEmailReceiptShared(t *testing.T) {
	msg := model.Message{
		Kind:     model.KindReceiptShared,
		RecordID: uuid.New(),
		Label:    "Coffee machine",
		Note:     "shared by Dana",
	}

	subject, body, err := renderEmail(msg)
	require.NoError(t, err)

	assert.Equal(t, "A receipt was shared with you: Coffee machine", subject)
	assert.Contains(t, body, "Coffee machine")
	assert.Contains(t, body, "shared by Dana")
}
