package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysUntil(t *testing.T) {
	asOf := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline time.Time
		want     int
	}{
		{"same day", time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC), 0},
		{"later same day still zero", time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), 0},
		{"next day morning", time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC), 1},
		{"seven days", time.Date(2026, 3, 17, 8, 0, 0, 0, time.UTC), 7},
		{"yesterday", time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC), -1},
		{"non-utc deadline normalized", time.Date(2026, 3, 11, 1, 0, 0, 0, time.FixedZone("CET", 3600)), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(asOf, tt.deadline))
		})
	}
}

func TestEffectiveChannel(t *testing.T) {
	verified := RecipientPreference{Phone: "+1555", PhoneVerified: true}

	tests := []struct {
		name string
		pref RecipientPreference
		want Channel
	}{
		{"none stays none", RecipientPreference{Channel: ChannelNone}, ChannelNone},
		{"email stays email", RecipientPreference{Channel: ChannelEmail}, ChannelEmail},
		{"sms with verified phone", RecipientPreference{Channel: ChannelSms, Phone: verified.Phone, PhoneVerified: true}, ChannelSms},
		{"sms without phone drops to none", RecipientPreference{Channel: ChannelSms}, ChannelNone},
		{"sms with unverified phone drops to none", RecipientPreference{Channel: ChannelSms, Phone: "+1555"}, ChannelNone},
		{"both with verified phone", RecipientPreference{Channel: ChannelEmailAndSms, Phone: "+1555", PhoneVerified: true}, ChannelEmailAndSms},
		{"both without phone drops to email", RecipientPreference{Channel: ChannelEmailAndSms}, ChannelEmail},
		{"unknown value treated as none", RecipientPreference{Channel: Channel("pigeon")}, ChannelNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pref.EffectiveChannel())
		})
	}
}
