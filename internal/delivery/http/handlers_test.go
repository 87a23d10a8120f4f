package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warrantly/expiry-notifier/internal/config"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	"github.com/warrantly/expiry-notifier/internal/notifiers"
	"github.com/warrantly/expiry-notifier/internal/service"
	"github.com/warrantly/expiry-notifier/internal/storage/memory"
)

func newTestRouter(t *testing.T, scan *memory.ScanCache) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zerolog.Nop()
	cfg := &config.Config{Notifiers: config.NotifiersConfig{Mode: "log_only"}}
	dispatcher := notifiers.NewDispatcher(cfg, &log)
	svc := service.NewExpiryService(scan, nil, dispatcher, &log)

	router := gin.New()
	NewHandlers(svc, &log).RegisterRoutes(router)
	return router
}

func TestGetApproachingDeadlines(t *testing.T) {
	scan := memory.NewScanCache()
	owner := uuid.New()
	pending := []model.PendingNotification{{
		RecordID:      uuid.New(),
		RecipientID:   uuid.New(),
		Label:         "Laptop",
		Deadline:      time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC),
		DaysRemaining: 7,
	}}
	require.NoError(t, scan.SetSnapshot(context.Background(), owner, pending, time.Hour))

	router := newTestRouter(t, scan)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/owners/"+owner.String()+"/expiring", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got []PendingNotificationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Laptop", got[0].Label)
	assert.Equal(t, 7, got[0].DaysRemaining)
}

func TestGetApproachingDeadlinesColdStart(t *testing.T) {
	router := newTestRouter(t, memory.NewScanCache())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/owners/"+uuid.NewString()+"/expiring", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetApproachingDeadlinesBadID(t *testing.T) {
	router := newTestRouter(t, memory.NewScanCache())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/owners/not-a-uuid/expiring", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetApproachingDeadlineCount(t *testing.T) {
	scan := memory.NewScanCache()
	owner := uuid.New()
	pending := []model.PendingNotification{
		{RecordID: uuid.New(), Label: "Laptop"},
		{RecordID: uuid.New(), Label: "TV"},
	}
	require.NoError(t, scan.SetSnapshot(context.Background(), owner, pending, time.Hour))

	router := newTestRouter(t, scan)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/owners/"+owner.String()+"/expiring/count", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got CountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Count)
}

func TestNotifyReceiptShared(t *testing.T) {
	router := newTestRouter(t, memory.NewScanCache())

	body := `{
		"record_id": "` + uuid.NewString() + `",
		"label": "Coffee machine",
		"note": "shared by Dana",
		"recipient": {
			"recipient_id": "` + uuid.NewString() + `",
			"channel": "email",
			"email": "friend@example.com"
		}
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/share", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestNotifyReceiptSharedNoUsableChannel(t *testing.T) {
	router := newTestRouter(t, memory.NewScanCache())

	// SMS preference without a phone resolves to no deliverable channel.
	body := `{
		"record_id": "` + uuid.NewString() + `",
		"label": "Coffee machine",
		"recipient": {
			"recipient_id": "` + uuid.NewString() + `",
			"channel": "sms",
			"email": "friend@example.com"
		}
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/share", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
