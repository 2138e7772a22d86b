package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/repository/memory"
)

func newTestHandler(t *testing.T, secret string) (*Handler, *Queue, *memory.SyncRecordRepository) {
	t.Helper()
	queue := NewQueue(filepath.Join(t.TempDir(), "webhook.json"))
	records := memory.NewSyncRecordRepository()
	return NewHandler(secret, queue, records), queue, records
}

func doWebhookRequest(t *testing.T, h *Handler, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	h.HandleWebhook(c)
	return rec
}

func TestHandler_HandleWebhook_RejectsWrongKey(t *testing.T) {
	h, _, _ := newTestHandler(t, "s3cret")
	rec := doWebhookRequest(t, h, "/webhook?key=wrong", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_HandleWebhook_IgnoresNonCompletedStatus(t *testing.T) {
	h, queue, _ := newTestHandler(t, "s3cret")
	rec := doWebhookRequest(t, h, "/webhook?key=s3cret", map[string]string{
		"publication_status": "processing",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")

	job, err := queue.Peek()
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestHandler_HandleWebhook_RejectsEmptyFeedURL(t *testing.T) {
	h, _, _ := newTestHandler(t, "s3cret")
	rec := doWebhookRequest(t, h, "/webhook?key=s3cret", map[string]string{
		"publication_status": statusCompleted,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleWebhook_QueuesSyncOnCompletion(t *testing.T) {
	h, queue, records := newTestHandler(t, "s3cret")
	rec := doWebhookRequest(t, h, "/webhook?key=s3cret", map[string]string{
		"publication_status":       statusCompleted,
		"product_feed_export_url": "https://vendor.example/feed.xlsx",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		SyncID string `json:"sync_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp.Status)
	assert.NotEmpty(t, resp.SyncID)

	job, err := queue.Peek()
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "https://vendor.example/feed.xlsx", job.SourceURL)

	record, err := records.Get(context.Background(), resp.SyncID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, entity.SyncStateQueued, record.State)
}
