package webhook

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
	applog "github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
	"github.com/kirimku/smartseller-backend/pkg/metrics"
)

// payload is the recognized subset of the vendor webhook body (spec §6).
type payload struct {
	PublicationStatus    string `json:"publication_status"`
	ProductFeedExportURL string `json:"product_feed_export_url"`
	ChannelID             string `json:"channel_id"`
	ChannelName           string `json:"channel_name"`
	UserID                string `json:"user_id"`
	DigitalAssetExportURL string `json:"digital_asset_export_url"`
}

const statusCompleted = "completed"

// Handler serves POST /webhook: validates the shared secret, enqueues a
// SyncRecord + WebhookJob, and returns immediately (spec §4.8).
type Handler struct {
	secret      string
	queue       *Queue
	syncRecords repository.SyncRecordRepository
}

func NewHandler(secret string, queue *Queue, syncRecords repository.SyncRecordRepository) *Handler {
	return &Handler{secret: secret, queue: queue, syncRecords: syncRecords}
}

// HandleWebhook implements gin.HandlerFunc for POST /webhook?key=<secret>.
func (h *Handler) HandleWebhook(c *gin.Context) {
	if !h.validKey(c.Query("key")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid key"})
		return
	}

	var body payload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	if body.PublicationStatus != statusCompleted {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "publication_status": body.PublicationStatus})
		return
	}

	if body.ProductFeedExportURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_feed_export_url is required"})
		return
	}

	now := time.Now()
	record := &entity.SyncRecord{
		ID:        uuid.New(),
		SourceURL: body.ProductFeedExportURL,
		State:     entity.SyncStateQueued,
		CreatedAt: now,
	}

	if err := h.syncRecords.Create(c.Request.Context(), record); err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "webhook").
			Msg("could not persist sync record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not queue sync"})
		return
	}

	job := entity.WebhookJob{SyncID: record.ID, SourceURL: record.SourceURL, EnqueuedAt: now}
	if err := h.queue.Enqueue(job); err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "webhook").
			Msg("could not enqueue webhook job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not queue sync"})
		return
	}

	metrics.GetGlobalMetricsCollector().RecordWebhookEnqueued()
	c.JSON(http.StatusAccepted, gin.H{"sync_id": record.ID.String(), "status": "queued"})
}

// validKey performs a constant-time comparison against the configured
// secret, mirroring the teacher's HMAC-compare discipline applied to a
// direct shared-secret check instead of a signed payload.
func (h *Handler) validKey(key string) bool {
	if h.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.secret)) == 1
}
