package entity

import (
	"time"

	"github.com/google/uuid"
)

// WebhookJob is the on-disk marker of a pending ingestion. At most one
// exists at a time: its presence on disk means a job is queued or being
// processed (see internal/infrastructure/webhook for the queue
// implementation's atomic write/rename/delete discipline).
type WebhookJob struct {
	SyncID      uuid.UUID `json:"sync_id"`
	SourceURL   string    `json:"source_url"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}
