package entity

import (
	"time"

	"github.com/google/uuid"
)

// SyncState is the lifecycle state of one ingestion attempt.
type SyncState string

const (
	SyncStateQueued     SyncState = "queued"
	SyncStateProcessing SyncState = "processing"
	SyncStateCompleted  SyncState = "completed"
	SyncStateFailed     SyncState = "failed"
)

// FieldDiff is a single changed-field observation recorded for an updated
// SKU: the old value and the new value, both as their string form.
type FieldDiff struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// UpdatedProduct pairs a SKU with the fields that changed in this sync.
type UpdatedProduct struct {
	SKU   string      `json:"sku"`
	Diffs []FieldDiff `json:"diffs"`
}

// CategoryChangeDetail is the per-category breakdown of a DiffReport,
// persisted verbatim on the SyncRecord as changeDetails.
type CategoryChangeDetail struct {
	Category Category          `json:"category"`
	Added    []string          `json:"added"`
	Updated  []UpdatedProduct  `json:"updated"`
	Deleted  []string          `json:"deleted"`
}

// SyncRecord is the durable record of one ingestion attempt, created when
// a webhook is accepted and updated as the worker processes it.
type SyncRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SourceURL string    `json:"source_url" db:"source_url"`
	State     SyncState `json:"state" db:"state"`

	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	Added                  int `json:"added" db:"added"`
	Updated                int `json:"updated" db:"updated"`
	Deleted                int `json:"deleted" db:"deleted"`
	CompatibilitiesUpdated int `json:"compatibilities_updated" db:"compatibilities_updated"`

	ErrorMessage string `json:"error_message,omitempty" db:"error_message"`

	ChangeDetails []CategoryChangeDetail `json:"change_details,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
