// Package webhook implements the Webhook Queue & Worker (C8): the HTTP
// endpoint that enqueues an ingestion job, the single-file on-disk
// queue it writes to, and the background worker that drains it.
package webhook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	apperrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
)

// Queue is the single-file on-disk webhook job queue (spec §4.8, §5).
// At most one job is ever pending: Enqueue overwrites any job already
// there, and readers/writers serialize through the filesystem's
// atomic-rename primitive rather than an in-process lock alone.
type Queue struct {
	path string
	mu   sync.Mutex
}

func NewQueue(path string) *Queue {
	return &Queue{path: path}
}

// Enqueue writes job to the queue file via write-temp-then-rename, so a
// concurrent Peek never observes a partially written file. A pending job
// is silently replaced (explicit coalescing: latest feed wins).
func (q *Queue) Enqueue(job entity.WebhookJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	encoded, err := json.Marshal(job)
	if err != nil {
		return apperrors.NewInvalidInput("could not encode webhook job", err)
	}

	dir := filepath.Dir(q.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewTransientStorage("could not create webhook queue directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".webhook-job-*.tmp")
	if err != nil {
		return apperrors.NewTransientStorage("could not create temp webhook job file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.NewTransientStorage("could not write webhook job file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewTransientStorage("could not close webhook job file", err)
	}

	if err := os.Rename(tmpPath, q.path); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewTransientStorage("could not publish webhook job file", err)
	}

	return nil
}

// Peek returns the pending job, or nil if none is queued.
func (q *Queue) Peek() (*entity.WebhookJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	raw, err := os.ReadFile(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewTransientStorage("could not read webhook job file", err)
	}

	var job entity.WebhookJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, apperrors.NewInvalidInput("webhook job file is corrupt", err)
	}
	return &job, nil
}

// Delete removes the queue file. A missing file is not an error: the
// job may have already been consumed.
func (q *Queue) Delete() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := os.Remove(q.path); err != nil && !os.IsNotExist(err) {
		return apperrors.NewTransientStorage("could not delete webhook job file", err)
	}
	return nil
}
