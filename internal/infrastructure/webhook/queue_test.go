package webhook

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

func TestQueue_EnqueuePeekDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webhook.json")
	q := NewQueue(path)

	empty, err := q.Peek()
	require.NoError(t, err)
	assert.Nil(t, empty)

	job := entity.WebhookJob{SyncID: uuid.New(), SourceURL: "https://vendor.example/feed.xlsx", EnqueuedAt: time.Now()}
	require.NoError(t, q.Enqueue(job))

	peeked, err := q.Peek()
	require.NoError(t, err)
	require.NotNil(t, peeked)
	assert.Equal(t, job.SyncID, peeked.SyncID)
	assert.Equal(t, job.SourceURL, peeked.SourceURL)

	require.NoError(t, q.Delete())
	afterDelete, err := q.Peek()
	require.NoError(t, err)
	assert.Nil(t, afterDelete)

	// Deleting an already-absent queue file is not an error.
	require.NoError(t, q.Delete())
}

func TestQueue_EnqueueCoalescesPendingJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webhook.json")
	q := NewQueue(path)

	first := entity.WebhookJob{SyncID: uuid.New(), SourceURL: "https://vendor.example/first.xlsx", EnqueuedAt: time.Now()}
	second := entity.WebhookJob{SyncID: uuid.New(), SourceURL: "https://vendor.example/second.xlsx", EnqueuedAt: time.Now()}

	require.NoError(t, q.Enqueue(first))
	require.NoError(t, q.Enqueue(second))

	peeked, err := q.Peek()
	require.NoError(t, err)
	require.NotNil(t, peeked)
	assert.Equal(t, second.SyncID, peeked.SyncID)
}
