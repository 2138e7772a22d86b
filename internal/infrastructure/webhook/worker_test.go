package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirimku/smartseller-backend/internal/application/materializer"
	"github.com/kirimku/smartseller-backend/internal/application/sync"
	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/feed"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/repository/memory"
)

func newTestWorker(t *testing.T, srv *httptest.Server) (*Worker, *Queue, *memory.SyncRecordRepository, *memory.CatalogRepository) {
	t.Helper()
	queue := NewQueue(filepath.Join(t.TempDir(), "webhook.json"))
	records := memory.NewSyncRecordRepository()
	catalog := memory.NewCatalogRepository()
	differ := sync.NewService(catalog)
	materializr := materializer.NewService(catalog, nil)
	holder := feed.NewHolder()

	cfg := WorkerConfig{
		StartupDelay:      time.Millisecond,
		Cadence:           time.Hour,
		DownloadTimeout:   5 * time.Second,
		MaxDownloadBytes:  1024,
		BackfillBatchSize: 50,
		FeedPath:          filepath.Join(t.TempDir(), "feed.xlsx"),
	}
	w := NewWorker(cfg, queue, records, catalog, holder, differ, materializr)
	if srv != nil {
		w.httpClient = srv.Client()
	}
	return w, queue, records, catalog
}

func TestWorker_RecoverInterrupted_MarksProcessingRecordsFailed(t *testing.T) {
	w, _, records, _ := newTestWorker(t, nil)
	ctx := context.Background()

	stuck := &entity.SyncRecord{ID: uuid.New(), SourceURL: "https://vendor.example/feed.xlsx", State: entity.SyncStateProcessing}
	require.NoError(t, records.Create(ctx, stuck))

	w.recoverInterrupted(ctx)

	updated, err := records.Get(ctx, stuck.ID.String())
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, entity.SyncStateFailed, updated.State)
	assert.Contains(t, updated.ErrorMessage, "interrupted")
	require.NotNil(t, updated.CompletedAt)
}

func TestWorker_ProcessJob_FailsSyncRecordOnBadFeedDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	w, queue, records, _ := newTestWorker(t, srv)
	ctx := context.Background()

	record := &entity.SyncRecord{ID: uuid.New(), SourceURL: srv.URL, State: entity.SyncStateQueued, CreatedAt: time.Now()}
	require.NoError(t, records.Create(ctx, record))
	require.NoError(t, queue.Enqueue(entity.WebhookJob{SyncID: record.ID, SourceURL: record.SourceURL, EnqueuedAt: time.Now()}))

	w.tick(ctx)

	updated, err := records.Get(ctx, record.ID.String())
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, entity.SyncStateFailed, updated.State)
	assert.True(t, strings.Contains(updated.ErrorMessage, "non-200") || updated.ErrorMessage != "")

	job, err := queue.Peek()
	require.NoError(t, err)
	assert.Nil(t, job, "job file must be deleted once its terminal state is persisted")
}

func TestWorker_ProcessJob_RejectsOversizedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	w, queue, records, _ := newTestWorker(t, srv)
	ctx := context.Background()

	record := &entity.SyncRecord{ID: uuid.New(), SourceURL: srv.URL, State: entity.SyncStateQueued, CreatedAt: time.Now()}
	require.NoError(t, records.Create(ctx, record))
	require.NoError(t, queue.Enqueue(entity.WebhookJob{SyncID: record.ID, SourceURL: record.SourceURL, EnqueuedAt: time.Now()}))

	w.tick(ctx)

	updated, err := records.Get(ctx, record.ID.String())
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, entity.SyncStateFailed, updated.State)
}

func TestWorker_Backfill_NoopWhenNothingMissing(t *testing.T) {
	w, _, _, _ := newTestWorker(t, nil)
	w.backfill(context.Background())
}
