package webhook

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kirimku/smartseller-backend/internal/application/materializer"
	"github.com/kirimku/smartseller-backend/internal/application/sync"
	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	apperrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/feed"
	applog "github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
	"github.com/kirimku/smartseller-backend/pkg/metrics"
)

// WorkerConfig bounds the worker's cadence and resource usage (spec
// §4.8, §5).
type WorkerConfig struct {
	StartupDelay      time.Duration
	Cadence           time.Duration
	DownloadTimeout   time.Duration
	MaxDownloadBytes  int64
	BackfillBatchSize int
	FeedPath          string
}

// Worker drains the webhook queue on a bounded cadence, running the
// full C2->C5->C6 pipeline for each job, then back-filling any product
// still missing outgoing edges.
type Worker struct {
	cfg WorkerConfig

	queue       *Queue
	syncRecords repository.SyncRecordRepository
	catalog     repository.CatalogRepository
	feedHolder  *feed.Holder
	differ      *sync.Service
	materializr *materializer.Service

	httpClient *http.Client
}

func NewWorker(
	cfg WorkerConfig,
	queue *Queue,
	syncRecords repository.SyncRecordRepository,
	catalog repository.CatalogRepository,
	feedHolder *feed.Holder,
	differ *sync.Service,
	materializr *materializer.Service,
) *Worker {
	return &Worker{
		cfg:         cfg,
		queue:       queue,
		syncRecords: syncRecords,
		catalog:     catalog,
		feedHolder:  feedHolder,
		differ:      differ,
		materializr: materializr,
		httpClient:  &http.Client{},
	}
}

// Run blocks until ctx is cancelled, observing the shutdown signal only
// between iterations (spec §5): an in-flight download is bounded by its
// own timeout, not by ctx cancellation.
func (w *Worker) Run(ctx context.Context) {
	w.recoverInterrupted(ctx)

	timer := time.NewTimer(w.cfg.StartupDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			w.tick(ctx)
			timer.Reset(w.cfg.Cadence)
		}
	}
}

// recoverInterrupted marks every SyncRecord left "processing" from a
// prior process as failed (spec §4.8 step 1).
func (w *Worker) recoverInterrupted(ctx context.Context) {
	processing, err := w.syncRecords.ListProcessing(ctx)
	if err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "worker").
			Msg("could not scan for interrupted sync records")
		return
	}

	for i := range processing {
		record := processing[i]
		now := time.Now()
		record.State = entity.SyncStateFailed
		record.CompletedAt = &now
		record.ErrorMessage = apperrors.NewInterruptedRun(record.ID.String(), nil).Error()
		if err := w.syncRecords.Update(ctx, &record); err != nil {
			applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "worker").
				Str("sync_id", record.ID.String()).Msg("could not mark interrupted sync record failed")
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	job, err := w.queue.Peek()
	if err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "worker").
			Msg("could not read webhook queue")
	} else if job != nil {
		metrics.GetGlobalMetricsCollector().SetWebhookQueueDepth(true)
		w.processJob(ctx, *job)
	} else {
		metrics.GetGlobalMetricsCollector().SetWebhookQueueDepth(false)
	}

	w.backfill(ctx)
}

func (w *Worker) processJob(ctx context.Context, job entity.WebhookJob) {
	record, err := w.syncRecords.Get(ctx, job.SyncID.String())
	if err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "worker").
			Msg("could not load sync record for pending job")
		return
	}
	if record == nil {
		// No record to update; drop the orphaned job rather than retry forever.
		w.deleteJob()
		return
	}

	now := time.Now()
	record.State = entity.SyncStateProcessing
	record.StartedAt = &now
	if err := w.syncRecords.Update(ctx, record); err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "worker").
			Str("sync_id", record.ID.String()).Msg("could not mark sync record processing")
		return
	}

	pipelineErr := w.runPipeline(ctx, job, record)
	w.finish(ctx, record, pipelineErr, now)
}

func (w *Worker) runPipeline(ctx context.Context, job entity.WebhookJob, record *entity.SyncRecord) error {
	if err := w.downloadFeed(job.SourceURL, w.cfg.FeedPath); err != nil {
		return err
	}

	snap, err := w.feedHolder.Load(w.cfg.FeedPath)
	if err != nil {
		return err
	}

	report, err := w.differ.Run(ctx, snap)
	if err != nil {
		return err
	}

	if err := w.materializr.Materialize(ctx, report.ChangedSKUs); err != nil {
		return err
	}

	record.ChangeDetails = report.Categories
	for _, detail := range report.Categories {
		record.Added += len(detail.Added)
		record.Updated += len(detail.Updated)
		record.Deleted += len(detail.Deleted)
	}
	record.CompatibilitiesUpdated = len(report.ChangedSKUs)

	metrics.GetGlobalMetricsCollector().RecordProductsChanged(record.Added, record.Updated, record.Deleted)

	return nil
}

// finish persists the SyncRecord's terminal state, then deletes the job
// file — in that order, so a crash between the two leaves the job to be
// retried safely (spec §4.8 step 2).
func (w *Worker) finish(ctx context.Context, record *entity.SyncRecord, pipelineErr error, startedAt time.Time) {
	now := time.Now()
	record.CompletedAt = &now
	if pipelineErr != nil {
		record.State = entity.SyncStateFailed
		record.ErrorMessage = pipelineErr.Error()
	} else {
		record.State = entity.SyncStateCompleted
	}

	metrics.GetGlobalMetricsCollector().RecordSyncRun(string(record.State), now.Sub(startedAt))

	if err := w.syncRecords.Update(ctx, record); err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "worker").
			Str("sync_id", record.ID.String()).Msg("could not persist terminal sync record state")
		return
	}

	w.deleteJob()
}

func (w *Worker) deleteJob() {
	if err := w.queue.Delete(); err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "worker").
			Msg("could not delete consumed webhook job")
	}
}

// downloadFeed streams url into path, bounded by cfg.DownloadTimeout and
// cfg.MaxDownloadBytes, with a detached context so a worker shutdown
// signal never cancels an in-flight download (spec §5).
func (w *Worker) downloadFeed(url, path string) error {
	downloadCtx, cancel := context.WithTimeout(context.Background(), w.cfg.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.NewInvalidFeed("could not build feed download request", url, err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return apperrors.NewTransientStorage("could not download vendor feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewInvalidFeed("vendor feed download returned non-200 status", resp.Status, nil)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewTransientStorage("could not create feed directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".feed-download-*.tmp")
	if err != nil {
		return apperrors.NewTransientStorage("could not create temp feed file", err)
	}
	tmpPath := tmp.Name()

	limited := io.LimitReader(resp.Body, w.cfg.MaxDownloadBytes+1)
	written, err := io.Copy(tmp, limited)
	tmp.Close()
	if err != nil {
		os.Remove(tmpPath)
		return apperrors.NewTransientStorage("could not write downloaded feed", err)
	}
	if written > w.cfg.MaxDownloadBytes {
		os.Remove(tmpPath)
		return apperrors.NewInvalidFeed("vendor feed exceeded the configured size bound", url, nil)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewTransientStorage("could not publish downloaded feed", err)
	}

	metrics.GetGlobalMetricsCollector().RecordFeedDownloadBytes(written)
	return nil
}

// backfill runs C6 for products still missing outgoing edges, in small
// batches to amortize the work (spec §4.8 step 3).
func (w *Worker) backfill(ctx context.Context) {
	skus, err := w.catalog.SKUsWithoutOutgoingEdges(ctx, w.cfg.BackfillBatchSize)
	if err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "worker").
			Msg("could not query back-fill candidates")
		return
	}
	if len(skus) == 0 {
		return
	}

	if err := w.materializr.Materialize(ctx, skus); err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "worker").
			Int("count", len(skus)).Msg("back-fill materialization failed")
		return
	}

	applog.Logger.Info().Str("type", "sync").Str("component", "worker").
		Int("count", len(skus)).Msg("back-filled missing outgoing edges")
}
