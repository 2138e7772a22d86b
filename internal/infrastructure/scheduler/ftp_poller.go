// Package scheduler implements the alternate ingestion trigger (A7): a
// polling fallback for vendors that never deliver a webhook, feeding
// the same queue the webhook handler writes to.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
	applog "github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/webhook"
)

// FTPPoller periodically enqueues a sync against a fixed feed URL, on
// the same webhook queue the vendor's push notification writes to — the
// two producers share one consumer (the worker).
type FTPPoller struct {
	feedURL     string
	queue       *webhook.Queue
	syncRecords repository.SyncRecordRepository
	cron        *cron.Cron
}

// NewFTPPoller builds a poller that has not yet been started.
func NewFTPPoller(feedURL string, queue *webhook.Queue, syncRecords repository.SyncRecordRepository) *FTPPoller {
	return &FTPPoller{
		feedURL:     feedURL,
		queue:       queue,
		syncRecords: syncRecords,
		cron:        cron.New(),
	}
}

// Start schedules the poller at the given interval and returns
// immediately; the interval must be >= one second. A zero interval
// means the alternate trigger is disabled (spec §9's resolution: the
// webhook is canonical, this is a backstop).
func (p *FTPPoller) Start(interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	spec := "@every " + interval.String()
	_, err := p.cron.AddFunc(spec, p.enqueue)
	if err != nil {
		return err
	}
	p.cron.Start()
	return nil
}

// Stop halts the scheduler without waiting for an in-flight tick.
func (p *FTPPoller) Stop() {
	p.cron.Stop()
}

func (p *FTPPoller) enqueue() {
	now := time.Now()
	record := &entity.SyncRecord{
		ID:        uuid.New(),
		SourceURL: p.feedURL,
		State:     entity.SyncStateQueued,
		CreatedAt: now,
	}

	if err := p.syncRecords.Create(context.Background(), record); err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "ftp_poller").
			Msg("could not persist sync record for scheduled poll")
		return
	}

	job := entity.WebhookJob{SyncID: record.ID, SourceURL: record.SourceURL, EnqueuedAt: now}
	if err := p.queue.Enqueue(job); err != nil {
		applog.Logger.Error().Err(err).Str("type", "sync").Str("component", "ftp_poller").
			Msg("could not enqueue scheduled poll job")
	}
}
