package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirimku/smartseller-backend/internal/application/materializer"
	"github.com/kirimku/smartseller-backend/internal/application/query"
	"github.com/kirimku/smartseller-backend/internal/application/sync"
	"github.com/kirimku/smartseller-backend/internal/config"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/database"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/feed"
	applog "github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/override"
	infraRepo "github.com/kirimku/smartseller-backend/internal/infrastructure/repository"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/scheduler"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/webhook"
	httpapi "github.com/kirimku/smartseller-backend/internal/interfaces/http"
	"github.com/kirimku/smartseller-backend/pkg/cache"
)

func main() {
	applog.InitLogger()
	applog.Logger.Info().Msg("compat-engine starting up")

	if err := config.LoadConfig(); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.Connect(
		config.AppConfig.Database.URL,
		config.AppConfig.Database.MaxOpenConns,
		config.AppConfig.Database.MaxIdleConns,
		config.AppConfig.Database.MaxLifetime,
	)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			applog.Logger.Error().Err(err).Msg("failed to close database connection")
		}
	}()

	healthChecker := database.NewHealthChecker(db, 30*time.Second)
	defer healthChecker.Stop()

	catalogRepo := infraRepo.NewPostgreSQLCatalogRepository(db)
	syncRecordRepo := infraRepo.NewPostgreSQLSyncRecordRepository(db)

	resultCache := cache.NewInMemoryCache(5*time.Minute, 10*time.Minute)
	overrideStore := override.NewStore(config.AppConfig.Webhook.WhitelistPath, config.AppConfig.Webhook.BlacklistPath)

	differ := sync.NewService(catalogRepo)
	materializr := materializer.NewService(catalogRepo, resultCache)
	lookup := query.NewService(catalogRepo, overrideStore, resultCache)

	feedHolder := feed.NewHolder()
	webhookQueue := webhook.NewQueue(config.AppConfig.Webhook.WebhookQueuePath)
	webhookHandler := webhook.NewHandler(config.AppConfig.Webhook.Secret, webhookQueue, syncRecordRepo)

	workerCfg := webhook.WorkerConfig{
		StartupDelay:      config.AppConfig.Webhook.WorkerStartupDelay,
		Cadence:           config.AppConfig.Webhook.WorkerCadence,
		DownloadTimeout:   config.AppConfig.Webhook.DownloadTimeout,
		MaxDownloadBytes:  config.AppConfig.Webhook.MaxDownloadBytes,
		BackfillBatchSize: config.AppConfig.Webhook.BackfillBatchSize,
		FeedPath:          config.AppConfig.Webhook.FeedPath,
	}
	worker := webhook.NewWorker(workerCfg, webhookQueue, syncRecordRepo, catalogRepo, feedHolder, differ, materializr)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go worker.Run(workerCtx)

	poller := scheduler.NewFTPPoller(config.AppConfig.Webhook.FeedPath, webhookQueue, syncRecordRepo)
	if err := poller.Start(config.AppConfig.Webhook.FTPPollInterval); err != nil {
		applog.Logger.Error().Err(err).Msg("failed to start scheduled alternate trigger")
	}
	defer poller.Stop()

	r := httpapi.NewRouter(db, healthChecker, webhookHandler, syncRecordRepo, lookup)

	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r.Engine(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		applog.Logger.Info().Str("port", port).Msg("compat-engine server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	applog.Logger.Info().Msg("compat-engine server shutting down")
	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		applog.Logger.Error().Err(err).Msg("server forced to shutdown")
		log.Fatalf("server forced to shutdown: %v", err)
	}

	applog.Logger.Info().Msg("compat-engine server shutdown complete")
}
