// Package http wires the compatibility engine's HTTP surface: the
// vendor webhook endpoint, the sync-status and compatibility-lookup
// read endpoints, and the operational /healthz and /metrics endpoints.
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirimku/smartseller-backend/internal/application/query"
	"github.com/kirimku/smartseller-backend/internal/config"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/database"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/webhook"
	"github.com/kirimku/smartseller-backend/pkg/metrics"
	"github.com/kirimku/smartseller-backend/pkg/middleware"
)

// Router assembles the gin engine from the application's services.
type Router struct {
	engine *gin.Engine

	db            *sqlx.DB
	healthChecker *database.HealthChecker
	webhookHandler *webhook.Handler
	syncRecords   repository.SyncRecordRepository
	lookup        *query.Service
}

// NewRouter builds the engine and registers every route. db and
// healthChecker may be nil in tests that exercise only the lookup
// endpoints.
func NewRouter(
	db *sqlx.DB,
	healthChecker *database.HealthChecker,
	webhookHandler *webhook.Handler,
	syncRecords repository.SyncRecordRepository,
	lookup *query.Service,
) *Router {
	engine := gin.Default()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORSMiddleware())
	engine.Use(middleware.SecurityHeadersMiddleware())

	collector := metrics.GetGlobalMetricsCollector()
	engine.Use(metrics.PrometheusMiddleware(collector))

	r := &Router{
		engine:         engine,
		db:             db,
		healthChecker:  healthChecker,
		webhookHandler: webhookHandler,
		syncRecords:    syncRecords,
		lookup:         lookup,
	}
	r.setup()
	return r
}

// Engine returns the underlying gin.Engine, for http.ListenAndServe or
// a test server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setup() {
	r.engine.GET("/healthz", r.handleHealthz)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.engine.POST("/webhook", r.webhookHandler.HandleWebhook)
	r.engine.GET("/status", r.handleStatus)
	r.engine.GET("/compatible/:sku", r.handleLookup)
}

// handleHealthz reports process liveness plus, when a health checker
// is wired, the most recent database ping result (spec's ambient
// operational surface, not a named module).
func (r *Router) handleHealthz(c *gin.Context) {
	resp := gin.H{
		"status":    "ok",
		"version":   config.AppConfig.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if r.healthChecker != nil {
		status := r.healthChecker.GetStatus()
		resp["database"] = status
		if status.Status != "healthy" {
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// handleStatus serves GET /status?sync_id=<id> for a single record, or
// GET /status?limit=N for the most recent N sync records.
func (r *Router) handleStatus(c *gin.Context) {
	if id := c.Query("sync_id"); id != "" {
		record, err := r.syncRecords.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load sync record"})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "sync record not found"})
			return
		}
		c.JSON(http.StatusOK, record)
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := r.syncRecords.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sync records"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// handleLookup serves GET /compatible/:sku (spec §4.7).
func (r *Router) handleLookup(c *gin.Context) {
	sku := c.Param("sku")
	result, err := r.lookup.Lookup(c.Request.Context(), sku)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve compatibility"})
		return
	}
	if result.Product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sku not found", "sku": sku})
		return
	}
	c.JSON(http.StatusOK, result)
}
