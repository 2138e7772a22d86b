package database

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// ConnectionStatus describes the observed state of a database connection.
type ConnectionStatus string

const (
	ConnectionStatusActive    ConnectionStatus = "active"
	ConnectionStatusUnhealthy ConnectionStatus = "unhealthy"
)

// ConnectionHealth is a single point-in-time health observation.
type ConnectionHealth struct {
	Status       ConnectionStatus `json:"status"`
	LastChecked  time.Time        `json:"last_checked"`
	ResponseTime time.Duration    `json:"response_time"`
	Error        string           `json:"error,omitempty"`
}

// HealthStatus is the aggregate health snapshot returned by GetStatus.
type HealthStatus struct {
	Status      string            `json:"status"`
	LastChecked time.Time         `json:"last_checked"`
	Database    *ConnectionHealth `json:"database"`
}

// HealthChecker periodically pings the catalog database and keeps the
// latest result available for the /healthz endpoint without blocking
// request handling on a live ping.
type HealthChecker struct {
	db       *sqlx.DB
	interval time.Duration
	status   *HealthStatus
	stopChan chan struct{}
	running  bool
	mutex    sync.RWMutex
}

// NewHealthChecker creates a health checker and starts its monitoring loop.
func NewHealthChecker(db *sqlx.DB, interval time.Duration) *HealthChecker {
	if interval == 0 {
		interval = 30 * time.Second
	}

	hc := &HealthChecker{
		db:       db,
		interval: interval,
		status: &HealthStatus{
			Status:      "unknown",
			LastChecked: time.Now(),
		},
		stopChan: make(chan struct{}),
	}

	go hc.start()

	return hc
}

// GetStatus returns a copy of the current health status.
func (hc *HealthChecker) GetStatus() *HealthStatus {
	hc.mutex.RLock()
	defer hc.mutex.RUnlock()

	status := &HealthStatus{
		Status:      hc.status.Status,
		LastChecked: hc.status.LastChecked,
	}
	if hc.status.Database != nil {
		cp := *hc.status.Database
		status.Database = &cp
	}
	return status
}

// Stop halts the monitoring loop.
func (hc *HealthChecker) Stop() {
	hc.mutex.Lock()
	defer hc.mutex.Unlock()

	if hc.running {
		close(hc.stopChan)
		hc.running = false
	}
}

func (hc *HealthChecker) start() {
	hc.mutex.Lock()
	hc.running = true
	hc.mutex.Unlock()

	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	hc.performHealthCheck()

	for {
		select {
		case <-ticker.C:
			hc.performHealthCheck()
		case <-hc.stopChan:
			return
		}
	}
}

func (hc *HealthChecker) performHealthCheck() {
	health := hc.checkConnection()

	hc.mutex.Lock()
	hc.status.LastChecked = time.Now()
	hc.status.Database = health
	if health.Status == ConnectionStatusActive {
		hc.status.Status = "healthy"
	} else {
		hc.status.Status = "unhealthy"
	}
	hc.mutex.Unlock()
}

func (hc *HealthChecker) checkConnection() *ConnectionHealth {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health := &ConnectionHealth{LastChecked: start}

	err := hc.db.PingContext(ctx)
	health.ResponseTime = time.Since(start)

	if err != nil {
		health.Status = ConnectionStatusUnhealthy
		health.Error = err.Error()
	} else {
		health.Status = ConnectionStatusActive
	}

	return health
}
