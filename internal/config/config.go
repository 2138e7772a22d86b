// Package config loads process configuration from the environment. It
// follows the same getEnv-with-default idiom as the rest of this codebase
// rather than a struct-tag-driven env library, so defaults stay visible
// at the call site.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the compatibility engine.
type Config struct {
	Environment string
	Version     string
	Port        string

	Database struct {
		URL          string
		MaxOpenConns int
		MaxIdleConns int
		MaxLifetime  time.Duration
	}

	Webhook struct {
		Secret             string
		MaxDownloadBytes   int64
		DownloadTimeout    time.Duration
		WorkerStartupDelay time.Duration
		WorkerCadence      time.Duration
		BackfillBatchSize  int
		FeedPath           string
		WhitelistPath      string
		BlacklistPath      string
		WebhookQueuePath   string
		FTPPollInterval    time.Duration // 0 disables the alternate cron trigger
	}

	LogLevel  string
	LogFormat string
	LogFile   string

	// AllowedOrigins lists the origins the HTTP API's CORS middleware
	// accepts outside production (where CORS is handled upstream).
	AllowedOrigins []string
}

// AppConfig is the process-wide configuration singleton, populated by
// LoadConfig during startup.
var AppConfig Config

// LoadConfig initializes the application configuration from the
// environment, falling back to a .env file in development.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found, using environment variables")
	}

	AppConfig.Environment = getEnvWithDefault("APP_ENV", "development")
	AppConfig.Version = getEnvWithDefault("APP_VERSION", "0.1.0")
	AppConfig.Port = getEnvWithDefault("PORT", "8080")

	AppConfig.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	AppConfig.LogFormat = getEnvWithDefault("LOG_FORMAT", "json")
	AppConfig.LogFile = getEnvWithDefault("LOG_FILE", "")
	AppConfig.AllowedOrigins = splitCSV(getEnvWithDefault("ALLOWED_ORIGINS", "http://localhost:3000"))

	if err := loadDatabaseConfig(); err != nil {
		return err
	}

	AppConfig.Webhook.Secret = os.Getenv("WEBHOOK_SECRET")
	AppConfig.Webhook.MaxDownloadBytes = getEnvAsInt64("WEBHOOK_MAX_DOWNLOAD_BYTES", 100*1024*1024)
	AppConfig.Webhook.DownloadTimeout = getEnvAsDuration("WEBHOOK_DOWNLOAD_TIMEOUT", 300*time.Second)
	AppConfig.Webhook.WorkerStartupDelay = getEnvAsDuration("WORKER_STARTUP_DELAY", 30*time.Second)
	AppConfig.Webhook.WorkerCadence = getEnvAsDuration("WORKER_CADENCE", 120*time.Second)
	AppConfig.Webhook.BackfillBatchSize = getEnvAsInt("BACKFILL_BATCH_SIZE", 50)
	AppConfig.Webhook.FeedPath = getEnvWithDefault("FEED_PATH", "data/Product Data.xlsx")
	AppConfig.Webhook.WhitelistPath = getEnvWithDefault("WHITELIST_PATH", "data/compatibility_whitelist.xlsx")
	AppConfig.Webhook.BlacklistPath = getEnvWithDefault("BLACKLIST_PATH", "data/compatibility_blacklist.xlsx")
	AppConfig.Webhook.WebhookQueuePath = getEnvWithDefault("WEBHOOK_QUEUE_PATH", "data/webhook_queue.json")
	AppConfig.Webhook.FTPPollInterval = getEnvAsDuration("FTP_POLL_INTERVAL", 0)

	return nil
}

func loadDatabaseConfig() error {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		AppConfig.Database.URL = url
	} else {
		dbHost := getEnvWithDefault("DB_HOST", "localhost")
		dbPort := getEnvWithDefault("DB_PORT", "5432")
		dbUser := getEnvWithDefault("DB_USER", "postgres")
		dbPass := os.Getenv("DB_PASSWORD")
		dbName := getEnvWithDefault("DB_NAME", "compat_engine")
		sslMode := getEnvWithDefault("DB_SSL_MODE", "disable")

		AppConfig.Database.URL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			dbHost, dbPort, dbUser, dbPass, dbName, sslMode)
	}

	AppConfig.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", 25)
	AppConfig.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", 25)
	AppConfig.Database.MaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)

	return nil
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvWithDefault(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
