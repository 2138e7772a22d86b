package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var Logger zerolog.Logger

// InitLogger initializes the global logger with proper configuration
func InitLogger() {
	// Configure log level from environment
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	level := zerolog.InfoLevel // default level
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure log format and output
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))

	logFile := os.Getenv("LOG_FILE")
	var output io.Writer

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
			Logger.Fatal().Err(err).Str("path", logFile).Msg("failed to open log file")
		}

		if logFormat == "pretty" {
			output = zerolog.MultiLevelWriter(
				zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339, NoColor: false},
				file,
			)
		} else {
			output = zerolog.MultiLevelWriter(file)
		}
	} else {
		if logFormat == "pretty" {
			output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339, NoColor: false}
		} else {
			output = os.Stdout
		}
	}

	hostname, _ := os.Hostname()
	Logger = zerolog.New(output).With().
		Timestamp().
		Str("host", hostname).
		Str("environment", os.Getenv("APP_ENV")).
		Str("service", "compat-engine").
		Str("version", os.Getenv("APP_VERSION")).
		Caller().
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339Nano

	Logger.Info().
		Str("level", level.String()).
		Str("format", logFormat).
		Msg("logger initialized")
}

// RequestLogger adds common request fields to the logger.
func RequestLogger(r *http.Request) *zerolog.Event {
	return Logger.Info().
		Str("type", "request").
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_ip", r.RemoteAddr).
		Str("user_agent", r.UserAgent()).
		Str("request_id", r.Header.Get("X-Request-ID"))
}

// ErrorLogger returns an error-level event for the calling site.
func ErrorLogger() *zerolog.Event {
	return Logger.Error().Str("type", "error")
}

// DebugLogger returns a debug level logger
func DebugLogger() *zerolog.Event {
	return Logger.Debug().Str("type", "debug")
}

// WarnLogger returns a warning level logger
func WarnLogger() *zerolog.Event {
	return Logger.Warn().Str("type", "warn")
}

// DBLogger tags a log event as originating from the catalog store.
func DBLogger() *zerolog.Event {
	return Logger.Info().Str("type", "database").Str("component", "catalog_store")
}

// SyncLogger tags a log event as originating from the ingestion pipeline
// (feed load, differential sync, graph materialization).
func SyncLogger() *zerolog.Event {
	return Logger.Info().Str("type", "sync").Str("component", "ingestion")
}

// WorkerLogger tags a log event as originating from the webhook worker.
func WorkerLogger() *zerolog.Event {
	return Logger.Info().Str("type", "worker").Str("component", "webhook_worker")
}

// RuleLogger tags a log event as originating from the compatibility rule engine.
func RuleLogger() *zerolog.Event {
	return Logger.Debug().Str("type", "rule_engine")
}
