// Package logging configures zerolog for the scraper.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var output io.Writer = cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// ForRun returns a component logger tagged with one tenant scrape.
func ForRun(component, tenant, runID string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Str("tenant", tenant).
		Str("run_id", runID).
		Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Request URLs (login, query pages)
//   - Page progress ("checking page i of n")
//   - Each extracted record
//
// Info: Normal operation events
//   - Scrape start with tenant and period
//   - Each saved record
//   - Run summary (pages, saved, dropped)
//
// Warn: Warning conditions that don't prevent operation
//   - Missing or unreadable dataset total
//   - Records dropped for a missing reference or address
//   - Non-2xx responses before they are returned as errors
//
// Error: Error conditions requiring attention
//   - Tenant scrape aborted (login, transport, malformed date)
//   - Sink failures
//   - Configuration errors
//
// Context Fields:
//   - component: emitting package
//   - tenant: tenant key
//   - run_id: one scrape invocation
//   - period: period filter
//   - endpoint: Horizon endpoint (logonGuest.aw, urlRequest.aw)
//   - status: HTTP status code
//   - error_class: Error classification (client, server, network)
//   - council_reference, address: record identity
