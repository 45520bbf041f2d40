// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// serviceName tags every entry unless Config.Service overrides it.
const serviceName = "pantry"

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error, fatal, panic, disabled.
	Level string

	// Format is json (for log shippers) or console (for a terminal).
	Format string

	// Caller adds file:line to every entry.
	Caller bool

	// Timestamp enables the time field.
	Timestamp bool

	// Service and Version are attached to every entry so purchase logs from
	// several deployments can be told apart. Service defaults to "pantry";
	// an empty Version is omitted.
	Service string
	Version string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the configuration used before Init is called.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Service:   serviceName,
		Output:    os.Stderr,
	}
}

var global atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // packages log during init, before main calls Init
func init() {
	l := build(DefaultConfig())
	global.Store(&l)
}

// Init replaces the global logger. Calling it again reconfigures logging,
// e.g. after a config reload.
func Init(cfg Config) {
	l := build(cfg)
	global.Store(&l)
}

func build(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.Service == "" {
		cfg.Service = serviceName
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	var out io.Writer = cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	lc := zerolog.New(out).With().Str("service", cfg.Service)
	if cfg.Version != "" {
		lc = lc.Str("version", cfg.Version)
	}
	if cfg.Timestamp {
		lc = lc.Timestamp()
	}
	if cfg.Caller {
		lc = lc.Caller()
	}
	return lc.Logger()
}

// parseLevel accepts zerolog level names plus "warning". Anything else,
// including an empty string, means info.
func parseLevel(level string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || name == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func current() *zerolog.Logger {
	return global.Load()
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	return *current()
}

// SetLogger replaces the global logger. Tests use it to capture output.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	global.Store(&l)
}

// With creates a child logger context from the global logger.
//
//	rebuildLogger := logging.With().Str("component", "rebuild").Logger()
func With() zerolog.Context {
	return current().With()
}

func Debug() *zerolog.Event { return current().Debug() }

// Info starts a new message with info level.
//
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
func Info() *zerolog.Event { return current().Info() }

func Warn() *zerolog.Event { return current().Warn() }

func Error() *zerolog.Event { return current().Error() }

// Fatal exits the process with status 1 once the entry is written.
func Fatal() *zerolog.Event { return current().Fatal() }

// Err starts an error level message carrying err.
//
//	logging.Err(err).Str("user_id", userID).Msg("Failed to record purchase")
func Err(err error) *zerolog.Event { return current().Err(err) }

// SetLevel changes the global level without rebuilding the logger.
func SetLevel(level string) {
	zerolog.SetGlobalLevel(parseLevel(level))
}

// Enabled reports whether entries at level are written.
func Enabled(level zerolog.Level) bool {
	return zerolog.GlobalLevel() <= level
}

// NewTestLogger creates a JSON logger writing to w.
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
