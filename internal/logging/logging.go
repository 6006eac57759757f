// Package logging sets up the daemon's structured logger and its rotating
// log file.
package logging

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds log file configuration.
type Config struct {
	Path       string // Log file path
	MaxSizeMB  int    // Max size in MB before rotation
	MaxBackups int    // Number of old files to keep
	MaxAgeDays int    // Max age in days
	Compress   bool   // Compress old files
}

// DefaultConfig returns the rotation settings for the daemon log. The
// daemon logs little, so files stay small.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// NewRotatingWriter creates a log writer with rotation support.
func NewRotatingWriter(cfg Config) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// NewLogger creates a text logger at level writing to every w.
func NewLogger(level slog.Leveler, w ...io.Writer) *slog.Logger {
	var out io.Writer = io.Discard
	switch len(w) {
	case 0:
	case 1:
		out = w[0]
	default:
		out = io.MultiWriter(w...)
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// WithDaemonID tags every record with a fresh id for this daemon run, so
// runs can be told apart in a rotated log.
func WithDaemonID(logger *slog.Logger) (*slog.Logger, string) {
	id := uuid.NewString()
	return logger.With("daemon_id", id), id
}

// Component returns a logger for one part of the daemon.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("component", name)
}
