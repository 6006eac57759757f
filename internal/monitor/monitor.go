// Package monitor polls system sensors and publishes their widget values.
package monitor

import (
	"context"
	"log/slog"
	"time"
)

// Variable names the monitors publish.
const (
	VarBattery    = "battery"
	VarVolume     = "volume"
	VarMic        = "mic"
	VarBrightness = "brightness"
)

// DefaultInterval is the polling period when none is configured.
const DefaultInterval = 2 * time.Second

// Monitor is one polled sensor.
type Monitor interface {
	// Name is the eww variable the monitor publishes.
	Name() string
	// Update reads the sensor and publishes it when it changed.
	Update(ctx context.Context) error
}

// Publisher receives widget values.
type Publisher interface {
	Publish(ctx context.Context, name string, value any) error
}

// Notifier shows desktop notifications.
type Notifier interface {
	Show(ctx context.Context, summary, body string) error
}

// Run updates every monitor once, then again on each tick, until ctx is
// cancelled. Update errors are logged and never stop the loop.
func Run(ctx context.Context, interval time.Duration, logger *slog.Logger, monitors ...Monitor) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		for _, m := range monitors {
			if err := m.Update(ctx); err != nil {
				logger.Error("monitor update failed", "monitor", m.Name(), "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
