package monitor

import (
	"context"
	"log/slog"
	"slices"

	"github.com/d2verb/glue/internal/brightness"
)

// backlight reads the current brightness of every device.
type backlight interface {
	Read() (brightness.Settings, error)
}

// Brightness publishes the backlight levels.
type Brightness struct {
	backlight backlight
	publisher Publisher
	logger    *slog.Logger

	last  brightness.Settings
	known bool
}

// NewBrightness creates a brightness monitor over b.
func NewBrightness(b *brightness.Backlight, publisher Publisher, logger *slog.Logger) *Brightness {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Brightness{backlight: b, publisher: publisher, logger: logger}
}

func (m *Brightness) Name() string { return VarBrightness }

func (m *Brightness) Update(ctx context.Context) error {
	s, err := m.backlight.Read()
	if err != nil {
		return err
	}
	if m.known && slices.Equal(s.Devices, m.last.Devices) {
		return nil
	}
	m.logger.Debug("brightness changed", "devices", len(s.Devices))
	m.last, m.known = s, true
	return m.publisher.Publish(ctx, VarBrightness, s)
}
