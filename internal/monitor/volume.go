package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/d2verb/glue/internal/audio"
	"github.com/d2verb/glue/internal/config"
)

// VolumeState is the published volume or microphone value.
type VolumeState struct {
	Volume int    `json:"volume"`
	Muted  bool   `json:"muted"`
	Icon   string `json:"icon"`
}

// NewVolumeState renders a mixer level with the configured icons.
func NewVolumeState(cfg config.Volume, l audio.Level) VolumeState {
	icon := cfg.Muted
	if !l.Muted {
		icon = scaleIcon(cfg.Icons, l.Volume)
	}
	return VolumeState{Volume: l.Volume, Muted: l.Muted, Icon: icon}
}

// mixer reads device levels over one server connection.
type mixer interface {
	Level(d audio.Device) (audio.Level, error)
	Close()
}

// Volume publishes the level of the default PulseAudio sink or source. The
// connection is opened on first use and reopened after a failed read.
type Volume struct {
	name      string
	device    audio.Device
	cfg       config.Volume
	publisher Publisher
	logger    *slog.Logger
	open      func() (mixer, error)

	mixer mixer
	last  VolumeState
	known bool
}

// NewVolume creates a monitor for the default output, published as "volume".
func NewVolume(cfg config.Volume, publisher Publisher, logger *slog.Logger) *Volume {
	return newVolume(VarVolume, audio.Speaker, cfg, publisher, logger)
}

// NewMic creates a monitor for the default input, published as "mic".
func NewMic(cfg config.Volume, publisher Publisher, logger *slog.Logger) *Volume {
	return newVolume(VarMic, audio.Mic, cfg, publisher, logger)
}

func newVolume(name string, d audio.Device, cfg config.Volume, publisher Publisher, logger *slog.Logger) *Volume {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Volume{name: name, device: d, cfg: cfg, publisher: publisher, logger: logger, open: openPulse}
}

func (v *Volume) Name() string { return v.name }

func (v *Volume) Update(ctx context.Context) error {
	if v.mixer == nil {
		m, err := v.open()
		if err != nil {
			return fmt.Errorf("connect pulseaudio: %w", err)
		}
		v.mixer = m
	}

	level, err := v.mixer.Level(v.device)
	if err != nil {
		v.mixer.Close()
		v.mixer = nil
		return err
	}

	state := NewVolumeState(v.cfg, level)
	if v.known && state == v.last {
		return nil
	}
	v.logger.Debug("level changed", "device", v.device, "volume", level.Volume, "muted", level.Muted)
	v.last, v.known = state, true
	return v.publisher.Publish(ctx, v.name, state)
}

// Close drops the PulseAudio connection.
func (v *Volume) Close() {
	if v.mixer != nil {
		v.mixer.Close()
		v.mixer = nil
	}
}

func openPulse() (mixer, error) {
	p, err := audio.Open()
	if err != nil {
		return nil, err
	}
	return p, nil
}
