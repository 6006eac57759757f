package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/d2verb/glue/internal/config"
)

// Status is the kernel's power_supply status string.
type Status string

const (
	StatusCharging    Status = "Charging"
	StatusDischarging Status = "Discharging"
	StatusEmpty       Status = "Empty"
	StatusFull        Status = "Full"
	StatusNotCharging Status = "Not charging"
)

// ParseStatus validates a status read from sysfs.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusCharging, StatusDischarging, StatusEmpty, StatusFull, StatusNotCharging:
		return st, nil
	default:
		return "", fmt.Errorf("unknown battery status %q", s)
	}
}

// BatteryState is the published battery value.
type BatteryState struct {
	Status   Status `json:"status"`
	Capacity int    `json:"capacity"`
	Icon     string `json:"icon"`
}

// Battery publishes the battery state read from sysfs.
type Battery struct {
	cfg       config.Battery
	publisher Publisher
	notifier  Notifier
	logger    *slog.Logger

	last  BatteryState
	known bool
}

// NewBattery creates a battery monitor. notifier may be nil.
func NewBattery(cfg config.Battery, publisher Publisher, notifier Notifier, logger *slog.Logger) *Battery {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Battery{cfg: cfg, publisher: publisher, notifier: notifier, logger: logger}
}

func (b *Battery) Name() string { return VarBattery }

// Read returns the current battery state.
func (b *Battery) Read() (BatteryState, error) {
	rawCapacity, err := b.readSys("capacity")
	if err != nil {
		return BatteryState{}, err
	}
	capacity, err := strconv.Atoi(strings.TrimSpace(rawCapacity))
	if err != nil {
		return BatteryState{}, fmt.Errorf("parse battery capacity %q: %w", rawCapacity, err)
	}

	rawStatus, err := b.readSys("status")
	if err != nil {
		return BatteryState{}, err
	}
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return BatteryState{}, err
	}

	return BatteryState{Status: status, Capacity: capacity, Icon: BatteryIcon(b.cfg, status, capacity)}, nil
}

func (b *Battery) Update(ctx context.Context) error {
	state, err := b.Read()
	if err != nil {
		return err
	}
	if b.known && state == b.last {
		return nil
	}
	b.logger.Info("battery changed", "status", state.Status, "capacity", state.Capacity, "previous_status", b.last.Status, "previous_capacity", b.last.Capacity)
	b.last, b.known = state, true

	b.fireEvents(ctx, state)
	return b.publisher.Publish(ctx, b.Name(), state)
}

func (b *Battery) fireEvents(ctx context.Context, state BatteryState) {
	for _, ev := range b.cfg.Events {
		if Status(ev.State) != state.Status || ev.Charge != state.Capacity || ev.Notify == "" {
			continue
		}
		if b.notifier == nil {
			continue
		}
		if err := b.notifier.Show(ctx, "Battery", ev.Notify); err != nil {
			b.logger.Warn("battery notification failed", "error", err)
		}
	}
}

func (b *Battery) readSys(name string) (string, error) {
	path := filepath.Join(b.cfg.Path, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// BatteryIcon picks the icon for a status and capacity. While discharging
// the capacity selects one of the charging states, clamped to the last one.
func BatteryIcon(cfg config.Battery, status Status, capacity int) string {
	switch status {
	case StatusFull, StatusNotCharging:
		return cfg.Full
	case StatusCharging:
		return cfg.Charging
	case StatusEmpty:
		return cfg.Empty
	}
	return scaleIcon(cfg.ChargingStates, capacity)
}

// scaleIcon maps a 0-100 level onto icons.
func scaleIcon(icons []string, level int) string {
	if len(icons) == 0 {
		return ""
	}
	step := 100 / len(icons)
	if step == 0 {
		step = 1
	}
	i := max(level, 0) / step
	if i >= len(icons) {
		i = len(icons) - 1
	}
	return icons[i]
}
