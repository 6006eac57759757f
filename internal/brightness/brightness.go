// Package brightness reads backlight devices from sysfs and changes them
// through systemd-logind, which lets the session owner write brightness
// without root.
package brightness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Subsystem is the sysfs class the devices belong to.
const Subsystem = "backlight"

// Step is the change applied by Increase and Decrease, in percent.
const Step = 5

// ErrNoDevices is returned when the class directory holds no readable device.
var ErrNoDevices = errors.New("no backlight devices found")

// Device is one backlight at a brightness in percent.
type Device struct {
	Name       string `json:"name"`
	Brightness int    `json:"brightness"`

	maxRaw int
}

// Settings is the published brightness value.
type Settings struct {
	Devices []Device `json:"devices"`
}

// Setter writes a raw brightness value for a device.
type Setter interface {
	SetBrightness(ctx context.Context, subsystem, name string, value uint32) error
}

// Backlight controls every device under one sysfs class directory.
type Backlight struct {
	dir    string
	setter Setter
}

// New creates a controller for the devices in dir. setter may be nil when
// only reading.
func New(dir string, setter Setter) *Backlight {
	return &Backlight{dir: dir, setter: setter}
}

// Read returns every readable device, sorted by name. Devices whose files
// cannot be parsed are skipped.
func (b *Backlight) Read() (Settings, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return Settings{}, fmt.Errorf("list %s: %w", b.dir, err)
	}

	var devices []Device
	for _, e := range entries {
		d, err := readDevice(filepath.Join(b.dir, e.Name()))
		if err != nil {
			continue
		}
		devices = append(devices, d)
	}
	if len(devices) == 0 {
		return Settings{}, ErrNoDevices
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return Settings{Devices: devices}, nil
}

// Set moves every device to percent, clamped to 0..100.
func (b *Backlight) Set(ctx context.Context, percent int) (Settings, error) {
	return b.apply(ctx, func(int) int { return percent })
}

// Change moves every device by delta percent from its own level.
func (b *Backlight) Change(ctx context.Context, delta int) (Settings, error) {
	return b.apply(ctx, func(cur int) int { return cur + delta })
}

func (b *Backlight) apply(ctx context.Context, target func(cur int) int) (Settings, error) {
	if b.setter == nil {
		return Settings{}, errors.New("brightness: no setter configured")
	}
	cur, err := b.Read()
	if err != nil {
		return Settings{}, err
	}
	for _, d := range cur.Devices {
		raw := toRaw(min(max(target(d.Brightness), 0), 100), d.maxRaw)
		if err := b.setter.SetBrightness(ctx, Subsystem, d.Name, uint32(raw)); err != nil {
			return Settings{}, fmt.Errorf("set %s brightness: %w", d.Name, err)
		}
	}
	return b.Read()
}

func readDevice(dir string) (Device, error) {
	raw, err := readInt(filepath.Join(dir, "brightness"))
	if err != nil {
		return Device{}, err
	}
	maxRaw, err := readInt(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return Device{}, err
	}
	if maxRaw <= 0 {
		return Device{}, fmt.Errorf("%s: max_brightness %d", dir, maxRaw)
	}
	return Device{
		Name:       filepath.Base(dir),
		Brightness: toPercent(raw, maxRaw),
		maxRaw:     maxRaw,
	}, nil
}

func readInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func toPercent(raw, maxRaw int) int {
	return (raw*100 + maxRaw/2) / maxRaw
}

func toRaw(percent, maxRaw int) int {
	return (percent*maxRaw + 50) / 100
}
