// Package audio reads and changes the default PulseAudio output and input.
package audio

import (
	"fmt"
)

// Device selects the default sink or the default source.
type Device int

const (
	Speaker Device = iota
	Mic
)

func (d Device) String() string {
	switch d {
	case Speaker:
		return "speaker"
	case Mic:
		return "mic"
	default:
		return fmt.Sprintf("Device(%d)", int(d))
	}
}

// Step is the volume change applied by Increase and Decrease, in percent.
const Step = 5

// Level is a device's volume in percent of nominal and its mute switch.
type Level struct {
	Volume int  `json:"volume"`
	Muted  bool `json:"muted"`
}

// Mixer reads and changes device levels.
type Mixer interface {
	Level(d Device) (Level, error)
	SetVolume(d Device, percent int) error
	SetMute(d Device, muted bool) error
}

// Clamp limits percent to 0..100. Boosting past nominal is left to other tools.
func Clamp(percent int) int {
	return min(max(percent, 0), 100)
}

// Set sets the volume of d and returns the resulting level.
func Set(m Mixer, d Device, percent int) (Level, error) {
	if err := m.SetVolume(d, Clamp(percent)); err != nil {
		return Level{}, fmt.Errorf("set %s volume: %w", d, err)
	}
	return read(m, d)
}

// Change moves the volume of d by delta percent.
func Change(m Mixer, d Device, delta int) (Level, error) {
	cur, err := read(m, d)
	if err != nil {
		return Level{}, err
	}
	return Set(m, d, cur.Volume+delta)
}

// ToggleMute flips the mute switch of d.
func ToggleMute(m Mixer, d Device) (Level, error) {
	cur, err := read(m, d)
	if err != nil {
		return Level{}, err
	}
	if err := m.SetMute(d, !cur.Muted); err != nil {
		return Level{}, fmt.Errorf("set %s mute: %w", d, err)
	}
	return read(m, d)
}

func read(m Mixer, d Device) (Level, error) {
	l, err := m.Level(d)
	if err != nil {
		return Level{}, fmt.Errorf("read %s level: %w", d, err)
	}
	return l, nil
}
