package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/d2verb/glue/internal/audio"
	"github.com/d2verb/glue/internal/config"
	"github.com/d2verb/glue/internal/monitor"
)

type fakeMixer struct {
	levels map[audio.Device]audio.Level
	err    error
}

func (m *fakeMixer) Level(d audio.Device) (audio.Level, error) {
	return m.levels[d], m.err
}

func (m *fakeMixer) SetVolume(d audio.Device, percent int) error {
	l := m.levels[d]
	l.Volume = percent
	m.levels[d] = l
	return m.err
}

func (m *fakeMixer) SetMute(d audio.Device, muted bool) error {
	l := m.levels[d]
	l.Muted = muted
	m.levels[d] = l
	return m.err
}

type widgetPush struct {
	name  string
	value any
}

type fakeWidgets struct {
	pushes []widgetPush
	err    error
}

func (f *fakeWidgets) Update(ctx context.Context, name string, value any) error {
	f.pushes = append(f.pushes, widgetPush{name, value})
	return f.err
}

var testMixerIcons = config.Volume{Icons: []string{"lo", "hi"}, Muted: "M"}

func speakerRequest(action, percent string) mixerRequest {
	return mixerRequest{
		device:  audio.Speaker,
		name:    monitor.VarVolume,
		icons:   testMixerIcons,
		action:  action,
		percent: percent,
	}
}

func TestRunMixer(t *testing.T) {
	tests := []struct {
		action  string
		percent string
		want    string
		pushed  bool
	}{
		{"get", "", `{"volume":40,"muted":false,"icon":"lo"}`, false},
		{"set", "75", `{"volume":75,"muted":false,"icon":"hi"}`, true},
		{"set", "12.9%", `{"volume":12,"muted":false,"icon":"lo"}`, true},
		{"set", "250", `{"volume":100,"muted":false,"icon":"hi"}`, true},
		{"increase", "", `{"volume":45,"muted":false,"icon":"lo"}`, true},
		{"decrease", "", `{"volume":35,"muted":false,"icon":"lo"}`, true},
		{"mute", "", `{"volume":40,"muted":true,"icon":"M"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.action+tt.percent, func(t *testing.T) {
			// Arrange
			m := &fakeMixer{levels: map[audio.Device]audio.Level{audio.Speaker: {Volume: 40}}}
			widgets := &fakeWidgets{}
			var out bytes.Buffer

			// Act
			err := runMixer(context.Background(), &out, m, widgets, speakerRequest(tt.action, tt.percent))

			// Assert
			if err != nil {
				t.Fatalf("runMixer() error = %v", err)
			}
			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("output = %s, want %s", got, tt.want)
			}
			if got := len(widgets.pushes) == 1; got != tt.pushed {
				t.Fatalf("pushes = %v, want pushed %v", widgets.pushes, tt.pushed)
			}
			if tt.pushed && widgets.pushes[0].name != monitor.VarVolume {
				t.Errorf("pushed to %q, want %q", widgets.pushes[0].name, monitor.VarVolume)
			}
		})
	}
}

func TestRunMixer_MicMute(t *testing.T) {
	// Arrange
	m := &fakeMixer{levels: map[audio.Device]audio.Level{
		audio.Speaker: {Volume: 10},
		audio.Mic:     {Volume: 90, Muted: true},
	}}
	widgets := &fakeWidgets{}
	var out bytes.Buffer
	req := mixerRequest{device: audio.Mic, name: monitor.VarMic, icons: testMixerIcons, action: "mute"}

	// Act
	err := runMixer(context.Background(), &out, m, widgets, req)

	// Assert
	if err != nil {
		t.Fatalf("runMixer() error = %v", err)
	}
	if m.levels[audio.Mic].Muted {
		t.Error("mic should be unmuted")
	}
	if m.levels[audio.Speaker].Muted {
		t.Error("speaker must not change")
	}
	if len(widgets.pushes) != 1 || widgets.pushes[0].name != monitor.VarMic {
		t.Errorf("pushes = %v", widgets.pushes)
	}
}

func TestRunMixer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		percent string
		mixErr  error
		pushErr error
		want    string
	}{
		{"set without value", "set", "", nil, nil, "needs a percentage"},
		{"set garbage", "set", "loud", nil, nil, "invalid percentage"},
		{"unknown action", "louder", "", nil, nil, "unknown speaker action"},
		{"mixer failure", "increase", "", errors.New("server gone"), nil, "server gone"},
		{"eww failure", "mute", "", nil, errors.New("eww not running"), "update volume widget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMixer{levels: map[audio.Device]audio.Level{}, err: tt.mixErr}

			err := runMixer(context.Background(), &bytes.Buffer{}, m, &fakeWidgets{err: tt.pushErr}, speakerRequest(tt.action, tt.percent))

			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}
