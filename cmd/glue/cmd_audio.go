package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/d2verb/glue/internal/audio"
	"github.com/d2verb/glue/internal/config"
	"github.com/d2verb/glue/internal/monitor"
)

var (
	audioActions = []string{"get", "set", "mute", "increase", "decrease"}
	micActions   = []string{"get", "mute"}
)

type AudioCmd struct {
	Action  string `arg:"" enum:"get,set,mute,increase,decrease" help:"One of: get, set, mute, increase, decrease" predictor:"audio-action"`
	Percent string `arg:"" optional:"" help:"Volume for set, 0-100"`
}

func (c *AudioCmd) Run(g *Globals) error {
	return runMixerCmd(g, audio.Speaker, monitor.VarVolume, c.Action, c.Percent)
}

type MicCmd struct {
	Action string `arg:"" enum:"get,mute" help:"One of: get, mute" predictor:"mic-action"`
}

func (c *MicCmd) Run(g *Globals) error {
	return runMixerCmd(g, audio.Mic, monitor.VarMic, c.Action, "")
}

func runMixerCmd(g *Globals, d audio.Device, name, action, percent string) error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig(paths)
	if err != nil {
		return err
	}
	icons := cfg.Volume
	if d == audio.Mic {
		icons = cfg.Mic
	}

	m, err := audio.Open()
	if err != nil {
		return fmt.Errorf("connect pulseaudio: %w", err)
	}
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return runMixer(ctx, os.Stdout, m, newWidgets(cfg), mixerRequest{
		device:  d,
		name:    name,
		icons:   icons,
		action:  action,
		percent: percent,
	})
}

type mixerRequest struct {
	device  audio.Device
	name    string
	icons   config.Volume
	action  string
	percent string
}

// runMixer applies an audio or mic action, prints the resulting widget value
// and, when the level changed, pushes it to eww.
func runMixer(ctx context.Context, w io.Writer, m audio.Mixer, widgets widgetUpdater, req mixerRequest) error {
	var (
		level audio.Level
		err   error
	)
	switch req.action {
	case "get":
		level, err = m.Level(req.device)
	case "set":
		p, perr := parsePercent(req.percent)
		if perr != nil {
			return perr
		}
		level, err = audio.Set(m, req.device, p)
	case "mute":
		level, err = audio.ToggleMute(m, req.device)
	case "increase":
		level, err = audio.Change(m, req.device, audio.Step)
	case "decrease":
		level, err = audio.Change(m, req.device, -audio.Step)
	default:
		return fmt.Errorf("unknown %s action %q", req.device, req.action)
	}
	if err != nil {
		return err
	}

	state := monitor.NewVolumeState(req.icons, level)
	if err := printJSON(w, state); err != nil {
		return err
	}
	if req.action == "get" {
		return nil
	}
	return pushWidget(ctx, widgets, req.name, state)
}
