package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/d2verb/glue/internal/brightness"
	"github.com/d2verb/glue/internal/monitor"
)

var brightnessActions = []string{"get", "set", "increase", "decrease"}

type BrightnessCmd struct {
	Action  string `arg:"" enum:"get,set,increase,decrease" help:"One of: get, set, increase, decrease" predictor:"brightness-action"`
	Percent string `arg:"" optional:"" help:"Brightness for set, 0-100"`
}

func (c *BrightnessCmd) Run(g *Globals) error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig(paths)
	if err != nil {
		return err
	}

	var setter brightness.Setter
	if c.Action != "get" {
		l, err := brightness.NewLogind()
		if err != nil {
			return err
		}
		defer l.Close()
		setter = l
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	b := brightness.New(cfg.Brightness.Path, setter)
	return runBrightness(ctx, os.Stdout, b, newWidgets(cfg), c.Action, c.Percent)
}

// runBrightness applies action to every backlight device, prints the
// resulting levels and pushes them to eww when they changed.
func runBrightness(ctx context.Context, w io.Writer, b *brightness.Backlight, widgets widgetUpdater, action, percent string) error {
	var (
		s   brightness.Settings
		err error
	)
	switch action {
	case "get":
		s, err = b.Read()
	case "set":
		p, perr := parsePercent(percent)
		if perr != nil {
			return perr
		}
		s, err = b.Set(ctx, p)
	case "increase":
		s, err = b.Change(ctx, brightness.Step)
	case "decrease":
		s, err = b.Change(ctx, -brightness.Step)
	default:
		return fmt.Errorf("unknown brightness action %q", action)
	}
	if err != nil {
		return err
	}

	if err := printJSON(w, s); err != nil {
		return err
	}
	if action == "get" {
		return nil
	}
	return pushWidget(ctx, widgets, monitor.VarBrightness, s)
}
