package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/d2verb/glue/internal/eww"
	"github.com/d2verb/glue/internal/hyprland"
)

type LockCmd struct{}

func (c *LockCmd) Run(g *Globals) error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig(paths)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return runLock(ctx, &hyprland.Client{}, cfg.Lock)
}

// executor runs a command through the compositor.
type executor interface {
	Exec(ctx context.Context, command string) error
}

// runLock dispatches every lock command and reports all failures together.
func runLock(ctx context.Context, x executor, commands []string) error {
	if len(commands) == 0 {
		return errors.New("no lock commands configured (set lock in the config file)")
	}
	var errs []error
	for _, command := range commands {
		if err := x.Exec(ctx, command); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", command, err))
		}
	}
	return errors.Join(errs...)
}

type WakeUpCmd struct {
	EwwConfig string `short:"e" type:"path" help:"eww configuration directory (default: general.eww_config)"`
}

// Run reopens the widget windows, e.g. after resuming from suspend.
func (c *WakeUpCmd) Run(g *Globals) error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig(paths)
	if err != nil {
		return err
	}
	dir := cfg.General.EwwConfig
	if c.EwwConfig != "" {
		dir = c.EwwConfig
	}
	if len(cfg.General.Windows) == 0 {
		return errors.New("no windows configured (set general.windows in the config file)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return eww.NewClient(cfg.General.EwwBin, dir).Open(ctx, cfg.General.Windows...)
}
