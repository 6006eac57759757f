package main

import (
	"context"
	"fmt"

	"github.com/d2verb/glue/internal/daemon"
	"github.com/d2verb/glue/internal/eww"
	"github.com/d2verb/glue/internal/hyprland"
)

type WorkspaceCmd struct {
	Update bool `help:"Push the widget to eww instead of printing it"`
}

func (c *WorkspaceCmd) Run(g *Globals) error {
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

	bar, err := daemon.Workspaces(ctx, &hyprland.Client{}, cfg.Hyprland)
	if err != nil {
		return err
	}

	if c.Update {
		return eww.NewClient(cfg.General.EwwBin, cfg.General.EwwConfig).Update(ctx, daemon.VarWorkspace, bar)
	}
	fmt.Println(bar)
	return nil
}
