package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/d2verb/glue/internal/config"
	"github.com/d2verb/glue/internal/editor"
	"github.com/d2verb/glue/internal/ui"
)

type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write the default configuration file"`
	Path ConfigPathCmd `cmd:"" help:"Print the configuration file path"`
	Edit ConfigEditCmd `cmd:"" help:"Open the configuration file in $EDITOR"`
}

type ConfigInitCmd struct{}

func (c *ConfigInitCmd) Run(g *Globals) error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	path := g.configPath(paths)
	if err := config.WriteDefault(path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("config already exists: %s", path)
		}
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Wrote %s", path))
	return nil
}

type ConfigPathCmd struct{}

func (c *ConfigPathCmd) Run(g *Globals) error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	fmt.Println(g.configPath(paths))
	return nil
}

type ConfigEditCmd struct{}

func (c *ConfigEditCmd) Run(g *Globals) error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	path := g.configPath(paths)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.WriteDefault(path); err != nil {
			return fmt.Errorf("create config: %w", err)
		}
		ui.PrintInfo(fmt.Sprintf("Created %s with defaults", path))
	} else if err != nil {
		return fmt.Errorf("check file: %w", err)
	}

	if err := editor.Edit(path); err != nil {
		return err
	}

	if _, err := config.Load(path); err != nil {
		ui.PrintError(fmt.Sprintf("Config does not load: %v", err))
	}
	return nil
}
