package main

import (
	"os"

	"github.com/d2verb/glue/internal/monitor"
)

type BatteryCmd struct{}

func (c *BatteryCmd) Run(g *Globals) error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig(paths)
	if err != nil {
		return err
	}

	state, err := monitor.NewBattery(cfg.Battery, nil, nil, nil).Read()
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, state)
}
