package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/d2verb/glue/internal/client"
	"github.com/d2verb/glue/internal/coffee"
	"github.com/d2verb/glue/internal/protocol"
)

type CoffeeCmd struct {
	Action string `arg:"" enum:"drink,relax,toggle,get" help:"One of: drink, relax, toggle, get" predictor:"coffee-action"`
}

// Run prints the coffee widget value. When the daemon is unreachable it
// still prints the relaxed value so the widget renders, then exits 2.
func (c *CoffeeCmd) Run(g *Globals) error {
	action, err := protocol.ParseCoffeeAction(c.Action)
	if err != nil {
		return err
	}
	paths, err := getPaths()
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig(paths)
	if err != nil {
		return err
	}
	return runCoffee(os.Stdout, paths.Socket, action, cfg.CoffeeIcons())
}

func runCoffee(w io.Writer, socket string, action protocol.CoffeeAction, icons coffee.Icons) error {
	st, err := client.Coffee(socket, action, requestTimeout)
	if err != nil {
		if perr := printCoffee(w, protocol.IdleState{}, icons); perr != nil {
			return perr
		}
		return mapClientError(err)
	}
	if st == nil {
		if perr := printCoffee(w, protocol.IdleState{}, icons); perr != nil {
			return perr
		}
		return errStatusUnknown()
	}
	return printCoffee(w, *st, icons)
}

func printCoffee(w io.Writer, st protocol.IdleState, icons coffee.Icons) error {
	data, err := json.Marshal(coffee.Render(st, icons))
	if err != nil {
		return fmt.Errorf("encode coffee state: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
