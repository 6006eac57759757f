package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/d2verb/glue/internal/client"
	"github.com/d2verb/glue/internal/config"
	"github.com/d2verb/glue/internal/eww"
)

// requestTimeout bounds one request to the daemon.
const requestTimeout = 5 * time.Second

func getPaths() (*config.Paths, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("get paths: %w", err)
	}
	return paths, nil
}

// configPath returns the --config flag or the default location.
func (g *Globals) configPath(paths *config.Paths) string {
	if g.ConfigFile != "" {
		return g.ConfigFile
	}
	return paths.Config
}

// loadConfig loads the configuration selected by the global flags.
func (g *Globals) loadConfig(paths *config.Paths) (*config.Configuration, error) {
	cfg, err := config.Load(g.configPath(paths))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// mapClientError turns "no daemon" client errors into the exit-code error.
func mapClientError(err error) error {
	if client.IsUnreachable(err) {
		return errDaemonNotRunning()
	}
	return err
}

// widgetUpdater pushes a value to an eww variable.
type widgetUpdater interface {
	Update(ctx context.Context, name string, value any) error
}

func newWidgets(cfg *config.Configuration) widgetUpdater {
	return eww.NewClient(cfg.General.EwwBin, cfg.General.EwwConfig)
}

func pushWidget(ctx context.Context, widgets widgetUpdater, name string, value any) error {
	if widgets == nil {
		return nil
	}
	if err := widgets.Update(ctx, name, value); err != nil {
		return fmt.Errorf("update %s widget: %w", name, err)
	}
	return nil
}

// printJSON writes v as one line of JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %T: %w", v, err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parsePercent parses the percentage argument of a set action. Fractions
// are rounded down.
func parsePercent(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("set needs a percentage")
	}
	p, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("invalid percentage %q", s)
	}
	return int(math.Floor(p)), nil
}
