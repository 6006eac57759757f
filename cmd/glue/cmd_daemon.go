package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/d2verb/glue/internal/brightness"
	"github.com/d2verb/glue/internal/config"
	"github.com/d2verb/glue/internal/daemon"
	"github.com/d2verb/glue/internal/eww"
	"github.com/d2verb/glue/internal/hyprland"
	"github.com/d2verb/glue/internal/inhibit"
	"github.com/d2verb/glue/internal/logging"
	"github.com/d2verb/glue/internal/monitor"
	"github.com/d2verb/glue/internal/notify"
)

// notificationTimeout is how long daemon notifications stay on screen.
const notificationTimeout = 10 * time.Second

type DaemonCmd struct {
	Detached bool `hidden:"" help:"Log to the log file only (set by start)"`
}

func (c *DaemonCmd) Run(g *Globals) error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	configPath := g.configPath(paths)
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if g.Verbose {
		level = slog.LevelDebug
	}

	logFile := logging.NewRotatingWriter(logging.DefaultConfig(paths.DaemonLog))
	defer logFile.Close()
	writers := []io.Writer{logFile}
	if !c.Detached {
		writers = append(writers, os.Stderr)
	}
	logger, _ := logging.WithDaemonID(logging.NewLogger(level, writers...))

	if err := daemon.AcquirePIDFile(paths.PID); err != nil {
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			pid, _ := daemon.ReadPIDFile(paths.PID)
			return errAlreadyRunning(pid)
		}
		return fmt.Errorf("acquire PID file: %w", err)
	}
	defer daemon.RemovePIDFile(paths.PID)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	inhibitor, err := inhibit.Open(cfg.Coffee.Backend, notify.AppName, "coffee")
	if err != nil {
		logger.Error("open idle inhibitor", "backend", cfg.Coffee.Backend, "error", err)
		return fmt.Errorf("open idle inhibitor: %w", err)
	}
	defer inhibitor.Close()

	notifier := notify.Fallback{Secondary: notify.Beeep{}}
	if bus, err := notify.NewDBus("", notificationTimeout); err != nil {
		logger.Warn("notification daemon unavailable, using fallback", "error", err)
	} else {
		defer bus.Close()
		notifier.Primary = bus
	}

	deps := daemon.Deps{
		Inhibitor: inhibitor,
		Notifier:  notifier,
		UI:        eww.NewClient(cfg.General.EwwBin, cfg.General.EwwConfig),
		Logger:    logger,
	}
	if _, err := hyprland.SocketDir(); err != nil {
		logger.Warn("hyprland not detected, autostart and workspaces disabled", "error", err)
	} else {
		deps.Compositor = &hyprland.Client{}
		deps.Events = &hyprland.Listener{}
	}

	d := daemon.New(cfg, paths.Socket, deps)

	if _, err := os.Stat(cfg.Battery.Path); err == nil {
		d.AddMonitor(monitor.NewBattery(cfg.Battery, d, notifier, logging.Component(logger, "battery")))
	} else {
		logger.Info("no battery found, battery widget disabled", "path", cfg.Battery.Path)
	}
	volume := monitor.NewVolume(cfg.Volume, d, logging.Component(logger, "volume"))
	defer volume.Close()
	mic := monitor.NewMic(cfg.Mic, d, logging.Component(logger, "mic"))
	defer mic.Close()
	d.AddMonitor(volume, mic)

	backlight := brightness.New(cfg.Brightness.Path, nil)
	if _, err := backlight.Read(); err == nil {
		d.AddMonitor(monitor.NewBrightness(backlight, d, logging.Component(logger, "brightness")))
	} else {
		logger.Info("no backlight found, brightness widget disabled", "path", cfg.Brightness.Path, "error", err)
	}

	err = config.Watch(configPath, logging.Component(logger, "config"), func(next *config.Configuration) {
		d.Reload(ctx, next)
	})
	if err != nil {
		logger.Warn("config watch disabled", "path", configPath, "error", err)
	}

	logger.Info("daemon starting", "version", version, "pid", os.Getpid(), "config", configPath)
	return d.Run(ctx)
}
