package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/d2verb/glue/internal/daemon"
	"github.com/d2verb/glue/internal/ui"
)

// stopTimeout is how long stop waits for a graceful exit before killing.
const stopTimeout = 10 * time.Second

type StopCmd struct{}

func (c *StopCmd) Run() error {
	paths, err := getPaths()
	if err != nil {
		return err
	}

	status, err := daemon.GetStatus(paths.PID, paths.Socket)
	if err != nil && !errors.Is(err, daemon.ErrPIDFileNotFound) {
		if status.SocketExists {
			ui.PrintWarning("Stale daemon state detected")
			fmt.Printf("Manual cleanup may be needed: rm %s\n", paths.Socket)
		}
		return fmt.Errorf("check daemon status: %w", err)
	}

	if !status.Running {
		ui.PrintInfo("Daemon is not running")
		daemon.RemovePIDFile(paths.PID)
		if status.SocketExists {
			os.Remove(paths.Socket)
		}
		return nil
	}

	ui.PrintInfo("Stopping daemon...")
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	err = daemon.StopProcess(ctx, status.PID)
	switch {
	case err == nil:
		daemon.RemovePIDFile(paths.PID)
		ui.PrintSuccess("Daemon stopped")
		return nil
	case !errors.Is(err, context.DeadlineExceeded):
		return err
	}

	ui.PrintWarning("Daemon did not stop gracefully, forcing...")
	process, err := os.FindProcess(status.PID)
	if err != nil {
		return fmt.Errorf("find process: %w", err)
	}
	if err := process.Kill(); err != nil {
		return fmt.Errorf("kill daemon: %w", err)
	}

	daemon.RemovePIDFile(paths.PID)
	os.Remove(paths.Socket)
	ui.PrintSuccess("Daemon stopped")
	return nil
}
