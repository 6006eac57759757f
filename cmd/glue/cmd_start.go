package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/d2verb/glue/internal/config"
	"github.com/d2verb/glue/internal/daemon"
	"github.com/d2verb/glue/internal/ui"
)

type StartCmd struct{}

func (c *StartCmd) Run(g *Globals) error {
	paths, err := getPaths()
	if err != nil {
		return err
	}

	status, err := daemon.GetStatus(paths.PID, paths.Socket)
	if err != nil && !errors.Is(err, daemon.ErrPIDFileNotFound) {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if status.Running {
		ui.PrintInfo(fmt.Sprintf("Daemon is already running (PID: %d)", status.PID))
		return nil
	}

	if status.SocketExists {
		ui.PrintWarning("Cleaning up stale socket...")
		os.Remove(paths.Socket)
	}
	if status.PID > 0 {
		daemon.RemovePIDFile(paths.PID)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	return startBackground(paths, daemonArgs(g))
}

// daemonArgs forwards the global flags to the background daemon.
func daemonArgs(g *Globals) []string {
	args := []string{"daemon", "--detached"}
	if g.Verbose {
		args = append(args, "--verbose")
	}
	if g.ConfigFile != "" {
		args = append(args, "--config", g.ConfigFile)
	}
	return args
}

func startBackground(paths *config.Paths, args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	cmd := exec.Command(exe, args...)
	cmd.Env = os.Environ()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	for range 50 {
		time.Sleep(100 * time.Millisecond)
		if daemon.IsSocketAvailable(paths.Socket) {
			ui.PrintSuccess(fmt.Sprintf("Daemon started (PID: %d)", cmd.Process.Pid))
			ui.PrintInfo(fmt.Sprintf("Logs: %s", paths.DaemonLog))
			return nil
		}
	}

	return fmt.Errorf("daemon did not start within 5 seconds, check logs: %s", paths.DaemonLog)
}
