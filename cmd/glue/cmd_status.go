package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/d2verb/glue/internal/client"
	"github.com/d2verb/glue/internal/daemon"
	"github.com/d2verb/glue/internal/protocol"
	"github.com/d2verb/glue/internal/ui"
)

type StatusCmd struct{}

func (c *StatusCmd) Run() error {
	paths, err := getPaths()
	if err != nil {
		return err
	}

	status, err := daemon.GetStatus(paths.PID, paths.Socket)
	if err != nil && !errors.Is(err, daemon.ErrPIDFileNotFound) {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	out := ui.Status{
		Running: status.Running && status.SocketExists,
		PID:     status.PID,
		Socket:  paths.Socket,
		Log:     paths.DaemonLog,
	}
	if out.Running {
		if st, err := client.Coffee(paths.Socket, protocol.CoffeeGet, requestTimeout); err == nil && st != nil {
			out.Coffee = &st.Inhibited
		}
	}
	ui.PrintStatus(out)

	if !out.Running {
		return &ExitError{Code: exitDaemonNotRunning}
	}
	return nil
}
