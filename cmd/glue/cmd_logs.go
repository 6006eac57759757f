package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

type LogsCmd struct {
	Follow bool `short:"f" help:"Keep printing as the daemon writes."`
	Lines  int  `short:"n" default:"50" help:"Number of trailing lines to show."`
}

func (c *LogsCmd) Run() error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	if _, err := os.Stat(paths.DaemonLog); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no daemon log at %s yet; run 'glue start' first", paths.DaemonLog)
	}

	tail, err := exec.LookPath("tail")
	if err != nil {
		return fmt.Errorf("locate tail: %w", err)
	}
	argv := []string{"tail", "-n", strconv.Itoa(c.Lines)}
	if c.Follow {
		argv = append(argv, "-f")
	}
	argv = append(argv, paths.DaemonLog)

	return syscall.Exec(tail, argv, os.Environ())
}
