package main

import "fmt"

// Exit codes for CLI commands.
const (
	exitSuccess          = 0
	exitError            = 1
	exitDaemonNotRunning = 2
)

// ExitError represents an error that should cause the process to exit with a specific code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func errDaemonNotRunning() *ExitError {
	return &ExitError{
		Code:    exitDaemonNotRunning,
		Message: "Daemon is not running.\nRun: glue start",
	}
}

func errAlreadyRunning(pid int) *ExitError {
	return &ExitError{
		Code:    exitError,
		Message: fmt.Sprintf("Daemon is already running (PID: %d).", pid),
	}
}

func errStatusUnknown() *ExitError {
	return &ExitError{
		Code:    exitError,
		Message: "The daemon could not read the idle inhibit state. See: glue logs",
	}
}
