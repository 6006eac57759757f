package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

var (
	ErrPIDFileNotFound = errors.New("PID file not found")
	ErrInvalidPIDFile  = errors.New("invalid PID file")
	// ErrAlreadyRunning means a live process other than this one owns the PID file.
	ErrAlreadyRunning = errors.New("daemon already running")
)

// stopPollInterval is how often StopProcess checks whether the daemon exited.
const stopPollInterval = 50 * time.Millisecond

// Status combines what the PID file and the socket say about the daemon.
type Status struct {
	Running      bool
	PID          int
	SocketExists bool
}

// WritePIDFile records the current process in path, readable only by the owner.
func WritePIDFile(path string) error {
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(path, []byte(pid), 0600); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	return nil
}

// AcquirePIDFile claims path for this process. It fails with
// ErrAlreadyRunning when the file names some other live process; leftovers
// from a crashed daemon are overwritten.
func AcquirePIDFile(path string) error {
	owner, err := ReadPIDFile(path)
	if err != nil || owner == os.Getpid() {
		return WritePIDFile(path)
	}

	alive, err := IsProcessRunning(owner)
	switch {
	case err != nil:
		return err
	case alive:
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, owner)
	}
	return WritePIDFile(path)
}

// ReadPIDFile returns the PID stored in path. A missing file yields
// ErrPIDFileNotFound and unparsable contents wrap ErrInvalidPIDFile.
func ReadPIDFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrPIDFileNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read PID file: %w", err)
	}
	return parsePID(string(raw))
}

func parsePID(s string) (int, error) {
	s = strings.TrimSpace(s)
	pid, err := strconv.Atoi(s)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPIDFile, s)
	}
	return pid, nil
}

// IsProcessRunning checks pid with signal 0. A process owned by another
// user counts as running.
func IsProcessRunning(pid int) (bool, error) {
	if pid <= 0 {
		return false, fmt.Errorf("invalid PID: %d", pid)
	}

	err := syscall.Kill(pid, 0)
	if err == nil || errors.Is(err, syscall.EPERM) {
		return true, nil
	}
	if errors.Is(err, syscall.ESRCH) {
		return false, nil
	}
	return false, fmt.Errorf("check process %d: %w", pid, err)
}

// StopProcess asks pid to terminate and blocks until it is gone or ctx ends.
func StopProcess(ctx context.Context, pid int) error {
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return fmt.Errorf("send SIGTERM to %d: %w", pid, err)
	}

	poll := time.NewTicker(stopPollInterval)
	defer poll.Stop()
	for {
		alive, err := IsProcessRunning(pid)
		if err != nil {
			return err
		}
		if !alive {
			return nil
		}
		select {
		case <-poll.C:
		case <-ctx.Done():
			return fmt.Errorf("daemon (pid %d) did not exit: %w", pid, ctx.Err())
		}
	}
}

// IsSocketAvailable reports whether something accepts connections on socketPath.
func IsSocketAvailable(socketPath string) bool {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return false
	}
	return conn.Close() == nil
}

// GetStatus inspects the PID file and the socket. The returned Status is
// never nil, so callers can still report what was found alongside an error.
func GetStatus(pidPath, socketPath string) (*Status, error) {
	st := &Status{SocketExists: IsSocketAvailable(socketPath)}

	pid, err := ReadPIDFile(pidPath)
	switch {
	case errors.Is(err, ErrPIDFileNotFound):
		return st, nil
	case err != nil:
		return st, fmt.Errorf("read PID: %w", err)
	}
	st.PID = pid

	if st.Running, err = IsProcessRunning(pid); err != nil {
		return st, err
	}
	if st.SocketExists && !st.Running {
		return st, fmt.Errorf("socket is live but process %d is gone (stale socket?)", pid)
	}
	return st, nil
}

// RemovePIDFile deletes path. A missing file is not an error.
func RemovePIDFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove PID file: %w", err)
	}
	return nil
}
