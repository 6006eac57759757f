// Package hyprland talks to the Hyprland compositor over its unix sockets.
//
// The event socket (.socket2.sock) streams lines of the form name>>payload.
// The request socket (.socket.sock) answers one request per connection.
package hyprland

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotRunning is returned when no Hyprland instance signature is set.
var ErrNotRunning = errors.New("hyprland is not running (HYPRLAND_INSTANCE_SIGNATURE unset)")

const (
	eventSocketName   = ".socket2.sock"
	requestSocketName = ".socket.sock"
)

// SocketDir returns the directory holding the current instance's sockets.
// Newer Hyprland releases use $XDG_RUNTIME_DIR/hypr, older ones /tmp/hypr.
func SocketDir() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", ErrNotRunning
	}
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		dir := filepath.Join(runtime, "hypr", sig)
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}
	return filepath.Join(os.TempDir(), "hypr", sig), nil
}

// Event is one line from the event socket.
type Event struct {
	Name    string
	Payload string
}

// ParseEvent splits a raw event line. A line without a separator is an
// event with an empty payload.
func ParseEvent(line string) Event {
	name, payload, _ := strings.Cut(line, ">>")
	return Event{Name: name, Payload: payload}
}
