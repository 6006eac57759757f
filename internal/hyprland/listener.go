package hyprland

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
)

// Listener dispatches compositor events to its callbacks. Nil callbacks are
// skipped. Callbacks run on the listening goroutine.
type Listener struct {
	// OnWorkspaceChanged runs when the set of workspaces, their windows or
	// the focused workspace may have changed. The payload is the raw event
	// payload.
	OnWorkspaceChanged func(ctx context.Context, ev Event)
	// OnMonitorAdded runs with the monitor name.
	OnMonitorAdded func(ctx context.Context, name string)
	// OnMonitorRemoved runs with the monitor name.
	OnMonitorRemoved func(ctx context.Context, name string)

	// Path overrides the event socket location.
	Path   string
	Logger *slog.Logger
}

// workspaceEvents trigger OnWorkspaceChanged. The v2 variants repeat these
// and are ignored.
var workspaceEvents = map[string]bool{
	"workspace":        true,
	"focusedmon":       true,
	"createworkspace":  true,
	"destroyworkspace": true,
	"moveworkspace":    true,
	"openwindow":       true,
	"closewindow":      true,
	"movewindow":       true,
}

// Listen connects to the event socket and dispatches events until ctx is
// cancelled, returning nil, or the compositor closes the socket.
func (l *Listener) Listen(ctx context.Context) error {
	path := l.Path
	if path == "" {
		dir, err := SocketDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, eventSocketName)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return fmt.Errorf("connect hyprland event socket %s: %w", path, err)
	}
	return l.serve(ctx, conn)
}

func (l *Listener) serve(ctx context.Context, conn net.Conn) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		l.dispatch(ctx, ParseEvent(sc.Text()))
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := sc.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("read hyprland events: %w", err)
	}
	return errors.New("hyprland event socket closed")
}

func (l *Listener) dispatch(ctx context.Context, ev Event) {
	switch {
	case workspaceEvents[ev.Name]:
		if l.OnWorkspaceChanged != nil {
			l.logger().Debug("workspace event", "event", ev.Name, "payload", ev.Payload)
			l.OnWorkspaceChanged(ctx, ev)
		}
	case ev.Name == "monitoradded":
		if l.OnMonitorAdded != nil {
			l.logger().Info("monitor added", "monitor", ev.Payload)
			l.OnMonitorAdded(ctx, ev.Payload)
		}
	case ev.Name == "monitorremoved":
		if l.OnMonitorRemoved != nil {
			l.logger().Info("monitor removed", "monitor", ev.Payload)
			l.OnMonitorRemoved(ctx, ev.Payload)
		}
	}
}

func (l *Listener) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}
