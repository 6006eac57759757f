package brightness

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	logindDest    = "org.freedesktop.login1"
	logindSession = dbus.ObjectPath("/org/freedesktop/login1/session/auto")
	sessionIface  = "org.freedesktop.login1.Session"
)

// caller is the subset of dbus.BusObject Logind uses.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Logind sets brightness with login1.Session.SetBrightness on the caller's
// own session.
type Logind struct {
	conn *dbus.Conn
	obj  caller
}

// NewLogind connects a private system bus connection.
func NewLogind() (*Logind, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	return &Logind{conn: conn, obj: conn.Object(logindDest, logindSession)}, nil
}

func (l *Logind) SetBrightness(ctx context.Context, subsystem, name string, value uint32) error {
	if err := l.obj.CallWithContext(ctx, sessionIface+".SetBrightness", 0, subsystem, name, value).Err; err != nil {
		return fmt.Errorf("login1.Session.SetBrightness: %w", err)
	}
	return nil
}

// Close closes the bus connection.
func (l *Logind) Close() error {
	if l.conn == nil {
		return nil
	}
	return l.conn.Close()
}
