// Package inhibit acquires the desktop idle inhibition over D-Bus.
//
// Two backends exist. ScreenSaver talks to org.freedesktop.ScreenSaver on the
// session bus and holds a cookie. Logind asks org.freedesktop.login1 on the
// system bus for an "idle" inhibitor lock and holds the returned file
// descriptor. Both report their status from the handle they hold and are safe
// for concurrent use.
package inhibit

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/d2verb/glue/internal/protocol"
)

// Backend names accepted by Open.
const (
	BackendScreenSaver = "screensaver"
	BackendLogind      = "logind"
)

// Inhibitor is an idle inhibitor backed by a bus connection.
type Inhibitor interface {
	Inhibit(ctx context.Context) error
	Release(ctx context.Context) error
	Get(ctx context.Context) (protocol.IdleState, error)
	Toggle(ctx context.Context) error
	Close() error
}

// caller is the subset of dbus.BusObject the backends use.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// UnknownBackendError is returned by Open for an unsupported backend name.
type UnknownBackendError struct {
	Name string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown idle inhibit backend %q (want %q or %q)", e.Name, BackendScreenSaver, BackendLogind)
}

// Open connects the named backend. An empty name selects the ScreenSaver
// backend.
func Open(backend, who, why string) (Inhibitor, error) {
	switch backend {
	case "", BackendScreenSaver:
		return NewScreenSaver(who, why)
	case BackendLogind:
		return NewLogind(who, why)
	default:
		return nil, &UnknownBackendError{Name: backend}
	}
}
