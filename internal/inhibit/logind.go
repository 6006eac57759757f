package inhibit

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/d2verb/glue/internal/protocol"
)

const (
	logindDest    = "org.freedesktop.login1"
	logindPath    = dbus.ObjectPath("/org/freedesktop/login1")
	logindManager = "org.freedesktop.login1.Manager"
)

// Logind holds an "idle" inhibitor lock from systemd-logind. The lock lasts
// as long as the returned file descriptor stays open.
type Logind struct {
	mu   sync.Mutex
	conn *dbus.Conn
	obj  caller
	who  string
	why  string
	lock *os.File
}

// NewLogind connects a private system bus connection.
func NewLogind(who, why string) (*Logind, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	l := newLogind(conn.Object(logindDest, logindPath), who, why)
	l.conn = conn
	return l, nil
}

func newLogind(obj caller, who, why string) *Logind {
	return &Logind{obj: obj, who: who, why: why}
}

func (l *Logind) Inhibit(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lock != nil {
		return nil
	}

	var fd dbus.UnixFD
	err := l.obj.CallWithContext(ctx, logindManager+".Inhibit", 0, "idle", l.who, l.why, "block").Store(&fd)
	if err != nil {
		return fmt.Errorf("login1.Manager.Inhibit: %w", err)
	}
	if fd < 0 {
		return fmt.Errorf("login1.Manager.Inhibit: invalid file descriptor %d", fd)
	}
	l.lock = os.NewFile(uintptr(fd), "logind-idle-inhibitor")
	return nil
}

func (l *Logind) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lock == nil {
		return nil
	}

	err := l.lock.Close()
	l.lock = nil
	if err != nil {
		return fmt.Errorf("close inhibitor lock: %w", err)
	}
	return nil
}

func (l *Logind) Get(ctx context.Context) (protocol.IdleState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return protocol.IdleState{Inhibited: l.lock != nil}, nil
}

func (l *Logind) Toggle(ctx context.Context) error {
	l.mu.Lock()
	held := l.lock != nil
	l.mu.Unlock()
	if held {
		return l.Release(ctx)
	}
	return l.Inhibit(ctx)
}

// Close drops a held lock and closes the bus connection.
func (l *Logind) Close() error {
	err := l.Release(context.Background())
	if l.conn != nil {
		if cerr := l.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
