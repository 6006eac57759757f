package inhibit

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/d2verb/glue/internal/protocol"
)

const (
	screenSaverDest  = "org.freedesktop.ScreenSaver"
	screenSaverPath  = dbus.ObjectPath("/org/freedesktop/ScreenSaver")
	screenSaverIface = "org.freedesktop.ScreenSaver"
)

// ScreenSaver inhibits idling through org.freedesktop.ScreenSaver.
// The service ties the cookie to the bus connection, so the connection stays
// open while the inhibition is held.
type ScreenSaver struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	obj    caller
	app    string
	reason string
	cookie uint32
	held   bool
}

// NewScreenSaver connects a private session bus connection.
func NewScreenSaver(app, reason string) (*ScreenSaver, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	s := newScreenSaver(conn.Object(screenSaverDest, screenSaverPath), app, reason)
	s.conn = conn
	return s, nil
}

func newScreenSaver(obj caller, app, reason string) *ScreenSaver {
	return &ScreenSaver{obj: obj, app: app, reason: reason}
}

func (s *ScreenSaver) Inhibit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return nil
	}

	var cookie uint32
	err := s.obj.CallWithContext(ctx, screenSaverIface+".Inhibit", 0, s.app, s.reason).Store(&cookie)
	if err != nil {
		return fmt.Errorf("ScreenSaver.Inhibit: %w", err)
	}
	s.cookie = cookie
	s.held = true
	return nil
}

func (s *ScreenSaver) Release(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		return nil
	}

	if err := s.obj.CallWithContext(ctx, screenSaverIface+".UnInhibit", 0, s.cookie).Store(); err != nil {
		return fmt.Errorf("ScreenSaver.UnInhibit(%d): %w", s.cookie, err)
	}
	s.cookie = 0
	s.held = false
	return nil
}

func (s *ScreenSaver) Get(ctx context.Context) (protocol.IdleState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return protocol.IdleState{Inhibited: s.held}, nil
}

func (s *ScreenSaver) Toggle(ctx context.Context) error {
	s.mu.Lock()
	held := s.held
	s.mu.Unlock()
	if held {
		return s.Release(ctx)
	}
	return s.Inhibit(ctx)
}

// Close releases a held cookie and closes the bus connection.
func (s *ScreenSaver) Close() error {
	err := s.Release(context.Background())
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
