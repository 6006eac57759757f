// Package coffeetest provides in-memory capabilities for tests.
package coffeetest

import (
	"context"
	"sync"

	"github.com/d2verb/glue/internal/protocol"
)

// Inhibitor is an in-memory idle inhibitor that counts calls.
type Inhibitor struct {
	mu        sync.Mutex
	inhibited bool

	Inhibits int
	Releases int
	Gets     int

	// InhibitErr, ReleaseErr and GetErr, when set, are returned by the
	// corresponding call without changing state.
	InhibitErr error
	ReleaseErr error
	GetErr     error
}

func (f *Inhibitor) Inhibit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inhibits++
	if f.InhibitErr != nil {
		return f.InhibitErr
	}
	f.inhibited = true
	return nil
}

func (f *Inhibitor) Release(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Releases++
	if f.ReleaseErr != nil {
		return f.ReleaseErr
	}
	f.inhibited = false
	return nil
}

func (f *Inhibitor) Get(ctx context.Context) (protocol.IdleState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Gets++
	if f.GetErr != nil {
		return protocol.IdleState{}, f.GetErr
	}
	return protocol.IdleState{Inhibited: f.inhibited}, nil
}

func (f *Inhibitor) Toggle(ctx context.Context) error {
	f.mu.Lock()
	inhibited := f.inhibited
	f.mu.Unlock()
	if inhibited {
		return f.Release(ctx)
	}
	return f.Inhibit(ctx)
}

// Counts returns the inhibit and release call counts.
func (f *Inhibitor) Counts() (inhibits, releases int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Inhibits, f.Releases
}

// SetErrors replaces the injected errors.
func (f *Inhibitor) SetErrors(inhibit, release, get error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InhibitErr, f.ReleaseErr, f.GetErr = inhibit, release, get
}

// Notification is one recorded notification.
type Notification struct {
	Summary string
	Body    string
}

// Notifier records notifications.
type Notifier struct {
	mu    sync.Mutex
	shown []Notification
	Err   error
}

func (n *Notifier) Show(ctx context.Context, summary, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.shown = append(n.shown, Notification{Summary: summary, Body: body})
	return nil
}

// Shown returns a copy of the recorded notifications.
func (n *Notifier) Shown() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.shown...)
}
