// Package coffee implements the idle-inhibit ("coffee") state machine.
package coffee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/d2verb/glue/internal/protocol"
	"github.com/d2verb/glue/internal/timer"
)

// Inhibitor acquires and releases the system idle inhibition.
type Inhibitor interface {
	Inhibit(ctx context.Context) error
	Release(ctx context.Context) error
	Get(ctx context.Context) (protocol.IdleState, error)
	Toggle(ctx context.Context) error
}

// Notifier shows desktop notifications.
type Notifier interface {
	Show(ctx context.Context, summary, body string) error
}

// Op names a capability operation.
type Op string

const (
	OpInhibit Op = "inhibit"
	OpRelease Op = "release"
	OpGet     Op = "get"
)

// CapabilityError indicates the idle-inhibit capability failed.
type CapabilityError struct {
	Op  Op
	Err error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("idle inhibitor %s: %v", e.Op, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// IsCapabilityError reports whether err came from the idle-inhibit capability.
func IsCapabilityError(err error) bool {
	var ce *CapabilityError
	return errors.As(err, &ce)
}

// StatusUnknown reports whether err includes a failure to read the live
// status, in which case the returned IdleState carries no information.
func StatusUnknown(err error) bool {
	var ce *CapabilityError
	if errors.As(err, &ce) && ce.Op == OpGet {
		return true
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if StatusUnknown(e) {
				return true
			}
		}
	}
	return false
}

// reminderTimeout bounds how long a reminder notification may take to send.
const reminderTimeout = 10 * time.Second

// Machine tracks idle inhibition and arms the reminder notification.
//
// Machine is not safe for concurrent use. The daemon serializes every call
// through its state lock, so a transition (read status, call the capability,
// arm or cancel the reminder) is atomic with respect to other requests.
type Machine struct {
	inhibitor Inhibitor
	notifier  Notifier
	reminder  *timer.Timer // nil when no reminder delay is configured
	logger    *slog.Logger
}

// NewMachine creates a machine. A zero reminder disables the reminder
// notification.
func NewMachine(inhibitor Inhibitor, notifier Notifier, reminder time.Duration, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Machine{
		inhibitor: inhibitor,
		notifier:  notifier,
		logger:    logger,
	}
	if reminder > 0 {
		m.reminder = timer.New(reminder)
	}
	return m
}

// Drink inhibits idling. Drinking while already inhibited is a no-op: no
// capability call is made and the armed reminder is kept.
func (m *Machine) Drink(ctx context.Context) (protocol.IdleState, error) {
	state, err := m.status(ctx)
	if err != nil {
		return state, err
	}
	return m.drink(ctx, state)
}

// Relax releases the inhibition and cancels the reminder. It is idempotent.
func (m *Machine) Relax(ctx context.Context) (protocol.IdleState, error) {
	if err := m.inhibitor.Release(ctx); err != nil {
		return m.readBack(ctx, &CapabilityError{Op: OpRelease, Err: err})
	}
	if m.reminder != nil {
		m.reminder.Cancel()
	}
	m.logger.Info("idle inhibitor released")
	return m.status(ctx)
}

// Toggle drinks when not inhibited and relaxes otherwise.
func (m *Machine) Toggle(ctx context.Context) (protocol.IdleState, error) {
	state, err := m.status(ctx)
	if err != nil {
		return state, err
	}
	if state.Inhibited {
		return m.Relax(ctx)
	}
	return m.drink(ctx, state)
}

// Get reports the live status without changing it.
func (m *Machine) Get(ctx context.Context) (protocol.IdleState, error) {
	return m.status(ctx)
}

// Apply dispatches a coffee action.
func (m *Machine) Apply(ctx context.Context, action protocol.CoffeeAction) (protocol.IdleState, error) {
	switch action {
	case protocol.CoffeeDrink:
		return m.Drink(ctx)
	case protocol.CoffeeRelax:
		return m.Relax(ctx)
	case protocol.CoffeeToggle:
		return m.Toggle(ctx)
	case protocol.CoffeeGet:
		return m.Get(ctx)
	default:
		return protocol.IdleState{}, fmt.Errorf("unknown coffee action %v", action)
	}
}

// Reminding reports whether a reminder notification is armed.
func (m *Machine) Reminding() bool {
	return m.reminder != nil && m.reminder.Pending()
}

// Close cancels a pending reminder.
func (m *Machine) Close() {
	if m.reminder != nil {
		m.reminder.Cancel()
	}
}

func (m *Machine) drink(ctx context.Context, current protocol.IdleState) (protocol.IdleState, error) {
	if current.Inhibited {
		return current, nil
	}
	if err := m.inhibitor.Inhibit(ctx); err != nil {
		return m.readBack(ctx, &CapabilityError{Op: OpInhibit, Err: err})
	}
	m.logger.Info("idle inhibitor acquired")
	if m.reminder != nil {
		m.reminder.Start(m.remind)
		m.logger.Debug("reminder armed", "after", m.reminder.Duration())
	}
	return m.status(ctx)
}

func (m *Machine) remind() {
	d := m.reminder.Duration()
	m.logger.Info("coffee reminder fired", "after", d)
	if m.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
	defer cancel()
	body := fmt.Sprintf("The system has been caffeinated for %s", d)
	if err := m.notifier.Show(ctx, "Coffee still required?", body); err != nil {
		m.logger.Warn("coffee reminder notification failed", "error", err)
	}
}

func (m *Machine) status(ctx context.Context) (protocol.IdleState, error) {
	state, err := m.inhibitor.Get(ctx)
	if err != nil {
		return protocol.IdleState{}, &CapabilityError{Op: OpGet, Err: err}
	}
	return state, nil
}

// readBack reports the capability's status after a failed transition,
// keeping the original failure as the error.
func (m *Machine) readBack(ctx context.Context, cause error) (protocol.IdleState, error) {
	state, err := m.status(ctx)
	if err != nil {
		return state, errors.Join(cause, err)
	}
	return state, cause
}
