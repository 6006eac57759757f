package daemon

import (
	"maps"
	"sync"

	"github.com/d2verb/glue/internal/coffee"
	"github.com/d2verb/glue/internal/protocol"
)

// State is the daemon's shared mutable state. Every field is guarded by mu.
// Callers never hold mu across eww, notification or client I/O.
type State struct {
	mu      sync.Mutex
	machine *coffee.Machine
	icons   coffee.Icons
	widgets map[string]string // last published eww value per variable
	seq     uint64            // coffee transitions applied so far
}

// NewState creates the state around machine.
func NewState(machine *coffee.Machine, icons coffee.Icons) *State {
	return &State{
		machine: machine,
		icons:   icons,
		widgets: make(map[string]string),
	}
}

// Coffee runs fn with exclusive access to the coffee machine. The whole
// transition, including the capability calls and arming or cancelling the
// reminder, happens under the lock.
func (s *State) Coffee(fn func(*coffee.Machine) (protocol.IdleState, error)) (protocol.IdleState, error) {
	st, _, err := s.coffee(fn)
	return st, err
}

// coffee is Coffee that also returns the transition's sequence number.
// Numbers start at 1 and grow in the order transitions were applied.
func (s *State) coffee(fn func(*coffee.Machine) (protocol.IdleState, error)) (protocol.IdleState, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := fn(s.machine)
	s.seq++
	return st, s.seq, err
}

// Icons returns the current coffee icons.
func (s *State) Icons() coffee.Icons {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.icons
}

// SetIcons replaces the coffee icons.
func (s *State) SetIcons(icons coffee.Icons) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.icons = icons
}

// remember records value as the latest for name and reports whether it
// differs from the previous one.
func (s *State) remember(name, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.widgets[name]; ok && prev == value {
		return false
	}
	s.widgets[name] = value
	return true
}

// Snapshot returns a copy of the last published value of every variable.
func (s *State) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.widgets)
}

// close drops a pending reminder.
func (s *State) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Close()
}
