// Package timer provides a restartable, cancellable delayed callback.
package timer

import (
	"sync"
	"time"
)

// Timer runs a callback once its duration elapses unless cancelled first.
// At most one run is pending at a time: Start replaces any pending run.
//
// Cancel suppresses any run whose callback has not started yet, even when
// the delay has already elapsed. A callback that has begun runs to completion.
type Timer struct {
	duration time.Duration

	mu  sync.Mutex
	run *run // protected by mu
}

// run is one armed period of the timer.
type run struct {
	cancel chan struct{}
	once   sync.Once
	done   chan struct{}
}

func (r *run) stop() {
	r.once.Do(func() { close(r.cancel) })
}

// New creates a stopped timer with the given duration.
func New(d time.Duration) *Timer {
	return &Timer{duration: d}
}

// Duration returns the configured delay.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Start arms the timer. onExpire runs in its own goroutine after the
// duration elapses, unless Cancel or another Start happens first.
func (t *Timer) Start(onExpire func()) {
	r := &run{
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}

	t.mu.Lock()
	if t.run != nil {
		t.run.stop()
	}
	t.run = r
	t.mu.Unlock()

	go func() {
		defer close(r.done)

		tm := time.NewTimer(t.duration)
		defer tm.Stop()

		select {
		case <-tm.C:
			// Only the current run may fire; Cancel and Start detach it under mu.
			t.mu.Lock()
			current := t.run == r
			if current {
				t.run = nil
			}
			t.mu.Unlock()
			if current {
				onExpire()
			}
		case <-r.cancel:
		}
	}()
}

// Cancel suppresses a pending expiry. It is idempotent and safe to call on a
// timer that was never started or has already fired.
func (t *Timer) Cancel() {
	t.mu.Lock()
	r := t.run
	t.run = nil
	t.mu.Unlock()

	if r != nil {
		r.stop()
	}
}

// Pending reports whether a run is armed and has not yet fired or been cancelled.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.run != nil
}

// Done returns a channel closed when the current run finishes, either by
// firing or by being cancelled. It returns a closed channel if nothing is armed.
func (t *Timer) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.run == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return t.run.done
}
