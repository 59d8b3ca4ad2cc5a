// Package autoplay implements the periodic "advance" timer of a carousel.
//
// State machine: Idle -> Running <-> Paused, any -> Stopped (terminal).
// Ticks are measured from the end of the previous transition: the owner
// calls Hold when a transition starts and Rearm when it completes.
//
// Timer is not safe for concurrent use; the owner serialises calls.
package autoplay

import (
	"errors"
	"fmt"
	"time"

	"github.com/ivlev/carousel/internal/clock"
)

type State int

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrStopped is returned by Start once the timer has been stopped.
var ErrStopped = errors.New("autoplay: timer stopped")

type Timer struct {
	clock clock.Clock
	fire  func(gen uint64)

	state     State
	delay     time.Duration
	held      bool
	pending   clock.Timer
	deadline  time.Time
	remaining time.Duration
	gen       uint64
}

// New creates an idle timer. fire is called from the clock with the tick
// generation; the owner passes it back to Fired to drop stale ticks.
func New(clk clock.Clock, fire func(gen uint64)) *Timer {
	return &Timer{clock: clk, fire: fire}
}

func (t *Timer) State() State {
	return t.state
}

func (t *Timer) Delay() time.Duration {
	return t.delay
}

// Start runs the timer with the given delay. Starting a running timer
// resets its countdown to the full new delay.
func (t *Timer) Start(delay time.Duration) error {
	if t.state == Stopped {
		return ErrStopped
	}
	if delay <= 0 {
		return fmt.Errorf("autoplay: delay must be positive, got %v", delay)
	}
	t.delay = delay
	t.state = Running
	t.remaining = 0
	if !t.held {
		t.arm(delay)
	}
	return nil
}

// Pause suspends ticking and remembers the time left. Pausing a timer that
// is not running does nothing.
func (t *Timer) Pause() {
	if t.state != Running {
		return
	}
	t.remaining = t.delay
	if t.pending != nil {
		t.remaining = t.deadline.Sub(t.clock.Now())
		if t.remaining < 0 {
			t.remaining = 0
		}
	}
	t.disarm()
	t.state = Paused
}

// Resume continues a paused timer with the time that was left.
func (t *Timer) Resume() {
	if t.state != Paused {
		return
	}
	t.state = Running
	if !t.held {
		d := t.remaining
		if d <= 0 {
			d = t.delay
		}
		t.arm(d)
	}
	t.remaining = 0
}

// Stop cancels any pending tick for good.
func (t *Timer) Stop() {
	t.disarm()
	t.state = Stopped
}

// Reset returns a running or paused timer to Idle, for configurations that
// switch autoplay off. A stopped timer stays stopped.
func (t *Timer) Reset() {
	if t.state == Stopped {
		return
	}
	t.disarm()
	t.state = Idle
	t.remaining = 0
}

// Hold cancels the pending tick while a transition is running.
func (t *Timer) Hold() {
	t.held = true
	if t.state == Running {
		t.disarm()
	}
}

// Rearm releases a Hold and, if running, schedules the next tick a full
// delay from now.
func (t *Timer) Rearm() {
	t.held = false
	if t.state == Running {
		t.arm(t.delay)
	}
}

// Fired validates a tick delivered by the clock. It reports false for ticks
// that were cancelled after the clock had already dispatched them.
func (t *Timer) Fired(gen uint64) bool {
	if gen != t.gen || t.state != Running || t.held {
		return false
	}
	t.pending = nil
	return true
}

func (t *Timer) arm(d time.Duration) {
	t.disarm()
	gen := t.gen
	t.deadline = t.clock.Now().Add(d)
	t.pending = t.clock.AfterFunc(d, func() { t.fire(gen) })
}

func (t *Timer) disarm() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.gen++
}
