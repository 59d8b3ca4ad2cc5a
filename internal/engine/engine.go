// Package engine composes breakpoint resolution, slide index arithmetic, the
// transition scheduler and the autoplay timer into one carousel instance.
//
// Every Engine owns its navigation state; there is no registry of carousels.
// All operations and clock callbacks are serialised by the engine's mutex.
// Observers run outside the lock, in the order changes were produced.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/ivlev/carousel/internal/autoplay"
	"github.com/ivlev/carousel/internal/clock"
	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/slides"
	"github.com/ivlev/carousel/internal/transition"
)

var (
	ErrInvalidConfiguration = config.ErrInvalidConfiguration
	ErrEngineDestroyed      = errors.New("engine destroyed")
)

// Change is delivered to observers once per completed or interrupted
// transition, and once per navigation request rejected at the edge of a
// non-looping carousel (Boundary set, Active == Previous).
type Change struct {
	Active      int
	Previous    int
	Interrupted bool
	Boundary    bool
}

type Observer func(Change)

// BreakpointChange is delivered when the viewport crosses a breakpoint.
type BreakpointChange struct {
	MinWidth int
	Active   bool // false when no breakpoint applies any more
	Config   config.Config
}

type BreakpointObserver func(BreakpointChange)

type Options struct {
	// Clock defaults to the real clock.
	Clock    clock.Clock
	Viewport renderer.Viewport
	// SlideSize is consulted for slidesPerView "auto".
	SlideSize renderer.SizeFunc
	// Logger receives diagnostics; nil keeps the engine silent.
	Logger *log.Logger
}

type observerEntry struct {
	id int
	fn Observer
}

type bpObserverEntry struct {
	id int
	fn BreakpointObserver
}

type navKind int

const (
	navNext navKind = iota
	navPrev
	navGoTo
)

type Engine struct {
	mu sync.Mutex

	clock  clock.Clock
	logger *log.Logger
	sizeOf renderer.SizeFunc

	base     config.Config
	cfg      config.Config
	bp       int
	hasBP    bool
	viewport renderer.Viewport

	set      slides.Set
	state    slides.State
	settled  int
	inflight *transition.Future

	sched *transition.Scheduler
	auto  *autoplay.Timer

	observers   []observerEntry
	bpObservers []bpObserverEntry
	nextID      int

	outbox    []func()
	flushing  bool
	destroyed bool
}

// Create validates cfg against the slide set and returns a running engine.
// Autoplay starts immediately when the effective configuration enables it.
func Create(cfg config.Config, set slides.Set, opts Options) (*Engine, error) {
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: slide set is empty", ErrInvalidConfiguration)
	}
	if err := config.Validate(cfg, set.Len()); err != nil {
		return nil, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	e := &Engine{
		clock:    clk,
		logger:   logger,
		sizeOf:   opts.SlideSize,
		base:     cfg,
		viewport: opts.Viewport,
		set:      set,
		state:    slides.State{ActiveIndex: cfg.InitialSlide},
		settled:  cfg.InitialSlide,
	}
	e.bp, e.hasBP = config.ActiveBreakpoint(cfg.Breakpoints, opts.Viewport.Width)
	e.cfg = config.Resolve(cfg, cfg.Breakpoints, opts.Viewport.Width)

	e.sched = transition.NewScheduler(clk, set.Len(), float64(cfg.InitialSlide), e.onTransitionEnd)
	e.sched.SetLoop(e.cfg.Loop)
	e.auto = autoplay.New(clk, e.onAutoplayTick)
	if e.cfg.AutoplayEnabled() {
		if err := e.auto.Start(e.cfg.AutoplayDelay); err != nil {
			return nil, err
		}
	}

	e.logger.Printf("[*] carousel created: %d slides, effect %s, loop %v, viewport %dx%d",
		set.Len(), e.cfg.Effect, e.cfg.Loop, opts.Viewport.Width, opts.Viewport.Height)
	return e, nil
}

// Next moves forward by one slide group.
func (e *Engine) Next() (*transition.Future, error) {
	return e.navigate(navNext, 0)
}

// Prev moves back by one slide group.
func (e *Engine) Prev() (*transition.Future, error) {
	return e.navigate(navPrev, 0)
}

// GoTo moves to index. Loop mode wraps the index; otherwise it is clamped.
func (e *Engine) GoTo(index int) (*transition.Future, error) {
	return e.navigate(navGoTo, index)
}

func (e *Engine) navigate(kind navKind, index int) (*transition.Future, error) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return nil, ErrEngineDestroyed
	}
	if e.cfg.AutoplayDisableOnInteraction && e.auto.State() != autoplay.Stopped && e.auto.State() != autoplay.Idle {
		e.auto.Stop()
		e.state.AutoplayPaused = false
		e.logger.Printf("[*] autoplay disabled after user interaction")
	}
	fut, _ := e.moveLocked(kind, index)
	e.mu.Unlock()

	e.flush()
	return fut, nil
}

// moveLocked applies one navigation request. It reports whether a new
// transition was scheduled.
func (e *Engine) moveLocked(kind navKind, index int) (*transition.Future, bool) {
	n := e.set.Len()
	cur := e.state.ActiveIndex
	group := slides.GroupSize(e.cfg)

	var step slides.Step
	var delta int
	switch kind {
	case navNext:
		step = slides.Advance(group, e.state, n, e.cfg)
		delta = group
	case navPrev:
		step = slides.Advance(-group, e.state, n, e.cfg)
		delta = -group
	default:
		step = slides.Locate(index, e.state, n, e.cfg)
		delta = slides.ShortestDelta(cur, step.Index, n)
	}

	if step.Boundary {
		e.logger.Printf("[*] boundary reached at slide %d", cur)
		e.queueChangeLocked(Change{Active: cur, Previous: cur, Boundary: true})
		return transition.Resolved(transition.Completion{
			From: cur, To: cur, Boundary: true, At: e.clock.Now(),
		}), false
	}
	if step.Index == cur {
		if e.inflight != nil {
			return e.inflight, false
		}
		return transition.Resolved(transition.Completion{From: cur, To: cur, At: e.clock.Now()}), false
	}

	target := float64(step.Index)
	if e.cfg.Loop {
		target = e.sched.Target() + float64(delta)
	}

	fut := e.sched.Schedule(transition.Request{
		From:   cur,
		To:     step.Index,
		Target: target,
		Speed:  e.cfg.Speed,
	})
	e.state.ActiveIndex = step.Index
	e.state.Transitioning = true
	e.inflight = fut
	e.auto.Hold()
	return fut, true
}

func (e *Engine) onTransitionEnd(gen uint64) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	if _, ok := e.sched.Complete(gen); !ok {
		e.mu.Unlock()
		return
	}
	e.queueChangeLocked(Change{Active: e.state.ActiveIndex, Previous: e.settled})
	e.settled = e.state.ActiveIndex
	e.state.Transitioning = false
	e.inflight = nil
	e.auto.Rearm()
	e.mu.Unlock()

	e.flush()
}

func (e *Engine) onAutoplayTick(gen uint64) {
	e.mu.Lock()
	if e.destroyed || !e.auto.Fired(gen) {
		e.mu.Unlock()
		return
	}

	kind := navNext
	by := slides.GroupSize(e.cfg)
	rewindTo := 0
	if e.cfg.AutoplayReverse {
		kind = navPrev
		by = -by
		rewindTo = e.set.Len() - 1
	}

	started := false
	if step := slides.Advance(by, e.state, e.set.Len(), e.cfg); step.Boundary {
		if e.cfg.AutoplayStopOnLastSlide {
			e.auto.Stop()
			e.logger.Printf("[*] autoplay stopped on slide %d", e.state.ActiveIndex)
			e.mu.Unlock()
			return
		}
		_, started = e.moveLocked(navGoTo, rewindTo)
	} else {
		_, started = e.moveLocked(kind, 0)
	}
	if !started {
		e.auto.Rearm()
	}
	e.mu.Unlock()

	e.flush()
}

// OnChange registers an observer. The returned function unregisters it.
func (e *Engine) OnChange(o Observer) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return nil, ErrEngineDestroyed
	}
	e.nextID++
	id := e.nextID
	next := make([]observerEntry, len(e.observers), len(e.observers)+1)
	copy(next, e.observers)
	e.observers = append(next, observerEntry{id: id, fn: o})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		kept := make([]observerEntry, 0, len(e.observers))
		for _, entry := range e.observers {
			if entry.id != id {
				kept = append(kept, entry)
			}
		}
		e.observers = kept
	}, nil
}

// OnBreakpoint registers an observer for breakpoint switches.
func (e *Engine) OnBreakpoint(o BreakpointObserver) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return nil, ErrEngineDestroyed
	}
	e.nextID++
	id := e.nextID
	next := make([]bpObserverEntry, len(e.bpObservers), len(e.bpObservers)+1)
	copy(next, e.bpObservers)
	e.bpObservers = append(next, bpObserverEntry{id: id, fn: o})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		kept := make([]bpObserverEntry, 0, len(e.bpObservers))
		for _, entry := range e.bpObservers {
			if entry.id != id {
				kept = append(kept, entry)
			}
		}
		e.bpObservers = kept
	}, nil
}

// Destroy stops autoplay, interrupts a running transition and releases all
// observers. Observers hear about the interrupted transition before they
// are released. Calling Destroy again does nothing.
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.auto.Stop()
	if _, ok := e.sched.Cancel(); ok {
		e.queueChangeLocked(Change{Active: e.state.ActiveIndex, Previous: e.settled, Interrupted: true})
	}
	e.destroyed = true
	e.state.Transitioning = false
	e.inflight = nil
	e.observers = nil
	e.bpObservers = nil
	e.mu.Unlock()

	e.flush()
	e.logger.Printf("[*] carousel destroyed")
}

// queueChangeLocked snapshots the current observers so a change is
// delivered to whoever was registered when it happened.
func (e *Engine) queueChangeLocked(c Change) {
	obs := e.observers
	e.outbox = append(e.outbox, func() {
		for _, o := range obs {
			o.fn(c)
		}
	})
}

func (e *Engine) queueBreakpointLocked(c BreakpointChange) {
	obs := e.bpObservers
	e.outbox = append(e.outbox, func() {
		for _, o := range obs {
			o.fn(c)
		}
	})
}

// flush delivers queued notifications outside the lock. Only one goroutine
// flushes at a time; notifications queued meanwhile, including by observers
// themselves, are picked up by the active flusher in order.
func (e *Engine) flush() {
	e.mu.Lock()
	if e.flushing {
		e.mu.Unlock()
		return
	}
	e.flushing = true
	for len(e.outbox) > 0 {
		batch := e.outbox
		e.outbox = nil
		e.mu.Unlock()
		for _, deliver := range batch {
			deliver()
		}
		e.mu.Lock()
	}
	e.flushing = false
	e.mu.Unlock()
}
