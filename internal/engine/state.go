package engine

import (
	"fmt"

	"github.com/ivlev/carousel/internal/autoplay"
	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/slides"
)

// SetViewport records a new host size. The effective configuration is only
// re-resolved when the viewport crosses into a different breakpoint.
func (e *Engine) SetViewport(vp renderer.Viewport) error {
	if vp.Width < 0 || vp.Height < 0 {
		return fmt.Errorf("%w: negative viewport %dx%d", ErrInvalidConfiguration, vp.Width, vp.Height)
	}

	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return ErrEngineDestroyed
	}
	e.viewport = vp

	bp, has := config.ActiveBreakpoint(e.base.Breakpoints, vp.Width)
	if bp == e.bp && has == e.hasBP {
		e.mu.Unlock()
		return nil
	}
	e.bp, e.hasBP = bp, has
	e.applyConfigLocked(config.Resolve(e.base, e.base.Breakpoints, vp.Width))
	e.queueBreakpointLocked(BreakpointChange{MinWidth: bp, Active: has, Config: e.cfg})
	e.mu.Unlock()

	e.flush()
	return nil
}

func (e *Engine) applyConfigLocked(next config.Config) {
	prev := e.cfg
	e.cfg = next
	e.logger.Printf("[*] breakpoint switch: spv %s, group %d, loop %v, effect %s",
		next.SlidesPerView, next.SlidesPerGroup, next.Loop, next.Effect)

	if prev.Loop != next.Loop {
		// Loop and non-loop tracks use different coordinates; settle the
		// running flight at its logical target before switching.
		if _, ok := e.sched.Jump(float64(e.state.ActiveIndex)); ok {
			e.queueChangeLocked(Change{Active: e.state.ActiveIndex, Previous: e.settled, Interrupted: true})
			e.settled = e.state.ActiveIndex
			e.state.Transitioning = false
			e.inflight = nil
			e.auto.Rearm()
		}
		e.sched.SetLoop(next.Loop)
	}

	switch {
	case !next.AutoplayEnabled():
		e.auto.Reset()
		e.state.AutoplayPaused = false
	case e.auto.State() == autoplay.Stopped:
	case e.auto.State() == autoplay.Idle:
		_ = e.auto.Start(next.AutoplayDelay)
	case next.AutoplayDelay != e.auto.Delay():
		paused := e.auto.State() == autoplay.Paused
		_ = e.auto.Start(next.AutoplayDelay)
		if paused {
			e.auto.Pause()
		}
	}
}

// State returns a snapshot of the navigation state.
func (e *Engine) State() (slides.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return slides.State{}, ErrEngineDestroyed
	}
	return e.state, nil
}

// Config returns the effective configuration for the current viewport.
func (e *Engine) Config() (config.Config, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return config.Config{}, ErrEngineDestroyed
	}
	return e.cfg, nil
}

func (e *Engine) Slides() slides.Set {
	return e.set
}

// Frames lays out every slide at the current track position.
func (e *Engine) Frames() ([]renderer.SlideFrame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return nil, ErrEngineDestroyed
	}
	pos := e.sched.Position(e.clock.Now())
	return renderer.Layout(e.set, pos, e.cfg, e.viewport, e.sizeOf)
}

// Position is the fractional track position at the current time.
func (e *Engine) Position() (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return 0, ErrEngineDestroyed
	}
	return e.sched.Position(e.clock.Now()), nil
}

func (e *Engine) PauseAutoplay() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return ErrEngineDestroyed
	}
	e.auto.Pause()
	e.state.AutoplayPaused = e.auto.State() == autoplay.Paused
	return nil
}

func (e *Engine) ResumeAutoplay() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return ErrEngineDestroyed
	}
	e.auto.Resume()
	e.state.AutoplayPaused = e.auto.State() == autoplay.Paused
	return nil
}

// StopAutoplay stops autoplay for the lifetime of the engine.
func (e *Engine) StopAutoplay() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return ErrEngineDestroyed
	}
	e.auto.Stop()
	e.state.AutoplayPaused = false
	return nil
}

// AutoplayState reports the autoplay timer state.
func (e *Engine) AutoplayState() (autoplay.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return autoplay.Stopped, ErrEngineDestroyed
	}
	return e.auto.State(), nil
}
