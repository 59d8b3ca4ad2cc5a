// Package transition animates the carousel track between slide positions.
//
// The track position is a fractional slide index: 0 shows slide 0 at rest,
// 0.5 is half-way to slide 1. A Scheduler runs at most one flight at a time;
// scheduling a new one supersedes the current flight from wherever the track
// is at that moment, so elapsed transition time is never rewound.
//
// Scheduler is not safe for concurrent use. Its owner serialises calls,
// including the Complete call made from the clock callback.
package transition

import (
	"math"
	"time"

	"github.com/ivlev/carousel/internal/clock"
	"github.com/ivlev/carousel/internal/renderer"
)

// Request describes one transition.
type Request struct {
	From, To int     // logical slide indices
	Target   float64 // track position to settle at
	Speed    time.Duration
}

type flight struct {
	gen     uint64
	req     Request
	fromPos float64
	start   time.Time
	timer   clock.Timer
	fut     *Future
}

type Scheduler struct {
	clock  clock.Clock
	n      int
	loop   bool
	pos    float64
	flight *flight
	gen    uint64
	fire   func(gen uint64)
}

// NewScheduler creates a scheduler for a track of slideCount slides resting
// at start. fire is invoked from the clock when a flight's duration elapses;
// the owner is expected to call Complete with the generation it receives.
func NewScheduler(clk clock.Clock, slideCount int, start float64, fire func(gen uint64)) *Scheduler {
	return &Scheduler{clock: clk, n: slideCount, pos: start, fire: fire}
}

// SetLoop switches wrap-around normalisation of settled positions.
func (s *Scheduler) SetLoop(loop bool) {
	s.loop = loop
	if s.flight == nil {
		s.pos = s.normalize(s.pos)
	}
}

// InFlight reports whether a transition is running.
func (s *Scheduler) InFlight() bool {
	return s.flight != nil
}

// Target is the position the track is heading to, or its rest position.
func (s *Scheduler) Target() float64 {
	if s.flight != nil {
		return s.flight.req.Target
	}
	return s.pos
}

// Position returns the eased track position at now.
func (s *Scheduler) Position(now time.Time) float64 {
	f := s.flight
	if f == nil {
		return s.pos
	}
	if f.req.Speed <= 0 {
		return f.req.Target
	}
	t := float64(now.Sub(f.start)) / float64(f.req.Speed)
	return renderer.Interpolate(f.fromPos, f.req.Target, t)
}

// Schedule starts a transition and returns its future. A flight already in
// progress is interrupted: its future resolves with Interrupted set and the
// new flight starts from the current visual position.
func (s *Scheduler) Schedule(req Request) *Future {
	now := s.clock.Now()
	if s.flight != nil && now.Before(s.flight.start) {
		now = s.flight.start
	}
	from := s.Position(now)
	s.interrupt(now)

	s.gen++
	gen := s.gen
	f := &flight{
		gen:     gen,
		req:     req,
		fromPos: from,
		start:   now,
		fut:     newFuture(),
	}
	s.flight = f
	f.timer = s.clock.AfterFunc(req.Speed, func() { s.fire(gen) })
	return f.fut
}

// Complete settles the flight with generation gen. Stale generations, left
// over from superseded flights, are ignored.
func (s *Scheduler) Complete(gen uint64) (Completion, bool) {
	f := s.flight
	if f == nil || f.gen != gen {
		return Completion{}, false
	}
	s.flight = nil
	s.pos = s.normalize(f.req.Target)
	c := Completion{From: f.req.From, To: f.req.To, At: s.clock.Now()}
	f.fut.resolve(c)
	return c, true
}

// Cancel interrupts the running flight, leaving the track where it is.
func (s *Scheduler) Cancel() (Completion, bool) {
	return s.interrupt(s.clock.Now())
}

// Jump moves the track to pos without animating. A running flight is
// interrupted first.
func (s *Scheduler) Jump(pos float64) (Completion, bool) {
	c, ok := s.interrupt(s.clock.Now())
	s.pos = s.normalize(pos)
	return c, ok
}

func (s *Scheduler) interrupt(now time.Time) (Completion, bool) {
	f := s.flight
	if f == nil {
		return Completion{}, false
	}
	s.pos = s.Position(now)
	s.flight = nil
	if f.timer != nil {
		f.timer.Stop()
	}
	c := Completion{From: f.req.From, To: f.req.To, Interrupted: true, At: now}
	f.fut.resolve(c)
	return c, true
}

func (s *Scheduler) normalize(pos float64) float64 {
	if !s.loop || s.n <= 0 {
		return pos
	}
	n := float64(s.n)
	pos = math.Mod(pos, n)
	if pos < 0 {
		pos += n
	}
	return pos
}
