// Package slides holds the slide set and the index arithmetic used for
// navigation: clamping at the edges, wrap-around in loop mode and paging by
// slide group.
package slides

import (
	"fmt"

	"github.com/ivlev/carousel/internal/config"
)

// ID is an opaque slide handle supplied by the host.
type ID string

// Set is an ordered, immutable sequence of slide IDs.
type Set struct {
	ids []ID
}

func NewSet(ids ...ID) Set {
	cp := make([]ID, len(ids))
	copy(cp, ids)
	return Set{ids: cp}
}

// Numbered builds a set of n slides named slide_1 ... slide_n.
func Numbered(n int) Set {
	ids := make([]ID, n)
	for i := range ids {
		ids[i] = ID(fmt.Sprintf("slide_%d", i+1))
	}
	return Set{ids: ids}
}

func (s Set) Len() int {
	return len(s.ids)
}

func (s Set) At(i int) ID {
	return s.ids[i]
}

func (s Set) IDs() []ID {
	cp := make([]ID, len(s.ids))
	copy(cp, s.ids)
	return cp
}

// Index returns the position of id, or -1.
func (s Set) Index(id ID) int {
	for i, cur := range s.ids {
		if cur == id {
			return i
		}
	}
	return -1
}

// State is the navigation state of one engine.
type State struct {
	ActiveIndex    int
	Transitioning  bool
	AutoplayPaused bool
}

// Step is the outcome of a navigation request.
type Step struct {
	Index int
	// Boundary is set when a non-looping carousel was asked to move past
	// its first or last slide. Index is then the current index.
	Boundary bool
}

// GroupSize is the number of slides next/prev move by.
func GroupSize(cfg config.Config) int {
	if cfg.SlidesPerGroup < 1 {
		return 1
	}
	return cfg.SlidesPerGroup
}

// Advance moves the active index by `by` slides. In loop mode the result
// wraps modulo n; otherwise it is clamped to [0, n-1] and a request that
// cannot move at all reports a boundary.
func Advance(by int, cur State, n int, cfg config.Config) Step {
	if n <= 0 {
		return Step{Index: 0, Boundary: true}
	}
	if cfg.Loop {
		return Step{Index: Wrap(cur.ActiveIndex+by, n)}
	}
	target := clamp(cur.ActiveIndex+by, n)
	if target == cur.ActiveIndex && by != 0 {
		return Step{Index: cur.ActiveIndex, Boundary: true}
	}
	return Step{Index: target}
}

// Locate resolves an absolute goTo request.
func Locate(index int, cur State, n int, cfg config.Config) Step {
	if n <= 0 {
		return Step{Index: 0, Boundary: true}
	}
	if cfg.Loop {
		return Step{Index: Wrap(index, n)}
	}
	target := clamp(index, n)
	if target != index && target == cur.ActiveIndex {
		return Step{Index: cur.ActiveIndex, Boundary: true}
	}
	return Step{Index: target}
}

// Wrap maps any integer into [0, n).
func Wrap(i, n int) int {
	return ((i % n) + n) % n
}

// ShortestDelta returns the signed distance from `from` to `to` on a ring of
// n slides, preferring forward travel on ties.
func ShortestDelta(from, to, n int) int {
	d := Wrap(to-from, n)
	if d > n/2 {
		d -= n
	}
	return d
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
