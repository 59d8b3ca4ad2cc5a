package transition

import (
	"context"
	"sync"
	"time"
)

// Completion is the outcome of one scheduled transition.
type Completion struct {
	From, To    int
	Interrupted bool
	// Boundary is set for requests that hit the edge of a non-looping
	// carousel; no transition ran.
	Boundary bool
	At       time.Time
}

// Future resolves exactly once, either when its transition completes or
// when it is interrupted.
type Future struct {
	once sync.Once
	done chan struct{}
	res  Completion
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future that already carries c.
func Resolved(c Completion) *Future {
	f := newFuture()
	f.resolve(c)
	return f
}

func (f *Future) resolve(c Completion) bool {
	resolved := false
	f.once.Do(func() {
		f.res = c
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the future has resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the completion and true if the future has resolved.
func (f *Future) Result() (Completion, bool) {
	select {
	case <-f.done:
		return f.res, true
	default:
		return Completion{}, false
	}
}

// Wait blocks until the future resolves or ctx is done.
func (f *Future) Wait(ctx context.Context) (Completion, error) {
	select {
	case <-f.done:
		return f.res, nil
	case <-ctx.Done():
		return Completion{}, ctx.Err()
	}
}
