package transition

import (
	"context"
	"testing"
	"time"

	"github.com/ivlev/carousel/internal/clock"
)

type harness struct {
	clock *clock.Manual
	s     *Scheduler
	done  []Completion
}

func newHarness(n int, loop bool) *harness {
	h := &harness{clock: clock.NewManual(time.Unix(0, 0))}
	h.s = NewScheduler(h.clock, n, 0, func(gen uint64) {
		if c, ok := h.s.Complete(gen); ok {
			h.done = append(h.done, c)
		}
	})
	h.s.SetLoop(loop)
	return h
}

func TestScheduleCompletes(t *testing.T) {
	h := newHarness(5, false)
	fut := h.s.Schedule(Request{From: 0, To: 1, Target: 1, Speed: 400 * time.Millisecond})

	if _, ok := fut.Result(); ok {
		t.Fatal("future resolved before the transition ran")
	}
	h.clock.Advance(200 * time.Millisecond)
	if pos := h.s.Position(h.clock.Now()); pos != 0.5 {
		t.Errorf("expected track at 0.5 half-way, got %.3f", pos)
	}

	h.clock.Advance(200 * time.Millisecond)
	res, ok := fut.Result()
	if !ok {
		t.Fatal("future did not resolve at the end of the transition")
	}
	if res.Interrupted || res.From != 0 || res.To != 1 {
		t.Errorf("unexpected completion %+v", res)
	}
	if h.s.InFlight() || h.s.Position(h.clock.Now()) != 1 {
		t.Errorf("track should rest at 1")
	}
	if len(h.done) != 1 {
		t.Errorf("expected one completion, got %d", len(h.done))
	}
}

func TestScheduleSupersedesInFlight(t *testing.T) {
	h := newHarness(5, false)
	first := h.s.Schedule(Request{From: 0, To: 2, Target: 2, Speed: 400 * time.Millisecond})

	h.clock.Advance(200 * time.Millisecond)
	mid := h.s.Position(h.clock.Now())
	second := h.s.Schedule(Request{From: 2, To: 3, Target: 3, Speed: 400 * time.Millisecond})

	res, ok := first.Result()
	if !ok || !res.Interrupted {
		t.Fatalf("superseded future should resolve interrupted, got %+v (%v)", res, ok)
	}
	if got := h.s.Position(h.clock.Now()); got != mid {
		t.Errorf("replacement must start from the current position %.3f, got %.3f", mid, got)
	}

	// The first flight's timer would have fired here; it must not settle anything.
	h.clock.Advance(200 * time.Millisecond)
	if _, ok := second.Result(); ok {
		t.Fatal("second flight resolved early")
	}
	if len(h.done) != 0 {
		t.Fatalf("stale timer produced a completion: %+v", h.done)
	}

	h.clock.Advance(200 * time.Millisecond)
	if res, ok := second.Result(); !ok || res.Interrupted {
		t.Errorf("second flight should complete normally, got %+v", res)
	}
	if len(h.done) != 1 {
		t.Errorf("expected exactly one completion, got %d", len(h.done))
	}
}

func TestLoopTargetNormalised(t *testing.T) {
	h := newHarness(3, true)
	h.s.Jump(2)
	h.s.Schedule(Request{From: 2, To: 0, Target: 3, Speed: 100 * time.Millisecond})
	h.clock.Advance(100 * time.Millisecond)

	if pos := h.s.Position(h.clock.Now()); pos != 0 {
		t.Errorf("loop track should settle at 0 after passing the end, got %.2f", pos)
	}
}

func TestCancelResolvesFuture(t *testing.T) {
	h := newHarness(3, false)
	fut := h.s.Schedule(Request{From: 0, To: 1, Target: 1, Speed: time.Second})

	if _, ok := h.s.Cancel(); !ok {
		t.Fatal("Cancel should report the interrupted flight")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := fut.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if !res.Interrupted {
		t.Error("cancelled future should be interrupted")
	}
	if h.clock.Pending() != 0 {
		t.Errorf("cancel should stop the completion timer, %d pending", h.clock.Pending())
	}
	if _, ok := h.s.Cancel(); ok {
		t.Error("second Cancel should be a no-op")
	}
}

func TestZeroSpeedCompletesOnNextTick(t *testing.T) {
	h := newHarness(3, false)
	fut := h.s.Schedule(Request{From: 0, To: 2, Target: 2})
	if pos := h.s.Position(h.clock.Now()); pos != 2 {
		t.Errorf("zero-speed transition should jump to its target, got %.2f", pos)
	}
	h.clock.Advance(0)
	if _, ok := fut.Result(); !ok {
		t.Error("zero-speed transition should complete asynchronously on the next tick")
	}
}
