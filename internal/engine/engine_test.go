package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ivlev/carousel/internal/autoplay"
	"github.com/ivlev/carousel/internal/clock"
	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/slides"
)

var epoch = time.Unix(0, 0)

type fixture struct {
	clock   *clock.Manual
	engine  *Engine
	changes []Change
	at      []time.Duration
}

func newFixture(t *testing.T, cfg config.Config, n int) *fixture {
	t.Helper()
	f := &fixture{clock: clock.NewManual(epoch)}
	e, err := Create(cfg, slides.Numbered(n), Options{
		Clock:    f.clock,
		Viewport: renderer.Viewport{Width: 1000, Height: 500},
	})
	require.NoError(t, err)
	_, err = e.OnChange(func(c Change) {
		f.changes = append(f.changes, c)
		f.at = append(f.at, f.clock.Now().Sub(epoch))
	})
	require.NoError(t, err)
	f.engine = e
	return f
}

func baseConfig() config.Config {
	cfg := config.Default()
	cfg.Speed = 400 * time.Millisecond
	return cfg
}

func TestCreateRejectsInvalidConfiguration(t *testing.T) {
	_, err := Create(baseConfig(), slides.NewSet(), Options{})
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	cfg := baseConfig()
	cfg.SlidesPerGroup = 0
	_, err = Create(cfg, slides.Numbered(3), Options{})
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	cfg = baseConfig()
	cfg.InitialSlide = 3
	_, err = Create(cfg, slides.Numbered(3), Options{})
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestNextCompletesWithOneChange(t *testing.T) {
	f := newFixture(t, baseConfig(), 5)

	fut, err := f.engine.Next()
	require.NoError(t, err)
	st, _ := f.engine.State()
	require.Equal(t, 1, st.ActiveIndex)
	require.True(t, st.Transitioning)
	require.Empty(t, f.changes, "observers fire on completion, not on request")

	f.clock.Advance(400 * time.Millisecond)
	res, ok := fut.Result()
	require.True(t, ok)
	require.False(t, res.Interrupted)
	require.Equal(t, []Change{{Active: 1, Previous: 0}}, f.changes)

	st, _ = f.engine.State()
	require.False(t, st.Transitioning)
}

func TestRapidRequestsCoalesce(t *testing.T) {
	f := newFixture(t, baseConfig(), 5)

	first, err := f.engine.Next()
	require.NoError(t, err)
	f.clock.Advance(100 * time.Millisecond)
	second, err := f.engine.Next()
	require.NoError(t, err)

	res, ok := first.Result()
	require.True(t, ok, "superseded future must not be left pending")
	require.True(t, res.Interrupted)

	f.clock.Advance(time.Second)
	require.Equal(t, []Change{{Active: 2, Previous: 0}}, f.changes)
	res, ok = second.Result()
	require.True(t, ok)
	require.False(t, res.Interrupted)
	require.Equal(t, 2, res.To)
}

func TestNextThenPrevSettlesOnce(t *testing.T) {
	f := newFixture(t, baseConfig(), 5)

	f.engine.Next()
	f.clock.Advance(50 * time.Millisecond)
	f.engine.Prev()
	f.clock.Advance(time.Second)

	require.Len(t, f.changes, 1)
	require.Equal(t, 0, f.changes[0].Active)
	require.False(t, f.changes[0].Boundary)
	pos, err := f.engine.Position()
	require.NoError(t, err)
	require.Equal(t, 0.0, pos)
}

func TestBoundaryReachedWithoutLoop(t *testing.T) {
	f := newFixture(t, baseConfig(), 3)

	fut, err := f.engine.Prev()
	require.NoError(t, err)
	res, ok := fut.Result()
	require.True(t, ok)
	require.True(t, res.Boundary)
	require.Equal(t, []Change{{Active: 0, Previous: 0, Boundary: true}}, f.changes)
	require.Equal(t, 0, f.clock.Pending(), "boundary must not start a transition")

	f.engine.GoTo(2)
	f.clock.Advance(time.Second)
	f.changes = nil
	f.engine.Next()
	require.Equal(t, []Change{{Active: 2, Previous: 2, Boundary: true}}, f.changes)
}

func TestGoToClampsWithoutLoop(t *testing.T) {
	f := newFixture(t, baseConfig(), 4)

	f.engine.GoTo(10)
	f.clock.Advance(time.Second)
	st, _ := f.engine.State()
	require.Equal(t, 3, st.ActiveIndex)
}

func TestLoopWrapsBothWays(t *testing.T) {
	cfg := baseConfig()
	cfg.Loop = true
	f := newFixture(t, cfg, 3)

	f.engine.Prev()
	f.clock.Advance(time.Second)
	require.Equal(t, []Change{{Active: 2, Previous: 0}}, f.changes)
	pos, _ := f.engine.Position()
	require.Equal(t, 2.0, pos)

	f.engine.Next()
	f.clock.Advance(time.Second)
	require.Equal(t, Change{Active: 0, Previous: 2}, f.changes[1])
	pos, _ = f.engine.Position()
	require.Equal(t, 0.0, pos)
}

func TestSlidesPerGroupPaging(t *testing.T) {
	cfg := baseConfig()
	cfg.SlidesPerGroup = 2
	f := newFixture(t, cfg, 5)

	f.engine.Next()
	f.clock.Advance(time.Second)
	f.engine.Next()
	f.clock.Advance(time.Second)
	f.engine.Next()
	f.clock.Advance(time.Second)

	require.Equal(t, []Change{
		{Active: 2, Previous: 0},
		{Active: 4, Previous: 2},
		{Active: 4, Previous: 4, Boundary: true},
	}, f.changes)
}

func TestAutoplayMeasuredFromTransitionEnd(t *testing.T) {
	cfg := baseConfig()
	cfg.Loop = true
	cfg.AutoplayDelay = 5000 * time.Millisecond
	f := newFixture(t, cfg, 4)

	f.clock.Advance(30 * time.Second)

	require.GreaterOrEqual(t, len(f.at), 4)
	require.Equal(t, 5400*time.Millisecond, f.at[0])
	for i := 1; i < len(f.at); i++ {
		require.GreaterOrEqual(t, f.at[i]-f.at[i-1], 5000*time.Millisecond)
	}
}

func TestAutoplayRewindsWithoutLoop(t *testing.T) {
	cfg := baseConfig()
	cfg.Speed = 100 * time.Millisecond
	cfg.AutoplayDelay = time.Second
	f := newFixture(t, cfg, 3)

	f.clock.Advance(3300 * time.Millisecond)
	require.Equal(t, []Change{
		{Active: 1, Previous: 0},
		{Active: 2, Previous: 1},
		{Active: 0, Previous: 2},
	}, f.changes)
}

func TestAutoplayStopsOnLastSlide(t *testing.T) {
	cfg := baseConfig()
	cfg.Speed = 100 * time.Millisecond
	cfg.AutoplayDelay = time.Second
	cfg.AutoplayStopOnLastSlide = true
	f := newFixture(t, cfg, 3)

	f.clock.Advance(10 * time.Second)
	require.Len(t, f.changes, 2)
	st, err := f.engine.AutoplayState()
	require.NoError(t, err)
	require.Equal(t, autoplay.Stopped, st)
	require.Equal(t, 0, f.clock.Pending())
}

func TestAutoplayReverse(t *testing.T) {
	cfg := baseConfig()
	cfg.Loop = true
	cfg.Speed = 100 * time.Millisecond
	cfg.AutoplayDelay = time.Second
	cfg.AutoplayReverse = true
	f := newFixture(t, cfg, 3)

	f.clock.Advance(1100 * time.Millisecond)
	require.Equal(t, []Change{{Active: 2, Previous: 0}}, f.changes)
}

func TestInteractionDisablesAutoplay(t *testing.T) {
	cfg := baseConfig()
	cfg.AutoplayDelay = time.Second
	cfg.AutoplayDisableOnInteraction = true
	f := newFixture(t, cfg, 5)

	f.engine.Next()
	f.clock.Advance(10 * time.Second)
	require.Len(t, f.changes, 1)
	st, _ := f.engine.AutoplayState()
	require.Equal(t, autoplay.Stopped, st)
}

func TestPauseAndResumeAutoplay(t *testing.T) {
	cfg := baseConfig()
	cfg.Loop = true
	cfg.AutoplayDelay = time.Second
	f := newFixture(t, cfg, 5)

	f.clock.Advance(500 * time.Millisecond)
	require.NoError(t, f.engine.PauseAutoplay())
	st, _ := f.engine.State()
	require.True(t, st.AutoplayPaused)

	f.clock.Advance(10 * time.Second)
	require.Empty(t, f.changes)

	require.NoError(t, f.engine.ResumeAutoplay())
	st, _ = f.engine.State()
	require.False(t, st.AutoplayPaused)
	f.clock.Advance(900 * time.Millisecond)
	require.Len(t, f.changes, 1, "remaining 500ms plus 400ms transition")
}

func TestDestroyIsIdempotent(t *testing.T) {
	cfg := baseConfig()
	cfg.AutoplayDelay = time.Second
	f := newFixture(t, cfg, 5)

	fut, err := f.engine.Next()
	require.NoError(t, err)
	f.clock.Advance(100 * time.Millisecond)

	f.engine.Destroy()
	f.engine.Destroy()

	res, ok := fut.Result()
	require.True(t, ok)
	require.True(t, res.Interrupted)
	require.Equal(t, []Change{{Active: 1, Previous: 0, Interrupted: true}}, f.changes)
	require.Equal(t, 0, f.clock.Pending(), "destroy must cancel every timer")

	f.clock.Advance(10 * time.Second)
	require.Len(t, f.changes, 1, "released observers must not be called")

	_, err = f.engine.Next()
	require.ErrorIs(t, err, ErrEngineDestroyed)
	_, err = f.engine.Prev()
	require.ErrorIs(t, err, ErrEngineDestroyed)
	_, err = f.engine.GoTo(0)
	require.ErrorIs(t, err, ErrEngineDestroyed)
	_, err = f.engine.OnChange(func(Change) {})
	require.ErrorIs(t, err, ErrEngineDestroyed)
	require.ErrorIs(t, f.engine.SetViewport(renderer.Viewport{Width: 10}), ErrEngineDestroyed)
	require.ErrorIs(t, f.engine.PauseAutoplay(), ErrEngineDestroyed)
}

func TestUnsubscribe(t *testing.T) {
	f := newFixture(t, baseConfig(), 5)
	var calls int
	unsubscribe, err := f.engine.OnChange(func(Change) { calls++ })
	require.NoError(t, err)

	f.engine.Next()
	f.clock.Advance(time.Second)
	unsubscribe()
	f.engine.Next()
	f.clock.Advance(time.Second)

	require.Equal(t, 1, calls)
	require.Len(t, f.changes, 2)
}

func TestObserverMayNavigate(t *testing.T) {
	f := newFixture(t, baseConfig(), 5)
	_, err := f.engine.OnChange(func(c Change) {
		if c.Active == 1 {
			f.engine.Next()
		}
	})
	require.NoError(t, err)

	f.engine.Next()
	f.clock.Advance(time.Second)
	require.Equal(t, []Change{{Active: 1, Previous: 0}, {Active: 2, Previous: 1}}, f.changes)
}

func TestBreakpointsAreEdgeTriggered(t *testing.T) {
	cfg := baseConfig()
	two, three := config.Slides(2), config.Slides(3)
	cfg.Breakpoints = []config.Breakpoint{
		{MinWidth: 640, Override: config.Override{SlidesPerView: &two}},
		{MinWidth: 1024, Override: config.Override{SlidesPerView: &three}},
	}
	clk := clock.NewManual(epoch)
	e, err := Create(cfg, slides.Numbered(6), Options{Clock: clk, Viewport: renderer.Viewport{Width: 500, Height: 300}})
	require.NoError(t, err)

	var events []BreakpointChange
	_, err = e.OnBreakpoint(func(c BreakpointChange) { events = append(events, c) })
	require.NoError(t, err)

	for _, w := range []int{600, 700, 800, 1023, 1100, 300} {
		require.NoError(t, e.SetViewport(renderer.Viewport{Width: w, Height: 300}))
	}

	require.Len(t, events, 3)
	require.Equal(t, 640, events[0].MinWidth)
	require.Equal(t, 2.0, events[0].Config.SlidesPerView.Count)
	require.Equal(t, 1024, events[1].MinWidth)
	require.False(t, events[2].Active)

	eff, _ := e.Config()
	require.Equal(t, 1.0, eff.SlidesPerView.Count)
	require.ErrorIs(t, e.SetViewport(renderer.Viewport{Width: -1}), ErrInvalidConfiguration)
}

func TestBreakpointLoopSwitchInterruptsFlight(t *testing.T) {
	cfg := baseConfig()
	loop := true
	cfg.Breakpoints = []config.Breakpoint{{MinWidth: 800, Override: config.Override{Loop: &loop}}}
	f := newFixture(t, cfg, 5)

	fut, _ := f.engine.Next()
	f.clock.Advance(100 * time.Millisecond)
	require.NoError(t, f.engine.SetViewport(renderer.Viewport{Width: 500, Height: 500}))

	res, ok := fut.Result()
	require.True(t, ok)
	require.True(t, res.Interrupted)
	require.Equal(t, []Change{{Active: 1, Previous: 0, Interrupted: true}}, f.changes)

	eff, _ := f.engine.Config()
	require.False(t, eff.Loop)
	pos, _ := f.engine.Position()
	require.Equal(t, 1.0, pos, "track settles at the logical target")
	require.Equal(t, 0, f.clock.Pending())
}

func TestFramesFollowTrack(t *testing.T) {
	f := newFixture(t, baseConfig(), 3)

	f.engine.Next()
	f.clock.Advance(200 * time.Millisecond)
	frames, err := f.engine.Frames()
	require.NoError(t, err)
	require.Len(t, frames, 3)
	require.InDelta(t, -500.0, frames[0].Translate[0], 1e-9, "half-way between slide 0 and 1")

	f.clock.Advance(time.Second)
	frames, _ = f.engine.Frames()
	require.InDelta(t, 0.0, frames[1].Translate[0], 1e-9)
	require.InDelta(t, 1000.0, frames[2].Translate[0], 1e-9)
}
