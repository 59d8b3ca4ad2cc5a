package config

import "time"

// Breakpoint activates Override once the viewport is at least MinWidth px wide.
type Breakpoint struct {
	MinWidth int
	Override Override
}

// Override is a partial Config. Nil fields fall back to the base value.
type Override struct {
	SlidesPerView  *SlidesPerView
	SpaceBetween   *float64
	SlidesPerGroup *int
	Loop           *bool
	Direction      *Direction
	Speed          *time.Duration
	AutoplayDelay  *time.Duration
	Effect         *Effect
}

// Apply returns c with every field present in o replaced.
func (o Override) Apply(c Config) Config {
	if o.SlidesPerView != nil {
		c.SlidesPerView = *o.SlidesPerView
	}
	if o.SpaceBetween != nil {
		c.SpaceBetween = *o.SpaceBetween
	}
	if o.SlidesPerGroup != nil {
		c.SlidesPerGroup = *o.SlidesPerGroup
	}
	if o.Loop != nil {
		c.Loop = *o.Loop
	}
	if o.Direction != nil {
		c.Direction = *o.Direction
	}
	if o.Speed != nil {
		c.Speed = *o.Speed
	}
	if o.AutoplayDelay != nil {
		c.AutoplayDelay = *o.AutoplayDelay
	}
	if o.Effect != nil {
		c.Effect = *o.Effect
	}
	return c
}

// Resolve picks the breakpoint with the largest MinWidth not above
// viewportWidth and applies it to base. Among equal MinWidths the one declared
// last wins. Without a qualifying breakpoint base is returned unchanged. The
// result never carries breakpoints of its own, so resolving it again with no
// breakpoints is a no-op.
func Resolve(base Config, breakpoints []Breakpoint, viewportWidth int) Config {
	eff := base
	eff.Breakpoints = nil
	if i, ok := winner(breakpoints, viewportWidth); ok {
		eff = breakpoints[i].Override.Apply(eff)
	}
	return eff
}

// ActiveBreakpoint returns the MinWidth of the breakpoint Resolve would use.
// The engine compares it across viewport changes so that re-resolution only
// happens when a boundary is crossed.
func ActiveBreakpoint(breakpoints []Breakpoint, viewportWidth int) (int, bool) {
	i, ok := winner(breakpoints, viewportWidth)
	if !ok {
		return 0, false
	}
	return breakpoints[i].MinWidth, true
}

func winner(breakpoints []Breakpoint, viewportWidth int) (int, bool) {
	best := -1
	for i, bp := range breakpoints {
		if bp.MinWidth > viewportWidth {
			continue
		}
		if best < 0 || bp.MinWidth >= breakpoints[best].MinWidth {
			best = i
		}
	}
	return best, best >= 0
}
