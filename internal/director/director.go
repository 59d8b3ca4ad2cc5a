package director

import (
	"fmt"

	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/transition"
)

// Navigator is the part of a carousel engine a script drives.
type Navigator interface {
	Next() (*transition.Future, error)
	Prev() (*transition.Future, error)
	GoTo(index int) (*transition.Future, error)
	SetViewport(vp renderer.Viewport) error
	PauseAutoplay() error
	ResumeAutoplay() error
	StopAutoplay() error
}

// Apply performs one step. current is the viewport in use, for viewport
// steps that only change the width. It returns the viewport after the step.
func Apply(nav Navigator, step Step, current renderer.Viewport) (renderer.Viewport, error) {
	var err error
	switch step.Action {
	case ActionNext:
		_, err = nav.Next()
	case ActionPrev:
		_, err = nav.Prev()
	case ActionGoTo:
		_, err = nav.GoTo(step.Index)
	case ActionViewport:
		vp := renderer.Viewport{Width: step.Width, Height: step.Height}
		if vp.Height == 0 {
			vp.Height = current.Height
		}
		if err = nav.SetViewport(vp); err == nil {
			current = vp
		}
	case ActionPause:
		err = nav.PauseAutoplay()
	case ActionResume:
		err = nav.ResumeAutoplay()
	case ActionStop:
		err = nav.StopAutoplay()
	default:
		err = fmt.Errorf("unknown action %q", step.Action)
	}
	if err != nil {
		return current, fmt.Errorf("step %s at %.2fs: %w", step.Action, step.Time, err)
	}
	return current, nil
}

// Director writes demo scripts that tour a carousel
type Director struct {
	ViewportWidth  int
	ViewportHeight int
	MinDwell       float64 // Minimum time per slide (seconds)
	MaxDwell       float64 // Maximum time per slide (seconds)
	// Widths, when set, are visited in order across the tour to exercise
	// breakpoints.
	Widths []int
}

// NewDirector creates a new Director with default settings
func NewDirector(viewportWidth, viewportHeight int) *Director {
	return &Director{
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
		MinDwell:       1.0,
		MaxDwell:       3.0,
	}
}

// Tour advances through slideCount slides and returns to the first one
// within totalDuration seconds.
func (d *Director) Tour(carousel string, slideCount int, totalDuration float64) (*Script, error) {
	if slideCount < 1 {
		return nil, fmt.Errorf("no slides to tour")
	}
	if totalDuration <= 0 {
		return nil, fmt.Errorf("tour duration must be positive, got %.2f", totalDuration)
	}

	dwell := d.calculateDwellTime(totalDuration, slideCount)

	script := &Script{
		Version:  "1.0",
		Carousel: carousel,
		Viewport: &Viewport{Width: d.ViewportWidth, Height: d.ViewportHeight},
	}

	t := dwell
	for i := 1; i < slideCount && t < totalDuration; i++ {
		script.Steps = append(script.Steps, Step{Time: t, Action: ActionNext})
		t += dwell
	}
	if slideCount > 1 && t < totalDuration {
		script.Steps = append(script.Steps, Step{Time: t, Action: ActionGoTo, Index: 0})
	}

	if len(d.Widths) > 0 {
		span := totalDuration / float64(len(d.Widths)+1)
		for i, w := range d.Widths {
			script.Steps = append(script.Steps, Step{
				Time:   span * float64(i+1),
				Action: ActionViewport,
				Width:  w,
			})
		}
	}

	if err := script.Validate(); err != nil {
		return nil, err
	}
	return script, nil
}

// calculateDwellTime determines how long to stay on each slide
func (d *Director) calculateDwellTime(totalDuration float64, slideCount int) float64 {
	dwell := totalDuration / float64(slideCount+1)

	if dwell < d.MinDwell {
		dwell = d.MinDwell
	}
	if d.MaxDwell > 0 && dwell > d.MaxDwell {
		dwell = d.MaxDwell
	}
	return dwell
}
