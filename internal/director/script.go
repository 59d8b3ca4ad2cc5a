package director

import (
	"fmt"
	"sort"
)

// Action is one scripted interaction with a carousel.
type Action string

const (
	ActionNext     Action = "next"
	ActionPrev     Action = "prev"
	ActionGoTo     Action = "goTo"
	ActionViewport Action = "viewport"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionStop     Action = "stop"
)

// Script is a timed list of interactions replayed against a carousel
type Script struct {
	Version  string    `yaml:"version"`
	Carousel string    `yaml:"carousel,omitempty"` // preset name
	Viewport *Viewport `yaml:"viewport,omitempty"` // initial host size
	Steps    []Step    `yaml:"steps"`
}

// Viewport is a host size in px
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Step fires Action at Time seconds from the start
type Step struct {
	Time   float64 `yaml:"time"`
	Action Action  `yaml:"action"`
	Index  int     `yaml:"index,omitempty"`  // goTo
	Width  int     `yaml:"width,omitempty"`  // viewport
	Height int     `yaml:"height,omitempty"` // viewport, keeps the current height when 0
}

// Validate checks every step and orders them by time. Steps sharing a time
// keep their file order.
func (s *Script) Validate() error {
	if s.Viewport != nil && (s.Viewport.Width <= 0 || s.Viewport.Height <= 0) {
		return fmt.Errorf("script viewport must be positive, got %dx%d", s.Viewport.Width, s.Viewport.Height)
	}
	for i, st := range s.Steps {
		if st.Time < 0 {
			return fmt.Errorf("step %d: negative time %.2f", i, st.Time)
		}
		switch st.Action {
		case ActionNext, ActionPrev, ActionGoTo, ActionPause, ActionResume, ActionStop:
		case ActionViewport:
			if st.Width <= 0 || st.Height < 0 {
				return fmt.Errorf("step %d: viewport needs a positive width", i)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i, st.Action)
		}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool {
		return s.Steps[i].Time < s.Steps[j].Time
	})
	return nil
}

// Duration is the time of the last step.
func (s *Script) Duration() float64 {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].Time
}
