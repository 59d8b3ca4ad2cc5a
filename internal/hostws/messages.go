package hostws

import (
	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/engine"
	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/slides"
)

// ResolveResponse is the effective configuration at one width
type ResolveResponse struct {
	Name       string     `json:"name"`
	Width      int        `json:"width"`
	Breakpoint *int       `json:"breakpoint,omitempty"`
	Config     ConfigView `json:"config"`
}

type ConfigView struct {
	SlidesPerView  string  `json:"slidesPerView"`
	SpaceBetween   float64 `json:"spaceBetween"`
	SlidesPerGroup int     `json:"slidesPerGroup"`
	Loop           bool    `json:"loop"`
	Direction      string  `json:"direction"`
	SpeedMs        int64   `json:"speed"`
	AutoplayMs     int64   `json:"autoplayDelay,omitempty"`
	Effect         string  `json:"effect"`
}

func viewOfConfig(c config.Config) ConfigView {
	return ConfigView{
		SlidesPerView:  c.SlidesPerView.String(),
		SpaceBetween:   c.SpaceBetween,
		SlidesPerGroup: c.SlidesPerGroup,
		Loop:           c.Loop,
		Direction:      string(c.Direction),
		SpeedMs:        c.Speed.Milliseconds(),
		AutoplayMs:     c.AutoplayDelay.Milliseconds(),
		Effect:         string(c.Effect),
	}
}

// ClientMessage is a command sent by the host page.
type ClientMessage struct {
	Op     string `json:"op"` // next, prev, goTo, viewport, pause, resume, stop, frames
	Index  int    `json:"index,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ServerMessage is pushed to the host page. Type selects the payload.
type ServerMessage struct {
	Type       string          `json:"type"` // hello, change, breakpoint, state, frames, error
	Slides     []slides.ID     `json:"slides,omitempty"`
	Change     *ChangeView     `json:"change,omitempty"`
	Breakpoint *BreakpointView `json:"breakpoint,omitempty"`
	State      *StateView      `json:"state,omitempty"`
	Frames     []FrameView     `json:"frames,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type ChangeView struct {
	Active      int  `json:"active"`
	Previous    int  `json:"previous"`
	Interrupted bool `json:"interrupted,omitempty"`
	Boundary    bool `json:"boundary,omitempty"`
}

type BreakpointView struct {
	MinWidth int        `json:"minWidth"`
	Active   bool       `json:"active"`
	Config   ConfigView `json:"config"`
}

type StateView struct {
	ActiveIndex    int     `json:"activeIndex"`
	Transitioning  bool    `json:"transitioning"`
	AutoplayPaused bool    `json:"autoplayPaused"`
	Autoplay       string  `json:"autoplay"`
	Position       float64 `json:"position"`
}

type FrameView struct {
	ID        slides.ID  `json:"id"`
	Index     int        `json:"index"`
	Progress  float64    `json:"progress"`
	Size      float64    `json:"size"`
	ZIndex    int        `json:"zIndex"`
	Translate [3]float64 `json:"translate"`
	Rotate    [3]float64 `json:"rotate"`
	Scale     float64    `json:"scale"`
	Opacity   float64    `json:"opacity"`
	Visible   bool       `json:"visible"`
}

func viewOfChange(c engine.Change) *ChangeView {
	return &ChangeView{Active: c.Active, Previous: c.Previous, Interrupted: c.Interrupted, Boundary: c.Boundary}
}

func viewOfFrames(frames []renderer.SlideFrame) []FrameView {
	out := make([]FrameView, len(frames))
	for i, f := range frames {
		out[i] = FrameView{
			ID:        f.ID,
			Index:     f.Index,
			Progress:  f.Progress,
			Size:      f.Size,
			ZIndex:    f.ZIndex,
			Translate: f.Translate,
			Rotate:    f.Rotate,
			Scale:     f.Scale,
			Opacity:   f.Opacity,
			Visible:   f.Visible,
		}
	}
	return out
}
