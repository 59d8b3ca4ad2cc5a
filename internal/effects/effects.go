package effects

import (
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/carousel/internal/config"
)

// Params describes one slide relative to the current track position.
type Params struct {
	// Progress is the signed distance of the slide from the active
	// position, in slides. Slides after the active one are positive.
	Progress     float64
	Index        int
	SlideSize    float64 // px along the direction axis
	Space        float64 // px between slides
	ViewportSize float64 // px along the direction axis
	Direction    config.Direction
	Creative     config.CreativeEffect
}

// Transform is the declarative render target of one slide. Translate is
// measured from the start edge of the viewport.
type Transform struct {
	Translate [3]float64 // px
	Rotate    [3]float64 // degrees
	Scale     float64
	Opacity   float64
	Visible   bool
}

type Effect interface {
	Transform(p Params) Transform
}

// ForKind returns the effect implementation for a configured effect name.
func ForKind(kind config.Effect) (Effect, error) {
	switch config.Effect(strings.ToLower(string(kind))) {
	case config.EffectSlide, "":
		return &SlideEffect{}, nil
	case config.EffectFade:
		return &FadeEffect{}, nil
	case config.EffectCreative:
		return &CreativeEffect{}, nil
	default:
		return nil, fmt.Errorf("unknown effect: %s", kind)
	}
}

// SlideEffect lays slides out in a row (or column) and translates the row.
type SlideEffect struct{}

func (e *SlideEffect) Transform(p Params) Transform {
	offset := p.Progress * (p.SlideSize + p.Space)
	t := Transform{Scale: 1, Opacity: 1}
	t.Translate[axis(p.Direction)] = offset
	t.Visible = offset+p.SlideSize > 0 && offset < p.ViewportSize
	return t
}

// FadeEffect stacks every slide at the origin and cross-fades by distance.
type FadeEffect struct{}

func (e *FadeEffect) Transform(p Params) Transform {
	opacity := 1 - math.Abs(p.Progress)
	if opacity < 0 {
		opacity = 0
	}
	return Transform{Scale: 1, Opacity: opacity, Visible: opacity > 0}
}

// CreativeEffect stacks slides at the origin and moves each one towards the
// configured prev or next transform in proportion to its distance, capped at
// LimitProgress.
type CreativeEffect struct{}

func (e *CreativeEffect) Transform(p Params) Transform {
	limit := p.Creative.LimitProgress
	if limit <= 0 {
		limit = config.DefaultLimitProgress
	}
	amount := math.Min(math.Abs(p.Progress), limit)

	data := p.Creative.Next
	if p.Progress < 0 {
		data = p.Creative.Prev
	}

	var t Transform
	for i := 0; i < 3; i++ {
		t.Translate[i] = data.TranslateAt(i).Pixels(p.SlideSize) * amount
		t.Rotate[i] = data.RotateAt(i) * amount
	}
	t.Scale = 1 + (data.ScaleOr(1)-1)*amount
	t.Opacity = 1 - (1-data.OpacityOr(1))*amount
	if t.Opacity < 0 {
		t.Opacity = 0
	}
	t.Visible = math.Abs(p.Progress) < limit+1 && t.Opacity > 0
	return t
}

func axis(d config.Direction) int {
	if d == config.Vertical {
		return 1
	}
	return 0
}
