package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Effect is the visual transform family applied during a transition.
type Effect string

const (
	EffectSlide    Effect = "slide"
	EffectFade     Effect = "fade"
	EffectCreative Effect = "creative"
)

// Defaults mirror the widget defaults the presets were written against.
const (
	DefaultSpeed         = 300 * time.Millisecond
	DefaultAutoplayDelay = 3000 * time.Millisecond
	DefaultLimitProgress = 1.0
)

// Config is the declarative carousel configuration. A Config is treated as
// immutable once handed to the engine.
type Config struct {
	SlidesPerView  SlidesPerView
	SpaceBetween   float64 // px
	SlidesPerGroup int
	Loop           bool
	Direction      Direction
	Speed          time.Duration
	InitialSlide   int

	// AutoplayDelay of zero disables autoplay.
	AutoplayDelay                time.Duration
	AutoplayStopOnLastSlide      bool
	AutoplayDisableOnInteraction bool
	AutoplayReverse              bool

	Effect   Effect
	Creative CreativeEffect

	// Breakpoints keep declaration order.
	Breakpoints []Breakpoint
}

// Default returns the configuration every preset starts from.
func Default() Config {
	return Config{
		SlidesPerView:  Slides(1),
		SlidesPerGroup: 1,
		Direction:      Horizontal,
		Speed:          DefaultSpeed,
		Effect:         EffectSlide,
		Creative:       CreativeEffect{LimitProgress: DefaultLimitProgress},
	}
}

// Effective resolves c against its own breakpoints for the given viewport width.
func (c Config) Effective(viewportWidth int) Config {
	return Resolve(c, c.Breakpoints, viewportWidth)
}

// AutoplayEnabled reports whether autoplay ticks should be scheduled.
func (c Config) AutoplayEnabled() bool {
	return c.AutoplayDelay > 0
}

// SlidesPerView is either a positive slide count (fractions allowed) or "auto".
type SlidesPerView struct {
	Auto  bool
	Count float64
}

func Slides(n float64) SlidesPerView {
	return SlidesPerView{Count: n}
}

var AutoSlides = SlidesPerView{Auto: true}

func (s SlidesPerView) String() string {
	if s.Auto {
		return "auto"
	}
	return strconv.FormatFloat(s.Count, 'f', -1, 64)
}

func (s *SlidesPerView) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && strings.EqualFold(strings.TrimSpace(value.Value), "auto") {
		*s = AutoSlides
		return nil
	}
	var n float64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("slidesPerView: expected number or \"auto\", got %q", value.Value)
	}
	*s = Slides(n)
	return nil
}

func (s SlidesPerView) MarshalYAML() (interface{}, error) {
	if s.Auto {
		return "auto", nil
	}
	return s.Count, nil
}

// Length is a translate component: pixels, or a percentage of the slide size.
type Length struct {
	Value   float64
	Percent bool
}

func Px(v float64) Length {
	return Length{Value: v}
}

func Percent(v float64) Length {
	return Length{Value: v, Percent: true}
}

// Pixels converts the length to pixels for a slide of the given size.
func (l Length) Pixels(slideSize float64) float64 {
	if l.Percent {
		return l.Value / 100 * slideSize
	}
	return l.Value
}

func (l Length) String() string {
	v := strconv.FormatFloat(l.Value, 'f', -1, 64)
	if l.Percent {
		return v + "%"
	}
	return v
}

func (l *Length) UnmarshalYAML(value *yaml.Node) error {
	raw := strings.TrimSpace(value.Value)
	switch {
	case strings.HasSuffix(raw, "%"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			return fmt.Errorf("invalid percentage %q", value.Value)
		}
		*l = Percent(v)
	case strings.HasSuffix(raw, "px"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "px"), 64)
		if err != nil {
			return fmt.Errorf("invalid length %q", value.Value)
		}
		*l = Px(v)
	default:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid length %q", value.Value)
		}
		*l = Px(v)
	}
	return nil
}

func (l Length) MarshalYAML() (interface{}, error) {
	if l.Percent {
		return l.String(), nil
	}
	return l.Value, nil
}

// Transform describes where a slide ends up once it is one full step away
// from the active position. Missing translate/rotate components are zero,
// nil Scale and Opacity mean 1.
type Transform struct {
	Translate []Length  `yaml:"translate,omitempty"`
	Rotate    []float64 `yaml:"rotate,omitempty"`
	Scale     *float64  `yaml:"scale,omitempty"`
	Opacity   *float64  `yaml:"opacity,omitempty"`
}

// TranslateAt returns the translate component for axis 0 (x), 1 (y) or 2 (z).
func (t Transform) TranslateAt(axis int) Length {
	if axis < len(t.Translate) {
		return t.Translate[axis]
	}
	return Length{}
}

func (t Transform) RotateAt(axis int) float64 {
	if axis < len(t.Rotate) {
		return t.Rotate[axis]
	}
	return 0
}

func (t Transform) ScaleOr(def float64) float64 {
	if t.Scale != nil {
		return *t.Scale
	}
	return def
}

func (t Transform) OpacityOr(def float64) float64 {
	if t.Opacity != nil {
		return *t.Opacity
	}
	return def
}

// CreativeEffect holds the prev/next transforms of the "creative" effect.
type CreativeEffect struct {
	Prev          Transform
	Next          Transform
	LimitProgress float64
}
