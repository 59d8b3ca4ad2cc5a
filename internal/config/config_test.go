package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T {
	return &v
}

func swiperBreakpoints() []Breakpoint {
	return []Breakpoint{
		{MinWidth: 320, Override: Override{SlidesPerView: ptr(Slides(1)), SpaceBetween: ptr(20.0)}},
		{MinWidth: 768, Override: Override{SlidesPerView: ptr(Slides(2))}},
		{MinWidth: 968, Override: Override{SlidesPerView: ptr(Slides(3))}},
	}
}

func TestResolvePicksLargestQualifyingBreakpoint(t *testing.T) {
	base := Default()
	base.SpaceBetween = 10

	tests := []struct {
		width     int
		wantSPV   float64
		wantSpace float64
	}{
		{0, 1, 10},
		{319, 1, 10},
		{320, 1, 20},
		{767, 1, 20},
		{800, 2, 10},
		{968, 3, 10},
		{4000, 3, 10},
	}

	for _, tt := range tests {
		eff := Resolve(base, swiperBreakpoints(), tt.width)
		if eff.SlidesPerView.Count != tt.wantSPV {
			t.Errorf("width %d: expected slidesPerView %v, got %v", tt.width, tt.wantSPV, eff.SlidesPerView)
		}
		if eff.SpaceBetween != tt.wantSpace {
			t.Errorf("width %d: expected spaceBetween %v, got %v", tt.width, tt.wantSpace, eff.SpaceBetween)
		}
	}
}

func TestResolveWithoutQualifyingBreakpointReturnsBase(t *testing.T) {
	base := Default()
	base.Loop = true
	eff := Resolve(base, swiperBreakpoints(), 100)
	if diff := cmp.Diff(base, eff); diff != "" {
		t.Errorf("Resolve changed base (-want +got):\n%s", diff)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	base := Default()
	base.Breakpoints = swiperBreakpoints()
	base.AutoplayDelay = 5 * time.Second

	for _, w := range []int{0, 320, 800, 1200} {
		first := base.Effective(w)
		again := Resolve(first, nil, w)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Errorf("width %d: resolve not idempotent (-first +again):\n%s", w, diff)
		}
		if len(first.Breakpoints) != 0 {
			t.Errorf("width %d: effective config should carry no breakpoints", w)
		}
	}
}

func TestResolveTiesLastDeclaredWins(t *testing.T) {
	bps := []Breakpoint{
		{MinWidth: 500, Override: Override{SlidesPerView: ptr(Slides(2))}},
		{MinWidth: 500, Override: Override{SlidesPerView: ptr(Slides(4))}},
		{MinWidth: 300, Override: Override{SlidesPerView: ptr(Slides(1))}},
	}
	eff := Resolve(Default(), bps, 600)
	if eff.SlidesPerView.Count != 4 {
		t.Errorf("expected last declared breakpoint to win, got %v", eff.SlidesPerView)
	}

	minWidth, ok := ActiveBreakpoint(bps, 600)
	if !ok || minWidth != 500 {
		t.Errorf("expected active breakpoint 500, got %d (%v)", minWidth, ok)
	}
	if _, ok := ActiveBreakpoint(bps, 299); ok {
		t.Error("no breakpoint should be active below 300")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		slides int
		ok     bool
	}{
		{"defaults", func(*Config) {}, 3, true},
		{"empty slide set", func(*Config) {}, 0, false},
		{"zero group", func(c *Config) { c.SlidesPerGroup = 0 }, 3, false},
		{"group larger than set", func(c *Config) { c.SlidesPerGroup = 4 }, 3, false},
		{"group larger than set with loop", func(c *Config) { c.SlidesPerGroup = 4; c.Loop = true }, 3, true},
		{"zero slides per view", func(c *Config) { c.SlidesPerView = Slides(0) }, 3, false},
		{"auto slides per view", func(c *Config) { c.SlidesPerView = AutoSlides }, 3, true},
		{"negative space", func(c *Config) { c.SpaceBetween = -1 }, 3, false},
		{"negative speed", func(c *Config) { c.Speed = -time.Millisecond }, 3, false},
		{"unknown effect", func(c *Config) { c.Effect = "cube" }, 3, false},
		{"unknown direction", func(c *Config) { c.Direction = "diagonal" }, 3, false},
		{"initial slide out of range", func(c *Config) { c.InitialSlide = 3 }, 3, false},
		{"breakpoint variant invalid", func(c *Config) {
			c.Breakpoints = []Breakpoint{{MinWidth: 768, Override: Override{SlidesPerGroup: ptr(5)}}}
		}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := Validate(c, tt.slides)
			if tt.ok && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !errors.Is(err, ErrInvalidConfiguration) {
					t.Errorf("expected ErrInvalidConfiguration, got %v", err)
				}
			}
		})
	}
}

func TestLoadLegacyPresetLastWriteWins(t *testing.T) {
	p, err := Load("testdata/legacy.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg, ok := p.Get("gallery")
	if !ok {
		t.Fatal("gallery preset missing")
	}
	if cfg.SlidesPerView.Count != 1 {
		t.Errorf("duplicate slidesPerView should keep the last value 1, got %v", cfg.SlidesPerView)
	}
	if cfg.SpaceBetween != 10 {
		t.Errorf("duplicate spaceBetween should keep the last value 10, got %v", cfg.SpaceBetween)
	}
	if !cfg.Loop || cfg.Speed != 400*time.Millisecond || cfg.AutoplayDelay != 5*time.Second {
		t.Errorf("unexpected loop/speed/autoplay: %v %v %v", cfg.Loop, cfg.Speed, cfg.AutoplayDelay)
	}
	if len(cfg.Breakpoints) != 3 || cfg.Breakpoints[1].MinWidth != 768 {
		t.Fatalf("expected breakpoints 320/768/968 in order, got %+v", cfg.Breakpoints)
	}
	if eff := cfg.Effective(800); eff.SlidesPerView.Count != 2 {
		t.Errorf("expected 2 slides per view at 800px, got %v", eff.SlidesPerView)
	}

	var duplicates, unknown int
	for _, w := range p.Warnings {
		t.Logf("warning: %s", w)
		switch {
		case strings.Contains(w, "duplicate key"):
			duplicates++
		case strings.Contains(w, "unknown option"):
			unknown++
		}
	}
	if duplicates != 2 {
		t.Errorf("expected 2 duplicate key warnings, got %d", duplicates)
	}
	if unknown != 4 {
		t.Errorf("expected 4 unknown option warnings, got %d", unknown)
	}
}

func TestParseCreativeEffect(t *testing.T) {
	doc := `
hero:
  effect: Creative
  creativeEffect:
    prev:
      translate: [0, 0, -400]
    next:
      translate: ["100%", 0, 0]
      opacity: 0.5
  autoplay: true
  slidesPerView: auto
`
	p, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg, _ := p.Get("hero")

	if cfg.Effect != EffectCreative {
		t.Errorf("expected creative effect, got %q", cfg.Effect)
	}
	if !cfg.SlidesPerView.Auto {
		t.Errorf("expected auto slides per view, got %v", cfg.SlidesPerView)
	}
	if cfg.AutoplayDelay != DefaultAutoplayDelay {
		t.Errorf("autoplay: true should use the default delay, got %v", cfg.AutoplayDelay)
	}
	if got := cfg.Creative.Prev.TranslateAt(2); got != Px(-400) {
		t.Errorf("expected prev z translate -400px, got %v", got)
	}
	if got := cfg.Creative.Next.TranslateAt(0); got != Percent(100) {
		t.Errorf("expected next x translate 100%%, got %v", got)
	}
	if got := cfg.Creative.Next.OpacityOr(1); got != 0.5 {
		t.Errorf("expected next opacity 0.5, got %v", got)
	}
	if got := cfg.Creative.Next.TranslateAt(0).Pixels(300); got != 300 {
		t.Errorf("100%% of 300px should be 300px, got %v", got)
	}
}

func TestParseErrors(t *testing.T) {
	docs := map[string]string{
		"not a mapping":       "- a\n- b\n",
		"bad breakpoint key":  "c:\n  breakpoints:\n    wide: {slidesPerView: 2}\n",
		"bad slides per view": "c:\n  slidesPerView: many\n",
		"bad translate":       "c:\n  creativeEffect:\n    next:\n      translate: [\"x%\"]\n",
	}
	for name, doc := range docs {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected parse error", name)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	p, err := Load("../../configs/carousels.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := p.Names(); len(got) != 4 || got[0] != "hero" {
		t.Fatalf("expected 4 presets starting with hero, got %v", got)
	}

	for _, name := range p.Names() {
		cfg, _ := p.Get(name)
		data, err := Marshal(name, cfg)
		if err != nil {
			t.Fatalf("%s: Marshal failed: %v", name, err)
		}
		back, err := Parse(data)
		if err != nil {
			t.Fatalf("%s: Parse of marshalled config failed: %v\n%s", name, err, data)
		}
		got, _ := back.Get(name)
		if diff := cmp.Diff(cfg, got); diff != "" {
			t.Errorf("%s: round trip mismatch (-want +got):\n%s", name, diff)
		}
	}
}
