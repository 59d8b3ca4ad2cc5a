package renderer

import (
	"testing"

	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/slides"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		t        float64
		expected float64
	}{
		{-1.0, 0.0}, // Clamped below
		{0.0, 0.0},  // Start
		{0.5, 5.0},  // Midpoint is symmetric
		{1.0, 10.0}, // End
		{2.0, 10.0}, // Clamped above
	}

	for _, tt := range tests {
		got := Interpolate(0, 10, tt.t)
		if abs(got-tt.expected) > 1e-9 {
			t.Errorf("At t=%.1f: expected %.2f, got %.2f", tt.t, tt.expected, got)
		}
	}

	// Easing is slower than linear in the first half
	if Interpolate(0, 10, 0.25) >= 2.5 {
		t.Errorf("Expected ease-in at t=0.25, got %.3f", Interpolate(0, 10, 0.25))
	}
}

func TestSlideSize(t *testing.T) {
	cfg := config.Default()
	cfg.SlidesPerView = config.Slides(3)
	cfg.SpaceBetween = 35

	size := SlideSize(cfg, Viewport{Width: 1000, Height: 400})
	if abs(size-310) > 1e-9 {
		t.Errorf("Expected (1000-70)/3 = 310, got %.3f", size)
	}

	cfg.Direction = config.Vertical
	cfg.SlidesPerView = config.Slides(1)
	if got := SlideSize(cfg, Viewport{Width: 1000, Height: 400}); got != 400 {
		t.Errorf("Vertical carousel should use the height, got %.1f", got)
	}
}

func TestLayoutLoopWrapsProgress(t *testing.T) {
	cfg := config.Default()
	cfg.Loop = true
	set := slides.Numbered(5)

	frames, err := Layout(set, 0, cfg, Viewport{Width: 500, Height: 300}, nil)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if len(frames) != 5 {
		t.Fatalf("Expected 5 frames, got %d", len(frames))
	}

	// The last slide sits just before the first one
	if frames[4].Progress != -1 {
		t.Errorf("Expected slide 5 at progress -1, got %.2f", frames[4].Progress)
	}
	if frames[4].Translate[0] != -500 {
		t.Errorf("Expected slide 5 at x=-500, got %.1f", frames[4].Translate[0])
	}
	if !frames[0].Visible || frames[2].Visible {
		t.Errorf("Only the active slide should be visible at rest")
	}
	if frames[0].ZIndex <= frames[1].ZIndex {
		t.Errorf("Active slide should be on top")
	}

	for _, f := range frames {
		t.Logf("Slide %s: progress=%.1f x=%.1f visible=%v", f.ID, f.Progress, f.Translate[0], f.Visible)
	}
}

func TestLayoutMidTransition(t *testing.T) {
	cfg := config.Default()
	cfg.SlidesPerView = config.Slides(2)
	cfg.SpaceBetween = 10
	set := slides.Numbered(4)

	frames, err := Layout(set, 0.5, cfg, Viewport{Width: 410, Height: 200}, nil)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	// slide size = (410-10)/2 = 200, step = 210
	if frames[1].Translate[0] != 105 {
		t.Errorf("Expected slide 2 at x=105, got %.1f", frames[1].Translate[0])
	}
	if frames[0].Translate[0] != -105 || !frames[0].Visible {
		t.Errorf("Slide 1 should be half out and still visible, got x=%.1f", frames[0].Translate[0])
	}
}

func TestLayoutAutoSizes(t *testing.T) {
	cfg := config.Default()
	cfg.SlidesPerView = config.AutoSlides
	set := slides.NewSet("wide", "narrow")
	sizes := map[slides.ID]float64{"wide": 300, "narrow": 100}

	frames, err := Layout(set, 0, cfg, Viewport{Width: 800}, func(id slides.ID) float64 { return sizes[id] })
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if frames[0].Size != 300 || frames[1].Size != 100 {
		t.Errorf("Auto layout should keep natural sizes, got %.0f and %.0f", frames[0].Size, frames[1].Size)
	}
	if frames[1].Translate[0] != 200 {
		t.Errorf("Auto layout should step by the mean size 200, got %.0f", frames[1].Translate[0])
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
