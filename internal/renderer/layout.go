package renderer

import (
	"math"

	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/effects"
	"github.com/ivlev/carousel/internal/slides"
)

// Viewport is the host container size in px.
type Viewport struct {
	Width  int
	Height int
}

// SizeFunc reports the natural size of a slide along the direction axis. It
// is only consulted when slidesPerView is "auto".
type SizeFunc func(id slides.ID) float64

// SlideFrame is the render target of one slide at one moment.
type SlideFrame struct {
	ID       slides.ID
	Index    int
	Progress float64
	Size     float64 // px along the direction axis
	ZIndex   int
	effects.Transform
}

// AxisLength returns the viewport length along the configured direction.
func AxisLength(cfg config.Config, vp Viewport) float64 {
	if cfg.Direction == config.Vertical {
		return float64(vp.Height)
	}
	return float64(vp.Width)
}

// SlideSize splits the viewport between slidesPerView slides and the gaps
// between them.
func SlideSize(cfg config.Config, vp Viewport) float64 {
	length := AxisLength(cfg, vp)
	if cfg.SlidesPerView.Auto || cfg.SlidesPerView.Count <= 0 {
		return length
	}
	spv := cfg.SlidesPerView.Count
	size := (length - cfg.SpaceBetween*(spv-1)) / spv
	if size < 0 {
		return 0
	}
	return size
}

// Layout computes every slide's transform for the track position. In loop
// mode progress wraps into [-n/2, n/2] so slides appear on both sides of the
// active one.
func Layout(set slides.Set, position float64, cfg config.Config, vp Viewport, sizeOf SizeFunc) ([]SlideFrame, error) {
	eff, err := effects.ForKind(cfg.Effect)
	if err != nil {
		return nil, err
	}

	n := set.Len()
	step := SlideSize(cfg, vp)
	if cfg.SlidesPerView.Auto && sizeOf != nil && n > 0 {
		// Auto-sized slides step by the mean natural size.
		total := 0.0
		for i := 0; i < n; i++ {
			total += sizeOf(set.At(i))
		}
		step = total / float64(n)
	}
	viewportSize := AxisLength(cfg, vp)

	frames := make([]SlideFrame, n)
	for i := 0; i < n; i++ {
		progress := float64(i) - position
		if cfg.Loop && n > 0 {
			progress -= float64(n) * math.Round(progress/float64(n))
		}

		size := step
		if cfg.SlidesPerView.Auto && sizeOf != nil {
			size = sizeOf(set.At(i))
		}

		t := eff.Transform(effects.Params{
			Progress:     progress,
			Index:        i,
			SlideSize:    step,
			Space:        cfg.SpaceBetween,
			ViewportSize: viewportSize,
			Direction:    cfg.Direction,
			Creative:     cfg.Creative,
		})

		frames[i] = SlideFrame{
			ID:        set.At(i),
			Index:     i,
			Progress:  progress,
			Size:      size,
			ZIndex:    n - int(math.Round(math.Abs(progress))),
			Transform: t,
		}
	}
	return frames, nil
}
