// Package preview renders a carousel offline: it replays an interaction
// script against an engine on a virtual clock and composites every frame.
package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/carousel/internal/analyzer"
	"github.com/ivlev/carousel/internal/clock"
	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/director"
	"github.com/ivlev/carousel/internal/engine"
	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/slides"
	"github.com/ivlev/carousel/internal/source"
	"github.com/ivlev/carousel/internal/system"
	"github.com/ivlev/carousel/internal/video"
)

var epoch = time.Unix(0, 0)

type Options struct {
	Width, Height int // output frame size and the default viewport
	FPS           int
	Duration      time.Duration
	DPI           int
	Workers       int
	Background    color.Color
	// Trim crops slide margins with an analyzer.Detector variant
	// ("contrast"); empty keeps pages whole.
	Trim string
	// Logger receives engine diagnostics; nil keeps them quiet.
	Logger *log.Logger
}

type Stats struct {
	Frames      int
	Changes     []engine.Change
	Breakpoints int
	Render      time.Duration
	Compose     time.Duration
	Total       time.Duration
}

// Report formats the stats like the CLI performance report.
func (s *Stats) Report() string {
	fps := 0.0
	if s.Total > 0 {
		fps = float64(s.Frames) / s.Total.Seconds()
	}
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Frames: %d | Slide changes: %d | Breakpoint switches: %d\n"+
			"Total Time: %.2fs\n"+
			"Rendering (slides): %.2fs\n"+
			"Composition: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		s.Frames, len(s.Changes), s.Breakpoints, s.Total.Seconds(), s.Render.Seconds(), s.Compose.Seconds(), fps,
	)
}

type Project struct {
	Config  config.Config
	Source  source.Source
	Script  *director.Script // optional
	Output  video.FrameWriter
	Options Options
	pool    *system.ImagePool
}

func NewProject(cfg config.Config, src source.Source, script *director.Script, out video.FrameWriter, opts Options) *Project {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.DPI <= 0 {
		opts.DPI = 72
	}
	if opts.Workers <= 0 {
		opts.Workers = system.DefaultWorkers()
	}
	if opts.Background == nil {
		opts.Background = color.Black
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Project{
		Config:  cfg,
		Source:  src,
		Script:  script,
		Output:  out,
		Options: opts,
		pool:    system.NewImagePool(),
	}
}

// Run renders Options.Duration of carousel activity into Output and closes
// it.
func (p *Project) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	closed := false
	defer func() {
		if !closed {
			p.Output.Close()
		}
	}()

	opts := p.Options
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}

	pageCount := p.Source.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("источник не содержит страниц/кадров")
	}
	set := source.SlideSet(p.Source)

	renderStart := time.Now()
	images, err := p.renderSlides(ctx, pageCount)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Render: time.Since(renderStart)}

	vp := renderer.Viewport{Width: opts.Width, Height: opts.Height}
	var steps []director.Step
	if p.Script != nil {
		if p.Script.Viewport != nil {
			vp = renderer.Viewport{Width: p.Script.Viewport.Width, Height: p.Script.Viewport.Height}
		}
		steps = p.Script.Steps
	}

	clk := clock.NewManual(epoch)
	eng, err := engine.Create(p.Config, set, engine.Options{
		Clock:     clk,
		Viewport:  vp,
		SlideSize: naturalSize(set, images, opts.Height),
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	defer eng.Destroy()

	eng.OnChange(func(c engine.Change) {
		stats.Changes = append(stats.Changes, c)
		if !c.Boundary {
			fmt.Printf("[*] %.2fs: слайд %d -> %d\n", clk.Now().Sub(epoch).Seconds(), c.Previous+1, c.Active+1)
		}
	})
	eng.OnBreakpoint(func(c engine.BreakpointChange) {
		stats.Breakpoints++
		fmt.Printf("[*] %.2fs: breakpoint %d (active %v)\n", clk.Now().Sub(epoch).Seconds(), c.MinWidth, c.Active)
	})

	fmt.Println("--- [PROJECT: CAROUSEL PREVIEW] ---")
	fmt.Printf("[*] Слайдов: %d | Эффект: %s | Loop: %v\n", pageCount, p.Config.Effect, p.Config.Loop)
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Viewport: %dx%d\n", opts.Width, opts.Height, opts.FPS, vp.Width, vp.Height)
	fmt.Println("-----------------------------")

	total := int(opts.Duration.Seconds() * float64(opts.FPS))
	if total < 1 {
		total = 1
	}
	frameDur := time.Second / time.Duration(opts.FPS)
	batch := system.MemoryBudget(opts.Width*opts.Height*4, opts.Workers*4)

	next := 0
	composeStart := time.Now()
	for first := 0; first < total; first += batch {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		n := batch
		if first+n > total {
			n = total - first
		}

		jobs := make([]frameJob, n)
		for i := range jobs {
			at := epoch.Add(time.Duration(first+i) * frameDur)
			for next < len(steps) && !epoch.Add(seconds(steps[next].Time)).After(at) {
				clk.AdvanceTo(epoch.Add(seconds(steps[next].Time)))
				if vp, err = director.Apply(eng, steps[next], vp); err != nil {
					log.Printf("[!] %v", err)
				}
				next++
			}
			clk.AdvanceTo(at)
			frames, err := eng.Frames()
			if err != nil {
				return stats, err
			}
			eff, _ := eng.Config()
			jobs[i] = frameJob{frames: frames, viewport: vp, direction: eff.Direction}
		}

		if err := p.composeBatch(ctx, jobs, images); err != nil {
			return stats, err
		}
		for i := range jobs {
			err := p.Output.WriteFrame(jobs[i].img)
			p.pool.Put(jobs[i].img)
			if err != nil {
				return stats, fmt.Errorf("frame %d: %w", first+i, err)
			}
		}
		stats.Frames += n
		fmt.Printf("[>] Ready: %d/%d\n", stats.Frames, total)
	}
	stats.Compose = time.Since(composeStart)

	closed = true
	if err := p.Output.Close(); err != nil {
		return stats, fmt.Errorf("finalize output: %w", err)
	}
	stats.Total = time.Since(start)
	return stats, nil
}

type frameJob struct {
	frames    []renderer.SlideFrame
	viewport  renderer.Viewport
	direction config.Direction
	img       *image.RGBA
}

// renderSlides rasterises every page once, in parallel.
func (p *Project) renderSlides(ctx context.Context, pageCount int) ([]image.Image, error) {
	det, err := analyzer.NewDetector(p.Options.Trim)
	if err != nil {
		return nil, err
	}
	images := make([]image.Image, pageCount)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Options.Workers)
	for i := 0; i < pageCount; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := p.Source.RenderPage(i, p.Options.DPI)
			if err != nil {
				return fmt.Errorf("render page %d: %w", i, err)
			}
			images[i] = analyzer.Trim(img, det)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (p *Project) composeBatch(ctx context.Context, jobs []frameJob, images []image.Image) error {
	bounds := image.Rect(0, 0, p.Options.Width, p.Options.Height)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Options.Workers)
	for i := range jobs {
		job := &jobs[i]
		job.img = p.pool.Get(bounds)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			Compose(job.img, job.frames, job.viewport, job.direction, images, p.Options.Background)
			return nil
		})
	}
	return g.Wait()
}

// naturalSize reports a slide's width when scaled to the frame height, for
// slidesPerView "auto".
func naturalSize(set slides.Set, images []image.Image, height int) renderer.SizeFunc {
	return func(id slides.ID) float64 {
		i := set.Index(id)
		if i < 0 || images[i] == nil {
			return 0
		}
		b := images[i].Bounds()
		if b.Dy() == 0 {
			return 0
		}
		return float64(b.Dx()) * float64(height) / float64(b.Dy())
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
