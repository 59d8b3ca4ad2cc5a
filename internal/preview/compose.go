package preview

import (
	"image"
	"image/color"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/renderer"
)

// Compose paints frames onto dst. The viewport is scaled uniformly into dst
// and centred; each slide image is fitted into its box and drawn with the
// frame's opacity, lowest ZIndex first. Rotation is not rasterised.
func Compose(dst *image.RGBA, frames []renderer.SlideFrame, vp renderer.Viewport, dir config.Direction, images []image.Image, bg color.Color) {
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)

	db := dst.Bounds()
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = renderer.Viewport{Width: db.Dx(), Height: db.Dy()}
	}
	k := math.Min(float64(db.Dx())/float64(vp.Width), float64(db.Dy())/float64(vp.Height))
	offX := float64(db.Min.X) + (float64(db.Dx())-float64(vp.Width)*k)/2
	offY := float64(db.Min.Y) + (float64(db.Dy())-float64(vp.Height)*k)/2
	clip := image.Rect(int(math.Round(offX)), int(math.Round(offY)),
		int(math.Round(offX+float64(vp.Width)*k)), int(math.Round(offY+float64(vp.Height)*k))).Intersect(db)

	order := make([]int, 0, len(frames))
	for i, f := range frames {
		if f.Visible && f.Opacity > 0 && f.Index < len(images) && images[f.Index] != nil {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return frames[order[a]].ZIndex < frames[order[b]].ZIndex
	})

	horizontal := dir != config.Vertical
	for _, i := range order {
		f := frames[i]
		src := images[f.Index]

		w, h := f.Size, float64(vp.Height)
		if !horizontal {
			w, h = float64(vp.Width), f.Size
		}
		x, y := f.Translate[0], f.Translate[1]
		if f.Scale != 1 && f.Scale > 0 {
			x += w * (1 - f.Scale) / 2
			y += h * (1 - f.Scale) / 2
			w *= f.Scale
			h *= f.Scale
		}

		sb := src.Bounds()
		if sb.Empty() || w <= 0 || h <= 0 {
			continue
		}
		fit := math.Min(w/float64(sb.Dx()), h/float64(sb.Dy()))
		fw, fh := float64(sb.Dx())*fit, float64(sb.Dy())*fit
		x += (w - fw) / 2
		y += (h - fh) / 2

		r := image.Rect(
			int(math.Round(offX+x*k)), int(math.Round(offY+y*k)),
			int(math.Round(offX+(x+fw)*k)), int(math.Round(offY+(y+fh)*k)),
		)
		if r.Empty() || !r.Overlaps(clip) {
			continue
		}

		var opts *xdraw.Options
		if f.Opacity < 1 {
			opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(math.Round(f.Opacity * 255))})}
		}
		sub := dst.SubImage(clip).(*image.RGBA)
		xdraw.ApproxBiLinear.Scale(sub, r, src, sb, xdraw.Over, opts)
	}
}
