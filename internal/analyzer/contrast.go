package analyzer

import (
	"image"
	"image/color"
	"math"
)

// ContrastDetector bounds every pixel whose Sobel gradient exceeds
// EdgeThreshold, grown by Margin px.
type ContrastDetector struct {
	EdgeThreshold float64 // Gradient magnitude threshold
	Margin        int
}

// NewContrastDetector creates a new contrast-based detector with default settings
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		EdgeThreshold: 30.0, // Moderate sensitivity
		Margin:        8,
	}
}

// Bounds returns img.Bounds() for blank images.
func (d *ContrastDetector) Bounds(img image.Image) image.Rectangle {
	gray := toGrayscale(img)
	b := gray.Bounds()

	found := false
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X, b.Min.Y
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			if sobel(gray, x, y) <= d.EdgeThreshold {
				continue
			}
			found = true
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if !found {
		return b
	}
	return image.Rect(minX-d.Margin, minY-d.Margin, maxX+1+d.Margin, maxY+1+d.Margin).Intersect(b)
}

var (
	sobelX = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

// sobel returns the gradient magnitude at (x, y)
func sobel(gray *image.Gray, x, y int) float64 {
	var sumX, sumY float64
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
			sumX += pixel * sobelX[ky+1][kx+1]
			sumY += pixel * sobelY[ky+1][kx+1]
		}
	}
	return math.Sqrt(sumX*sumX + sumY*sumY)
}

// toGrayscale converts an image to grayscale
func toGrayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}
