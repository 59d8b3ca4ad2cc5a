// Package analyzer finds the content area of slide images so that page
// margins can be trimmed before slides are laid out.
package analyzer

import (
	"fmt"
	"image"
)

// Detector reports the region of img that carries content
type Detector interface {
	Bounds(img image.Image) image.Rectangle
}

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "contrast":
		return NewContrastDetector(), nil
	case "none", "":
		return fullDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}

// Trim crops img to the bounds det reports.
func Trim(img image.Image, det Detector) image.Image {
	r := det.Bounds(img).Intersect(img.Bounds())
	if r.Empty() || r == img.Bounds() {
		return img
	}
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(r)
	}
	return img
}

type fullDetector struct{}

func (fullDetector) Bounds(img image.Image) image.Rectangle {
	return img.Bounds()
}
