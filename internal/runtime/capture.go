package runtime

import (
	"fmt"
	"image"

	"github.com/aretw0/glyph/pkg/domain"
	"github.com/aretw0/glyph/pkg/ports"
)

// Capture is the result of cropping a completed session off the surface.
type Capture struct {
	Region domain.Rect     // Canvas-space group bounds of the strokes
	Pixels image.Rectangle // Region scaled to backing-store pixels
	Image  *image.RGBA     // Raw pixels of exactly Pixels
}

// CaptureObjects crops the union of objects off the surface. The region is the
// surface's group bounding box, scaled by ratio onto the backing store. A crop
// reaching past domain.CropLimit fails with domain.ErrCropTooLarge before any
// pixels are read.
func CaptureObjects(surface ports.Surface, objects []domain.Stroke, ratio float64) (Capture, error) {
	if len(objects) == 0 {
		return Capture{}, domain.ErrEmptyGesture
	}
	region, err := surface.BoundingBox(objects)
	if err != nil {
		return Capture{}, fmt.Errorf("failed to compute bounding box: %w", err)
	}
	if region.Width < 0 || region.Height < 0 {
		return Capture{}, fmt.Errorf("negative crop region %+v", region)
	}

	pixels := region.Scale(ratio)
	width, height := surface.Size()
	if limit := domain.CropLimit(width, height, ratio); !pixels.In(limit) {
		return Capture{Region: region, Pixels: pixels}, fmt.Errorf("%w: %v exceeds %v", domain.ErrCropTooLarge, pixels, limit)
	}
	img, err := surface.ReadPixels(pixels)
	if err != nil {
		return Capture{Region: region, Pixels: pixels}, fmt.Errorf("failed to read pixels %v: %w", pixels, err)
	}
	return Capture{Region: region, Pixels: pixels, Image: img}, nil
}
