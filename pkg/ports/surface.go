package ports

import (
	"image"

	"github.com/aretw0/glyph/pkg/domain"
)

// Surface is the freehand drawing canvas the controller captures from.
//
// Pointer-down handlers run before the new stroke is recorded; pointer-up
// handlers run after it was committed. Implementations must not hold internal
// locks while invoking handlers, since handlers call back into the surface.
type Surface interface {
	// OnPointerDown registers a handler for the start of a gesture.
	OnPointerDown(func())
	// OnPointerUp registers a handler for the end of a gesture.
	OnPointerUp(func())

	// Clear removes all drawn content.
	Clear()
	// SetDimensions resizes the surface to the given canvas-space size.
	SetDimensions(width, height int) error
	// Size returns the canvas-space size.
	Size() (width, height int)

	// Objects returns the strokes drawn since the last Clear.
	Objects() []domain.Stroke
	// BoundingBox returns the group bounds of the given objects in canvas space.
	// It fails with domain.ErrEmptyGesture when objects is empty.
	BoundingBox(objects []domain.Stroke) (domain.Rect, error)
	// ReadPixels copies the given backing-store rectangle into a new RGBA
	// buffer with bounds starting at the origin. Pixels outside the backing
	// store read as transparent.
	ReadPixels(r image.Rectangle) (*image.RGBA, error)
}
