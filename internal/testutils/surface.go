package testutils

import (
	"image"
	"sync"

	"github.com/aretw0/glyph/pkg/domain"
)

// FakeSurface is an in-memory ports.Surface that records how it is used.
type FakeSurface struct {
	mu      sync.Mutex
	downs   []func()
	ups     []func()
	objects []domain.Stroke
	width   int
	height  int
	Clears  int
	Reads   []image.Rectangle
	Binds   int
	ReadErr error
	Resizes int
}

// NewFakeSurface returns a surface of the given canvas size.
func NewFakeSurface(width, height int) *FakeSurface {
	return &FakeSurface{width: width, height: height}
}

func (s *FakeSurface) OnPointerDown(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downs = append(s.downs, f)
	s.Binds++
}

func (s *FakeSurface) OnPointerUp(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ups = append(s.ups, f)
	s.Binds++
}

func (s *FakeSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = nil
	s.Clears++
}

func (s *FakeSurface) SetDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return domain.ErrInvalidDimensions
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.Resizes++
	return nil
}

func (s *FakeSurface) Objects() []domain.Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Stroke(nil), s.objects...)
}

func (s *FakeSurface) BoundingBox(objects []domain.Stroke) (domain.Rect, error) {
	box, ok := domain.BoundsOf(objects)
	if !ok {
		return domain.Rect{}, domain.ErrEmptyGesture
	}
	return box, nil
}

func (s *FakeSurface) ReadPixels(r image.Rectangle) (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads = append(s.Reads, r)
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
}

// Down fires the pointer-down handlers.
func (s *FakeSurface) Down() {
	s.mu.Lock()
	handlers := append([]func(){}, s.downs...)
	s.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

// Up records stroke (if it has ink) and fires the pointer-up handlers.
func (s *FakeSurface) Up(stroke domain.Stroke) {
	s.mu.Lock()
	if stroke.HasInk() {
		s.objects = append(s.objects, stroke)
	}
	handlers := append([]func(){}, s.ups...)
	s.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

// Inject adds an object without firing any handler, as if a reset was missed.
func (s *FakeSurface) Inject(stroke domain.Stroke) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, stroke)
}

// Draw performs a full gesture: pointer-down, then pointer-up with stroke.
func (s *FakeSurface) Draw(stroke domain.Stroke) {
	s.Down()
	s.Up(stroke)
}

// Size returns the current canvas size.
func (s *FakeSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Stats returns a consistent copy of the counters.
func (s *FakeSurface) Stats() (clears int, reads []image.Rectangle, binds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Clears, append([]image.Rectangle(nil), s.Reads...), s.Binds
}

// Line builds a two-point stroke of the given brush width.
func Line(x0, y0, x1, y1, width float64) domain.Stroke {
	return domain.Stroke{Width: width, Points: []domain.Point{{X: x0, Y: y0}, {X: x1, Y: y1}}}
}
