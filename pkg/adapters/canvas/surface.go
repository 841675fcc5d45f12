package canvas

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/aretw0/glyph/internal/logging"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// Surface is a raster drawing surface. Strokes are recorded in logical
// (canvas) coordinates and rasterised onto a backing store of
// logical size * pixel ratio, so ReadPixels works in device pixels.
// Pointer positions are clamped onto the canvas and the brush is capped at
// domain.MaxBrushWidth, so ink never reaches far past the backing store.
type Surface struct {
	mu      sync.Mutex
	dc      *gg.Context
	width   int
	height  int
	ratio   float64
	brush   float64
	ink     gg.RGBA
	paper   gg.RGBA
	logger  *slog.Logger
	objects []domain.Stroke
	current *domain.Stroke
	downs   []func()
	ups     []func()
}

// Option configures a Surface.
type Option func(*Surface)

// WithPixelRatio sets the device pixel ratio of the backing store.
func WithPixelRatio(ratio float64) Option {
	return func(s *Surface) {
		if ratio > 0 {
			s.ratio = ratio
		}
	}
}

// WithBrushWidth sets the initial brush width in logical pixels.
func WithBrushWidth(width float64) Option {
	return func(s *Surface) {
		if width > 0 {
			s.brush = math.Min(width, domain.MaxBrushWidth)
		}
	}
}

// WithInk sets the stroke colour.
func WithInk(c gg.RGBA) Option {
	return func(s *Surface) {
		s.ink = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		s.logger = l
	}
}

// New creates a blank surface of the given logical size.
func New(width, height int, opts ...Option) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", domain.ErrInvalidDimensions, width, height)
	}
	s := &Surface{
		width:  width,
		height: height,
		ratio:  1,
		brush:  1,
		ink:    gg.Black,
		paper:  gg.White,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	pw, ph := s.backing(width, height)
	s.dc = gg.NewContext(pw, ph)
	s.dc.Scale(s.ratio, s.ratio)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	s.repaint()
	return s, nil
}

func (s *Surface) backing(width, height int) (int, int) {
	return int(math.Ceil(float64(width) * s.ratio)), int(math.Ceil(float64(height) * s.ratio))
}

// OnPointerDown registers a handler fired at the start of every stroke,
// before the stroke is recorded.
func (s *Surface) OnPointerDown(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downs = append(s.downs, f)
}

// OnPointerUp registers a handler fired after a stroke is committed.
func (s *Surface) OnPointerUp(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ups = append(s.ups, f)
}

// PointerDown starts a stroke at p.
func (s *Surface) PointerDown(p domain.Point) {
	s.mu.Lock()
	handlers := append([]func(){}, s.downs...)
	s.mu.Unlock()
	for _, h := range handlers {
		h()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &domain.Stroke{Points: []domain.Point{p.Clamp(s.width, s.height)}, Width: s.brush}
}

// PointerMove extends the current stroke to p. Moves without a preceding
// PointerDown are hover and ignored.
func (s *Surface) PointerMove(p domain.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	p = p.Clamp(s.width, s.height)
	last := s.current.Points[len(s.current.Points)-1]
	if last == p {
		return
	}
	s.current.Points = append(s.current.Points, p)
	s.segment(last, p, s.current.Width)
}

// PointerUp ends the current stroke at p. A stroke without ink is
// discarded; the up handlers fire either way.
func (s *Surface) PointerUp(p domain.Point) {
	s.mu.Lock()
	if s.current != nil {
		p = p.Clamp(s.width, s.height)
		last := s.current.Points[len(s.current.Points)-1]
		if last != p {
			s.current.Points = append(s.current.Points, p)
			s.segment(last, p, s.current.Width)
		}
		if s.current.HasInk() {
			s.objects = append(s.objects, *s.current)
		}
		s.current = nil
	}
	handlers := append([]func(){}, s.ups...)
	s.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

// DrawStroke replays a complete stroke as a down/move/up sequence.
func (s *Surface) DrawStroke(points ...domain.Point) {
	if len(points) == 0 {
		return
	}
	s.PointerDown(points[0])
	for _, p := range points[1:] {
		s.PointerMove(p)
	}
	s.PointerUp(points[len(points)-1])
}

// SetBrushWidth sets the width used by subsequent strokes. Non-positive
// widths mean 1; widths above domain.MaxBrushWidth are capped.
func (s *Surface) SetBrushWidth(width float64) {
	if width <= 0 || math.IsNaN(width) {
		width = 1
	}
	width = math.Min(width, domain.MaxBrushWidth)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brush = width
}

// BrushWidth returns the current brush width.
func (s *Surface) BrushWidth() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brush
}

// Clear removes every object and blanks the backing store.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = nil
	s.current = nil
	s.repaint()
}

// SetDimensions resizes the surface. Existing objects are redrawn.
func (s *Surface) SetDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", domain.ErrInvalidDimensions, width, height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pw, ph := s.backing(width, height)
	if err := s.dc.Resize(pw, ph); err != nil {
		return fmt.Errorf("failed to resize backing store: %w", err)
	}
	s.width, s.height = width, height
	s.repaint()
	s.logger.Debug("surface resized", "width", width, "height", height, "backing", fmt.Sprintf("%dx%d", pw, ph))
	return nil
}

// Size returns the logical size of the surface.
func (s *Surface) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// PixelRatio returns the device pixel ratio of the backing store.
func (s *Surface) PixelRatio() float64 {
	return s.ratio
}

// Objects returns the committed strokes.
func (s *Surface) Objects() []domain.Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Stroke(nil), s.objects...)
}

// BoundingBox returns the group bounds of objects, including half the brush
// width on every side.
func (s *Surface) BoundingBox(objects []domain.Stroke) (domain.Rect, error) {
	box, ok := domain.BoundsOf(objects)
	if !ok {
		return domain.Rect{}, domain.ErrEmptyGesture
	}
	return box, nil
}

// ReadPixels copies r (backing-store pixels) into a new image whose origin
// is r.Min. Pixels outside the backing store are transparent. Rectangles
// reaching past domain.CropLimit fail with domain.ErrCropTooLarge.
func (s *Surface) ReadPixels(r image.Rectangle) (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit := domain.CropLimit(s.width, s.height, s.ratio); !r.In(limit) {
		return nil, fmt.Errorf("%w: %v exceeds %v", domain.ErrCropTooLarge, r, limit)
	}
	if err := s.dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("failed to flush surface: %w", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), s.dc.Image(), r.Min, draw.Src)
	return dst, nil
}

// EncodePNG writes the whole backing store as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dc.FlushGPU(); err != nil {
		return fmt.Errorf("failed to flush surface: %w", err)
	}
	return s.dc.EncodePNG(w)
}

func (s *Surface) repaint() {
	s.dc.ClearWithColor(s.paper)
	for _, o := range s.objects {
		s.stroke(o)
	}
}

func (s *Surface) stroke(o domain.Stroke) {
	for i := 1; i < len(o.Points); i++ {
		s.segment(o.Points[i-1], o.Points[i], o.Width)
	}
}

func (s *Surface) segment(from, to domain.Point, width float64) {
	if width <= 0 {
		width = 1
	}
	s.dc.SetColor(s.ink.Color())
	s.dc.SetLineWidth(width)
	s.dc.MoveTo(from.X, from.Y)
	s.dc.LineTo(to.X, to.Y)
	if err := s.dc.Stroke(); err != nil {
		s.logger.Warn("failed to rasterise stroke", "err", err)
	}
}
