package domain

import (
	"image"
	"math"
)

// Point is a canvas-space coordinate (CSS pixels, before pixel-ratio scaling).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MaxBrushWidth is the widest brush a surface accepts, in canvas pixels.
const MaxBrushWidth = 100

// Within reports whether p lies on a width x height canvas, edges included.
// NaN coordinates are never within.
func (p Point) Within(width, height int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= float64(width) && p.Y <= float64(height)
}

// Clamp pins p onto a width x height canvas. NaN coordinates become 0.
func (p Point) Clamp(width, height int) Point {
	return Point{X: clamp(p.X, float64(width)), Y: clamp(p.Y, float64(height))}
}

func clamp(v, hi float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, hi)
}

// Stroke is one freehand polyline drawn between a pointer-down and a pointer-up.
type Stroke struct {
	Points []Point `json:"points"`
	Width  float64 `json:"width"`
}

// HasInk reports whether the stroke covers more than a single position.
// A tap without movement leaves no ink.
func (s Stroke) HasInk() bool {
	if len(s.Points) < 2 {
		return false
	}
	first := s.Points[0]
	for _, p := range s.Points[1:] {
		if p != first {
			return true
		}
	}
	return false
}

// Bounds returns the ink footprint of the stroke: the extent of its points
// padded by half the brush width on every side.
func (s Stroke) Bounds() Rect {
	if len(s.Points) == 0 {
		return Rect{}
	}
	minX, minY := s.Points[0].X, s.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range s.Points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	half := math.Max(s.Width, 0) / 2
	return Rect{
		Left:   minX - half,
		Top:    minY - half,
		Width:  maxX - minX + 2*half,
		Height: maxY - minY + 2*half,
	}
}

// Rect is an axis-aligned canvas-space rectangle.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	left := math.Min(r.Left, o.Left)
	top := math.Min(r.Top, o.Top)
	return Rect{
		Left:   left,
		Top:    top,
		Width:  math.Max(r.Right(), o.Right()) - left,
		Height: math.Max(r.Bottom(), o.Bottom()) - top,
	}
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left && o.Top >= r.Top &&
		o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Scale converts the rectangle to backing-store pixels for the given device
// pixel ratio. All four components are multiplied by the ratio; the minimum
// edges are floored and the maximum edges ceiled so fractional ink is kept.
// A non-positive ratio is treated as 1.
func (r Rect) Scale(ratio float64) image.Rectangle {
	if ratio <= 0 {
		ratio = 1
	}
	x0 := int(math.Floor(r.Left * ratio))
	y0 := int(math.Floor(r.Top * ratio))
	x1 := int(math.Ceil((r.Left + r.Width) * ratio))
	y1 := int(math.Ceil((r.Top + r.Height) * ratio))
	return image.Rect(x0, y0, x1, y1)
}

// BoundsOf returns the union of the bounds of all strokes.
// The boolean is false when there are no strokes, for which no bounds exist.
func BoundsOf(strokes []Stroke) (Rect, bool) {
	if len(strokes) == 0 {
		return Rect{}, false
	}
	box := strokes[0].Bounds()
	for _, s := range strokes[1:] {
		box = box.Union(s.Bounds())
	}
	return box, true
}

// CropLimit returns the largest backing-store rectangle a crop of a
// width x height canvas may cover: the backing store grown by half the
// widest brush on every side.
func CropLimit(width, height int, ratio float64) image.Rectangle {
	if ratio <= 0 {
		ratio = 1
	}
	margin := int(math.Ceil(MaxBrushWidth / 2 * ratio))
	backing := image.Rect(0, 0,
		int(math.Ceil(float64(width)*ratio)),
		int(math.Ceil(float64(height)*ratio)))
	return backing.Inset(-margin)
}

// CanvasSize derives the drawing surface size from the viewport: the full
// width and 63% of the height minus the 28px control strip.
func CanvasSize(viewportWidth, viewportHeight int) (width, height int) {
	width = viewportWidth
	height = int(float64(viewportHeight)*0.63) - 28
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}
