package domain_test

import (
	"image"
	"math"
	"testing"

	"github.com/aretw0/glyph/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestStroke_HasInk(t *testing.T) {
	assert.False(t, domain.Stroke{}.HasInk())
	assert.False(t, domain.Stroke{Points: []domain.Point{{X: 3, Y: 4}}}.HasInk())
	assert.False(t, domain.Stroke{Points: []domain.Point{{X: 3, Y: 4}, {X: 3, Y: 4}}}.HasInk(), "tap in place leaves no ink")
	assert.True(t, domain.Stroke{Points: []domain.Point{{X: 3, Y: 4}, {X: 3, Y: 5}}}.HasInk())
}

func TestStroke_Bounds(t *testing.T) {
	s := domain.Stroke{
		Width:  4,
		Points: []domain.Point{{X: 10, Y: 20}, {X: 30, Y: 5}, {X: 18, Y: 40}},
	}
	assert.Equal(t, domain.Rect{Left: 8, Top: 3, Width: 24, Height: 39}, s.Bounds())

	zeroWidth := domain.Stroke{Points: []domain.Point{{X: 1, Y: 1}, {X: 5, Y: 2}}}
	assert.Equal(t, domain.Rect{Left: 1, Top: 1, Width: 4, Height: 1}, zeroWidth.Bounds())
}

func TestBoundsOf(t *testing.T) {
	_, ok := domain.BoundsOf(nil)
	assert.False(t, ok, "no bounds exist for an empty object set")

	a := domain.Stroke{Points: []domain.Point{{X: 10, Y: 10}, {X: 20, Y: 20}}}
	b := domain.Stroke{Points: []domain.Point{{X: 50, Y: 5}, {X: 60, Y: 15}}}
	box, ok := domain.BoundsOf([]domain.Stroke{a, b})
	assert.True(t, ok)
	assert.Equal(t, domain.Rect{Left: 10, Top: 5, Width: 50, Height: 15}, box)
	assert.True(t, box.Contains(a.Bounds()))
	assert.True(t, box.Contains(b.Bounds()))
	assert.GreaterOrEqual(t, box.Width, 0.0)
	assert.GreaterOrEqual(t, box.Height, 0.0)
}

func TestBoundsOf_NeverWider(t *testing.T) {
	strokes := []domain.Stroke{
		{Width: 2, Points: []domain.Point{{X: 5, Y: 7}, {X: 9, Y: 30}}},
		{Width: 6, Points: []domain.Point{{X: 40, Y: 12}, {X: 44, Y: 13}}},
	}
	box, _ := domain.BoundsOf(strokes)

	// Every edge of the union is touched by some stroke.
	var left, top, right, bottom bool
	for _, s := range strokes {
		b := s.Bounds()
		left = left || b.Left == box.Left
		top = top || b.Top == box.Top
		right = right || b.Right() == box.Right()
		bottom = bottom || b.Bottom() == box.Bottom()
	}
	assert.True(t, left && top && right && bottom)
}

func TestRect_Scale(t *testing.T) {
	r := domain.Rect{Left: 10, Top: 20, Width: 30, Height: 40}

	assert.Equal(t, image.Rect(10, 20, 40, 60), r.Scale(1))
	assert.Equal(t, image.Rect(20, 40, 80, 120), r.Scale(2))
	assert.Equal(t, image.Rect(10, 20, 40, 60), r.Scale(0), "non-positive ratio falls back to 1")

	frac := domain.Rect{Left: 1.25, Top: 0.5, Width: 2.5, Height: 1}
	assert.Equal(t, image.Rect(1, 0, 4, 2), frac.Scale(1), "fractional ink is kept")
	assert.Equal(t, image.Rect(1, 0, 6, 3), frac.Scale(1.5))
}

func TestRect_Union(t *testing.T) {
	a := domain.Rect{Left: 0, Top: 0, Width: 10, Height: 10}
	b := domain.Rect{Left: 5, Top: -5, Width: 20, Height: 5}
	assert.Equal(t, domain.Rect{Left: 0, Top: -5, Width: 25, Height: 15}, a.Union(b))
	assert.True(t, domain.Rect{}.Empty())
	assert.False(t, a.Empty())
}

func TestCanvasSize(t *testing.T) {
	w, h := domain.CanvasSize(1000, 800)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 476, h)

	w, h = domain.CanvasSize(0, 10)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestPoint_Within(t *testing.T) {
	assert.True(t, domain.Point{X: 0, Y: 0}.Within(100, 50))
	assert.True(t, domain.Point{X: 100, Y: 50}.Within(100, 50), "edges are on the canvas")
	assert.False(t, domain.Point{X: -1, Y: 10}.Within(100, 50))
	assert.False(t, domain.Point{X: 10, Y: 51}.Within(100, 50))
	assert.False(t, domain.Point{X: 1e6, Y: 1e6}.Within(100, 50))
	assert.False(t, domain.Point{X: math.NaN(), Y: 1}.Within(100, 50))
	assert.False(t, domain.Point{X: math.Inf(1), Y: 1}.Within(100, 50))
}

func TestPoint_Clamp(t *testing.T) {
	assert.Equal(t, domain.Point{X: 10, Y: 20}, domain.Point{X: 10, Y: 20}.Clamp(100, 50))
	assert.Equal(t, domain.Point{X: 100, Y: 50}, domain.Point{X: 1e6, Y: 1e6}.Clamp(100, 50))
	assert.Equal(t, domain.Point{X: 0, Y: 0}, domain.Point{X: -5, Y: math.NaN()}.Clamp(100, 50))
	assert.Equal(t, domain.Point{X: 100, Y: 0}, domain.Point{X: math.Inf(1), Y: math.Inf(-1)}.Clamp(100, 50))
}

func TestCropLimit(t *testing.T) {
	assert.Equal(t, image.Rect(-50, -50, 150, 100), domain.CropLimit(100, 50, 1))
	assert.Equal(t, image.Rect(-100, -100, 300, 200), domain.CropLimit(100, 50, 2))
	assert.Equal(t, domain.CropLimit(100, 50, 1), domain.CropLimit(100, 50, 0), "non-positive ratio means 1")
}
