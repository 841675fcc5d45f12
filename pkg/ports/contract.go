package ports

import (
	"context"
	"image"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/aretw0/glyph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunOutputSinkContract runs a suite of tests to verify that an OutputSink
// implementation adheres to the append-only contract.
func RunOutputSinkContract(t *testing.T, newSink func() OutputSink) {
	t.Run("Starts Empty", func(t *testing.T) {
		assert.Equal(t, "", newSink().Text())
	})

	t.Run("Append Accumulates", func(t *testing.T) {
		sink := newSink()
		sink.Append("a")
		sink.Append("b")
		sink.Append("")
		sink.Append("c")
		assert.Equal(t, "abc", sink.Text())
	})

	t.Run("Clear Resets", func(t *testing.T) {
		sink := newSink()
		sink.Append("xyz")
		sink.Clear()
		assert.Equal(t, "", sink.Text())

		sink.Append("q")
		assert.Equal(t, "q", sink.Text())
	})
}

// RunPredictorContract verifies that a Predictor signals readiness and answers
// with a single character and a confidence in [0,1].
func RunPredictorContract(t *testing.T, p Predictor) {
	ctx := context.Background()

	select {
	case <-p.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("predictor never became ready")
	}

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	t.Run("Predict", func(t *testing.T) {
		pred, err := p.Predict(ctx, img)
		require.NoError(t, err)
		assert.Equal(t, 1, utf8.RuneCountInString(pred.Character), "prediction must be a single symbol")
		assert.GreaterOrEqual(t, pred.Confidence, 0.0)
		assert.LessOrEqual(t, pred.Confidence, 1.0)
	})

	t.Run("ClearInput", func(t *testing.T) {
		require.NoError(t, p.ClearInput(ctx))
	})
}

// RunSurfaceContract verifies the capture-facing behaviour of a Surface.
// draw must render one stroke through the surface's own input path, firing
// the pointer handlers.
func RunSurfaceContract(t *testing.T, s Surface, draw func(points ...domain.Point)) {
	t.Run("Empty BoundingBox", func(t *testing.T) {
		s.Clear()
		_, err := s.BoundingBox(s.Objects())
		assert.ErrorIs(t, err, domain.ErrEmptyGesture)
	})

	t.Run("Handlers Fire Around Stroke", func(t *testing.T) {
		s.Clear()
		var downs, ups int
		var objectsAtDown, objectsAtUp int
		s.OnPointerDown(func() {
			downs++
			objectsAtDown = len(s.Objects())
		})
		s.OnPointerUp(func() {
			ups++
			objectsAtUp = len(s.Objects())
		})

		draw(domain.Point{X: 4, Y: 4}, domain.Point{X: 12, Y: 9})

		assert.Equal(t, 1, downs)
		assert.Equal(t, 1, ups)
		assert.Equal(t, 0, objectsAtDown, "pointer-down fires before the stroke is recorded")
		assert.Equal(t, 1, objectsAtUp, "pointer-up fires after the stroke is committed")
	})

	t.Run("BoundingBox Contains Objects", func(t *testing.T) {
		objects := s.Objects()
		require.NotEmpty(t, objects)
		box, err := s.BoundingBox(objects)
		require.NoError(t, err)
		for _, o := range objects {
			assert.True(t, box.Contains(o.Bounds()))
		}
	})

	t.Run("ReadPixels Size", func(t *testing.T) {
		img, err := s.ReadPixels(image.Rect(2, 3, 10, 7))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	})

	t.Run("Clear", func(t *testing.T) {
		s.Clear()
		assert.Empty(t, s.Objects())
	})

	t.Run("Invalid Dimensions", func(t *testing.T) {
		assert.ErrorIs(t, s.SetDimensions(0, 10), domain.ErrInvalidDimensions)
	})
}
