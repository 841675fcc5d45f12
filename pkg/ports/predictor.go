package ports

import (
	"context"
	"image"

	"github.com/aretw0/glyph/pkg/domain"
)

// Predictor is the recognition model collaborator.
type Predictor interface {
	// Ready is closed once, when the model can serve predictions.
	Ready() <-chan struct{}
	// Predict recognises the character in the captured pixel buffer.
	Predict(ctx context.Context, img *image.RGBA) (domain.Prediction, error)
	// ClearInput resets any context the model accumulated across predictions.
	ClearInput(ctx context.Context) error
}
