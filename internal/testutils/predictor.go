package testutils

import (
	"context"
	"image"

	"github.com/aretw0/glyph/pkg/domain"
	"github.com/stretchr/testify/mock"
)

// MockPredictor implements ports.Predictor with testify/mock.
type MockPredictor struct {
	mock.Mock
	ReadyCh chan struct{}
}

// NewMockPredictor returns a mock whose readiness is already resolved.
func NewMockPredictor() *MockPredictor {
	ch := make(chan struct{})
	close(ch)
	return &MockPredictor{ReadyCh: ch}
}

func (m *MockPredictor) Ready() <-chan struct{} {
	return m.ReadyCh
}

func (m *MockPredictor) Predict(ctx context.Context, img *image.RGBA) (domain.Prediction, error) {
	args := m.Called(ctx, img)
	return args.Get(0).(domain.Prediction), args.Error(1)
}

func (m *MockPredictor) ClearInput(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
