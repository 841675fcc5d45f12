package memory_test

import (
	"context"
	"image"
	"testing"

	"github.com/aretw0/glyph/pkg/adapters/memory"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/aretw0/glyph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedPredictor_Contract(t *testing.T) {
	p := memory.NewPredictor([]domain.Prediction{{Character: "a", Confidence: 0.7}}, memory.WithRepeat())
	ports.RunPredictorContract(t, p)
}

func TestScriptedPredictor_Sequence(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPredictor([]domain.Prediction{
		{Character: "a", Confidence: 0.9},
		{Character: "b", Confidence: 0.4},
	})

	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	got, err := p.Predict(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Character)

	got, err = p.Predict(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Character)

	_, err = p.Predict(ctx, img)
	assert.ErrorIs(t, err, memory.ErrExhausted)
	assert.Equal(t, []image.Rectangle{img.Bounds(), img.Bounds(), img.Bounds()}, p.Inputs())
}

func TestScriptedPredictor_Gate(t *testing.T) {
	gate := make(chan struct{})
	p := memory.NewPredictor(nil, memory.WithGate(gate))

	select {
	case <-p.Ready():
		t.Fatal("ready before gate opened")
	default:
	}

	close(gate)
	<-p.Ready()
}

func TestScriptedPredictor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := memory.NewPredictor([]domain.Prediction{{Character: "a"}})
	_, err := p.Predict(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, p.ClearInput(context.Background()))
	assert.Equal(t, 1, p.Clears())
}
