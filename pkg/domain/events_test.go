package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/glyph/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestChainHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnSessionStart: func(context.Context, *domain.SessionEvent) { calls = append(calls, "a.start") },
	}
	b := domain.LifecycleHooks{
		OnSessionStart: func(context.Context, *domain.SessionEvent) { calls = append(calls, "b.start") },
		OnPrediction:   func(context.Context, *domain.PredictionEvent) { calls = append(calls, "b.prediction") },
	}

	hooks := domain.ChainHooks(a, domain.LifecycleHooks{}, b)
	hooks.OnSessionStart(context.Background(), &domain.SessionEvent{})
	hooks.OnPrediction(context.Background(), &domain.PredictionEvent{})

	assert.Equal(t, []string{"a.start", "b.start", "b.prediction"}, calls)
	assert.Nil(t, hooks.OnEmptyGesture)
}
