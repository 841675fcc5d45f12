package observability_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/glyph/pkg/domain"
	"github.com/aretw0/glyph/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnSessionExtend(ctx, &domain.SessionEvent{})
	hooks.OnEmptyGesture(ctx, &domain.SessionEvent{})
	hooks.OnSessionComplete(ctx, &domain.CaptureEvent{Pixels: image.Rect(0, 0, 10, 20)})
	hooks.OnSessionComplete(ctx, &domain.CaptureEvent{Err: errors.New("read")})
	hooks.OnPrediction(ctx, &domain.PredictionEvent{Duration: 20 * time.Millisecond})
	hooks.OnPrediction(ctx, &domain.PredictionEvent{Err: errors.New("offline")})
	hooks.OnPrediction(ctx, &domain.PredictionEvent{Dropped: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extensions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues(observability.OutcomeEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues(observability.OutcomeCaptured)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues(observability.OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues(observability.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues(observability.OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues(observability.OutcomeDropped)))

	n, err := testutil.GatherAndCount(reg, "glyph_prediction_duration_seconds", "glyph_crop_pixels")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewMetrics_ToleratesReRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.NoError(t, err)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	hooks := observability.LoggingHooks(logger)
	ctx := context.Background()

	hooks.OnSessionStart(ctx, &domain.SessionEvent{EventBase: domain.EventBase{Type: domain.EventSessionStart, SessionID: "s1"}})
	hooks.OnPrediction(ctx, &domain.PredictionEvent{
		EventBase:  domain.EventBase{Type: domain.EventPrediction, SessionID: "s1"},
		Prediction: domain.Prediction{Character: "x", Confidence: 0.4},
		Text:       "x",
	})

	out := buf.String()
	assert.Contains(t, out, `"msg":"session_start"`)
	assert.Contains(t, out, `"session_id":"s1"`)
	assert.Contains(t, out, `"character":"x"`)
}

func TestChainedHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	var buf bytes.Buffer
	hooks := domain.ChainHooks(m.Hooks(), observability.LoggingHooks(slog.New(slog.NewTextHandler(&buf, nil))))
	hooks.OnSessionExtend(context.Background(), &domain.SessionEvent{EventBase: domain.EventBase{Type: domain.EventSessionExtend}})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extensions))
	assert.Contains(t, buf.String(), "session_extend")
}
