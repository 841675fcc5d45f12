package observability

import (
	"context"
	"errors"

	"github.com/aretw0/glyph/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Session and prediction outcome label values.
const (
	OutcomeCaptured = "captured"
	OutcomeEmpty    = "empty"
	OutcomeFailed   = "failed"
	OutcomeOK       = "ok"
	OutcomeDropped  = "dropped"
)

// Metrics holds the prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	Sessions    *prometheus.CounterVec
	Extensions  prometheus.Counter
	Predictions *prometheus.CounterVec
	Duration    prometheus.Histogram
	CropPixels  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glyph_sessions_total",
				Help: "Completed gesture sessions by outcome",
			},
			[]string{"outcome"},
		),
		Extensions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glyph_session_extensions_total",
			Help: "Pointer-downs that extended a pending session",
		}),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glyph_predictions_total",
				Help: "Prediction calls by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "glyph_prediction_duration_seconds",
			Help:    "Duration of prediction calls",
			Buckets: prometheus.DefBuckets,
		}),
		CropPixels: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "glyph_crop_pixels",
			Help:    "Area of captured crops in backing-store pixels",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}),
	}

	for _, c := range []prometheus.Collector{m.Sessions, m.Extensions, m.Predictions, m.Duration, m.CropPixels} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionExtend: func(ctx context.Context, e *domain.SessionEvent) {
			m.Extensions.Inc()
		},
		OnEmptyGesture: func(ctx context.Context, e *domain.SessionEvent) {
			m.Sessions.WithLabelValues(OutcomeEmpty).Inc()
		},
		OnSessionComplete: func(ctx context.Context, e *domain.CaptureEvent) {
			if e.Err != nil {
				m.Sessions.WithLabelValues(OutcomeFailed).Inc()
				return
			}
			m.Sessions.WithLabelValues(OutcomeCaptured).Inc()
			m.CropPixels.Observe(float64(e.Pixels.Dx() * e.Pixels.Dy()))
		},
		OnPrediction: func(ctx context.Context, e *domain.PredictionEvent) {
			switch {
			case e.Dropped:
				m.Predictions.WithLabelValues(OutcomeDropped).Inc()
			case e.Err != nil:
				m.Predictions.WithLabelValues(OutcomeFailed).Inc()
			default:
				m.Predictions.WithLabelValues(OutcomeOK).Inc()
			}
			if e.Duration > 0 {
				m.Duration.Observe(e.Duration.Seconds())
			}
		},
	}
}
