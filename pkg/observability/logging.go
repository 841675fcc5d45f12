package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/glyph/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that emit every event as a structured
// log record.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	session := func(ctx context.Context, e *domain.SessionEvent) {
		logger.InfoContext(ctx, string(e.Type),
			"session_id", e.SessionID,
			"strokes", e.Strokes,
		)
	}
	return domain.LifecycleHooks{
		OnSessionStart:  session,
		OnSessionExtend: session,
		OnEmptyGesture:  session,
		OnSessionComplete: func(ctx context.Context, e *domain.CaptureEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, string(e.Type), "session_id", e.SessionID, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, string(e.Type),
				"session_id", e.SessionID,
				"strokes", e.Strokes,
				"pixels", e.Pixels.String(),
			)
		},
		OnPrediction: func(ctx context.Context, e *domain.PredictionEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, string(e.Type), "session_id", e.SessionID, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, string(e.Type),
				"session_id", e.SessionID,
				"character", e.Prediction.Character,
				"confidence", e.Prediction.Confidence,
				"text", e.Text,
				"dropped", e.Dropped,
				"duration", e.Duration,
			)
		},
	}
}
