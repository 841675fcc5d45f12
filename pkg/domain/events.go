package domain

import (
	"context"
	"image"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionStart    EventType = "session_start"
	EventSessionExtend   EventType = "session_extend"
	EventSessionComplete EventType = "session_complete"
	EventEmptyGesture    EventType = "empty_gesture"
	EventPrediction      EventType = "prediction"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// SessionEvent marks the start, extension or empty completion of a gesture session.
type SessionEvent struct {
	EventBase
	Strokes int `json:"strokes"`
}

// CaptureEvent is emitted when a session completes with ink and its pixels were read.
type CaptureEvent struct {
	EventBase
	Region  Rect            `json:"region"`
	Pixels  image.Rectangle `json:"pixels"`
	Strokes int             `json:"strokes"`
	Err     error           `json:"-"`
}

// PredictionEvent reports the outcome of a prediction call.
type PredictionEvent struct {
	EventBase
	Prediction Prediction    `json:"prediction"`
	Text       string        `json:"text"`
	Duration   time.Duration `json:"duration"`
	Dropped    bool          `json:"dropped,omitempty"` // Result arrived after a clear
	Err        error         `json:"-"`
}

// LifecycleHooks defines callbacks for controller observability.
// Hooks run synchronously on the controller's serialised path and must not
// call back into the controller.
type LifecycleHooks struct {
	OnSessionStart    func(context.Context, *SessionEvent)
	OnSessionExtend   func(context.Context, *SessionEvent)
	OnSessionComplete func(context.Context, *CaptureEvent)
	OnEmptyGesture    func(context.Context, *SessionEvent)
	OnPrediction      func(context.Context, *PredictionEvent)
}

// ChainHooks returns hooks that call every non-nil hook of each set in order.
func ChainHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range sets {
		out.OnSessionStart = chain(out.OnSessionStart, h.OnSessionStart)
		out.OnSessionExtend = chain(out.OnSessionExtend, h.OnSessionExtend)
		out.OnSessionComplete = chain(out.OnSessionComplete, h.OnSessionComplete)
		out.OnEmptyGesture = chain(out.OnEmptyGesture, h.OnEmptyGesture)
		out.OnPrediction = chain(out.OnPrediction, h.OnPrediction)
	}
	return out
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
