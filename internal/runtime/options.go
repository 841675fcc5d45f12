package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/glyph/pkg/domain"
	"github.com/aretw0/glyph/pkg/ports"
)

const (
	// TouchDebounce is the quiet period that completes a session on touch input.
	TouchDebounce = 400 * time.Millisecond
	// MouseDebounce is the quiet period for mouse input; it leaves room for
	// multi-stroke characters.
	MouseDebounce = 800 * time.Millisecond
	// DefaultMaxInFlight bounds concurrent prediction calls.
	DefaultMaxInFlight = 4
)

// DebounceFor returns the stock debounce duration for an input mode.
func DebounceFor(mode domain.InputMode) time.Duration {
	if mode == domain.InputTouch {
		return TouchDebounce
	}
	return MouseDebounce
}

// ControllerOption defines a functional option for configuring the Controller.
type ControllerOption func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) ControllerOption {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithClock replaces the wall clock (used by tests and replays).
func WithClock(clock ports.Clock) ControllerOption {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithDebounce sets the quiet period after a pointer-up that completes a session.
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithPixelRatio sets the device pixel ratio used to map crop regions onto
// the surface's backing store. Non-positive values mean 1.
func WithPixelRatio(ratio float64) ControllerOption {
	return func(c *Controller) {
		if ratio <= 0 {
			ratio = 1
		}
		c.pixelRatio = ratio
	}
}

// WithConfidencePolicy sets the low-confidence fallback policy.
func WithConfidencePolicy(policy domain.ConfidencePolicy) ControllerOption {
	return func(c *Controller) {
		c.policy = policy
	}
}

// WithMaxInFlight bounds the number of concurrent prediction calls.
func WithMaxInFlight(n int64) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.maxInFlight = n
		}
	}
}
