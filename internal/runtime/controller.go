package runtime

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/glyph/internal/logging"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/aretw0/glyph/pkg/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Controller is the capture controller. Once the predictor is ready it binds
// to the surface's pointer events, coalesces gestures into sessions with a
// cancel-and-restart debounce timer, crops each completed session and relays
// the prediction to the output sink.
//
// Every event is serialised behind one mutex; predictions run on their own
// goroutines and never block pointer handling.
type Controller struct {
	surface   ports.Surface
	predictor ports.Predictor
	sink      ports.OutputSink

	clock       ports.Clock
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	debounce    time.Duration
	pixelRatio  float64
	policy      domain.ConfidencePolicy
	maxInFlight int64

	mu        sync.Mutex
	state     domain.GestureState
	timedOut  bool
	pending   ports.Timer
	token     uint64 // Only the timer armed with the current token may complete
	sessionID string
	epoch     uint64 // Bumped by Clear; older results are dropped
	seq       *sequencer
	closed    bool

	sem      *semaphore.Weighted
	inflight sync.WaitGroup
	bindOnce sync.Once
	ready    chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewController creates an unbound controller. Call Start to wait for the
// predictor and bind to the surface.
func NewController(surface ports.Surface, predictor ports.Predictor, sink ports.OutputSink, opts ...ControllerOption) *Controller {
	c := &Controller{
		surface:     surface,
		predictor:   predictor,
		sink:        sink,
		clock:       ports.SystemClock{},
		logger:      logging.NewNop(),
		debounce:    MouseDebounce,
		pixelRatio:  1,
		policy:      domain.DefaultConfidencePolicy(),
		maxInFlight: DefaultMaxInFlight,
		state:       domain.StateUninitialized,
		timedOut:    true,
		seq:         newSequencer(),
		ready:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sem = semaphore.NewWeighted(c.maxInFlight)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Start waits in the background for the predictor's readiness signal and then
// binds the pointer handlers exactly once. Pointer events before that are
// never seen by the controller.
func (c *Controller) Start(ctx context.Context) {
	go func() {
		select {
		case <-c.predictor.Ready():
			c.bind()
		case <-ctx.Done():
			c.logger.Debug("start canceled before predictor was ready", "err", ctx.Err())
		case <-c.ctx.Done():
		}
	}()
}

// Ready is closed once the controller is bound to the surface.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

func (c *Controller) bind() {
	c.bindOnce.Do(func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.state = domain.StateIdle
		c.timedOut = true
		c.mu.Unlock()

		c.surface.OnPointerDown(c.pointerDown)
		c.surface.OnPointerUp(c.pointerUp)
		close(c.ready)
		c.logger.Info("controller bound", "debounce", c.debounce, "pixel_ratio", c.pixelRatio)
	})
}

func (c *Controller) pointerDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == domain.StateUninitialized {
		return
	}

	if c.timedOut {
		// Leftovers of a completed session must not bleed into this one.
		c.surface.Clear()
		c.timedOut = false
		c.sessionID = uuid.NewString()
		if c.hooks.OnSessionStart != nil {
			c.hooks.OnSessionStart(c.ctx, c.sessionEvent(domain.EventSessionStart))
		}
		c.logger.Debug("session started", "session_id", c.sessionID)
	}

	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
		c.token++
		if c.hooks.OnSessionExtend != nil {
			c.hooks.OnSessionExtend(c.ctx, c.sessionEvent(domain.EventSessionExtend))
		}
		c.logger.Debug("session extended", "session_id", c.sessionID)
	}
	c.state = domain.StateDrawing
}

func (c *Controller) pointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == domain.StateUninitialized {
		return
	}

	if c.pending != nil {
		c.pending.Stop()
	}
	c.token++
	token := c.token
	c.pending = c.clock.AfterFunc(c.debounce, func() { c.complete(token) })
	c.state = domain.StatePending
}

// complete ends the session armed with token, unless a newer event
// invalidated it.
func (c *Controller) complete(token uint64) {
	c.mu.Lock()
	if c.closed || token != c.token {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.timedOut = true
	c.state = domain.StateIdle
	sessionID := c.sessionID

	objects := c.surface.Objects()
	if len(objects) == 0 {
		if c.hooks.OnEmptyGesture != nil {
			c.hooks.OnEmptyGesture(c.ctx, c.sessionEvent(domain.EventEmptyGesture))
		}
		c.logger.Debug("session completed without ink", "session_id", sessionID)
		c.mu.Unlock()
		return
	}

	capture, err := CaptureObjects(c.surface, objects, c.pixelRatio)
	c.surface.Clear()

	if c.hooks.OnSessionComplete != nil {
		c.hooks.OnSessionComplete(c.ctx, &domain.CaptureEvent{
			EventBase: c.base(domain.EventSessionComplete),
			Region:    capture.Region,
			Pixels:    capture.Pixels,
			Strokes:   len(objects),
			Err:       err,
		})
	}
	if err != nil {
		c.logger.Warn("capture failed", "session_id", sessionID, "err", err)
		c.mu.Unlock()
		return
	}
	c.logger.Info("session completed",
		"session_id", sessionID,
		"strokes", len(objects),
		"region", capture.Region,
		"pixels", capture.Pixels,
	)

	slot := c.seq.reserve()
	epoch := c.epoch
	c.inflight.Add(1)
	c.mu.Unlock()

	go c.predict(slot, epoch, sessionID, capture.Image)
}

func (c *Controller) predict(slot, epoch uint64, sessionID string, img *image.RGBA) {
	defer c.inflight.Done()

	if err := c.sem.Acquire(c.ctx, 1); err != nil {
		c.settle(slot, epoch, sessionID, domain.Prediction{}, 0, err)
		return
	}
	start := time.Now()
	pred, err := c.predictor.Predict(c.ctx, img)
	c.sem.Release(1)

	c.settle(slot, epoch, sessionID, pred, time.Since(start), err)
}

func (c *Controller) settle(slot, epoch uint64, sessionID string, pred domain.Prediction, took time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev := &domain.PredictionEvent{
		EventBase:  domain.EventBase{Timestamp: c.clock.Now(), Type: domain.EventPrediction, SessionID: sessionID},
		Prediction: pred,
		Duration:   took,
		Err:        err,
	}

	switch {
	case epoch != c.epoch:
		ev.Dropped = true
		c.logger.Debug("prediction dropped after clear", "session_id", sessionID)
	case err != nil:
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("prediction failed", "session_id", sessionID, "err", err)
		}
		c.release(slot, "", false)
	default:
		ev.Text = c.policy.Apply(pred)
		c.logger.Info("prediction",
			"session_id", sessionID,
			"character", pred.Character,
			"confidence", pred.Confidence,
			"duration", took,
		)
		c.release(slot, ev.Text, true)
	}

	if c.hooks.OnPrediction != nil {
		c.hooks.OnPrediction(c.ctx, ev)
	}
}

func (c *Controller) release(slot uint64, text string, ok bool) {
	for _, t := range c.seq.settle(slot, text, ok) {
		c.sink.Append(t)
	}
}

// Clear is the external clear control: it empties the output, resets the
// predictor's accumulated input and blanks the surface. A pending session is
// abandoned, so the next stroke starts a new one. Results of sessions
// completed before the clear are discarded. Like every other interaction it
// is ignored (domain.ErrNotReady) until the controller is bound.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	if c.state == domain.StateUninitialized {
		c.mu.Unlock()
		return domain.ErrNotReady
	}
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.token++
	c.timedOut = true
	if c.state == domain.StatePending {
		c.state = domain.StateIdle
	}
	c.surface.Clear()
	c.sink.Clear()
	c.epoch++
	c.seq = newSequencer()
	c.mu.Unlock()

	c.logger.Info("output cleared")
	return c.predictor.ClearInput(ctx)
}

// Resize recomputes the surface dimensions. An in-flight session is neither
// canceled nor completed.
func (c *Controller) Resize(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrClosed
	}
	return c.surface.SetDimensions(width, height)
}

// State returns the current gesture state.
func (c *Controller) State() domain.GestureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a consistent view of the controller, surface and sink.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	canvas := domain.CanvasBlank
	if len(c.surface.Objects()) > 0 {
		canvas = domain.CanvasHasStrokes
	}
	return domain.Snapshot{
		State:     c.state,
		Canvas:    canvas,
		Ready:     c.state != domain.StateUninitialized,
		SessionID: c.sessionID,
		Text:      c.sink.Text(),
		InFlight:  c.seq.waiting(),
	}
}

// Wait blocks until every prediction dispatched so far has settled.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close stops the pending timer, cancels in-flight predictions and waits for
// them to settle. Close is idempotent.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.token++
	c.mu.Unlock()

	c.cancel()
	c.inflight.Wait()
	return nil
}

func (c *Controller) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: c.clock.Now(), Type: t, SessionID: c.sessionID}
}

func (c *Controller) sessionEvent(t domain.EventType) *domain.SessionEvent {
	return &domain.SessionEvent{EventBase: c.base(t), Strokes: len(c.surface.Objects())}
}
