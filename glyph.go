package glyph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/glyph/internal/runtime"
	"github.com/aretw0/glyph/pkg/adapters/canvas"
	"github.com/aretw0/glyph/pkg/adapters/memory"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/aretw0/glyph/pkg/ports"
)

// Default viewport used when no canvas size is configured.
const (
	DefaultViewportWidth  = 800
	DefaultViewportHeight = 600
)

// Pad is the high-level entry point of the library: a drawing canvas, the
// capture controller and an output buffer wired to one predictor.
type Pad struct {
	ctrl      *runtime.Controller
	surface   *canvas.Surface
	sink      *memory.Sink
	predictor ports.Predictor
	logger    *slog.Logger
}

type config struct {
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	clock       ports.Clock
	debounce    time.Duration
	pixelRatio  float64
	brushWidth  float64
	width       int
	height      int
	policy      *domain.ConfidencePolicy
	maxInFlight int64
}

// Option defines a functional option for configuring the Pad.
type Option func(*config)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithClock replaces the wall clock driving the debounce timer.
func WithClock(clock ports.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithInputMode selects the stock debounce for touch or mouse input.
func WithInputMode(mode domain.InputMode) Option {
	return func(c *config) {
		c.debounce = runtime.DebounceFor(mode)
	}
}

// WithDebounce sets an explicit debounce duration.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		c.debounce = d
	}
}

// WithPixelRatio sets the device pixel ratio of the canvas backing store.
func WithPixelRatio(ratio float64) Option {
	return func(c *config) {
		c.pixelRatio = ratio
	}
}

// WithBrushWidth sets the initial brush width in canvas pixels.
func WithBrushWidth(width float64) Option {
	return func(c *config) {
		c.brushWidth = width
	}
}

// WithViewport sizes the canvas from a viewport, like Resize does.
func WithViewport(width, height int) Option {
	return func(c *config) {
		c.width, c.height = domain.CanvasSize(width, height)
	}
}

// WithCanvasSize sets the canvas size directly.
func WithCanvasSize(width, height int) Option {
	return func(c *config) {
		c.width, c.height = width, height
	}
}

// WithConfidencePolicy sets the low-confidence fallback policy.
func WithConfidencePolicy(policy domain.ConfidencePolicy) Option {
	return func(c *config) {
		c.policy = &policy
	}
}

// WithMaxInFlight bounds concurrent prediction calls.
func WithMaxInFlight(n int64) Option {
	return func(c *config) {
		c.maxInFlight = n
	}
}

// New creates a pad for predictor. The pad ignores input until Start was
// called and the predictor reported ready.
func New(predictor ports.Predictor, opts ...Option) (*Pad, error) {
	if predictor == nil {
		return nil, fmt.Errorf("predictor is required")
	}
	cfg := config{
		debounce:   runtime.MouseDebounce,
		pixelRatio: 1,
		brushWidth: 1,
	}
	cfg.width, cfg.height = domain.CanvasSize(DefaultViewportWidth, DefaultViewportHeight)
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	surface, err := canvas.New(cfg.width, cfg.height,
		canvas.WithPixelRatio(cfg.pixelRatio),
		canvas.WithBrushWidth(cfg.brushWidth),
		canvas.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}
	sink := memory.NewSink()

	ctrlOpts := []runtime.ControllerOption{
		runtime.WithLogger(cfg.logger),
		runtime.WithLifecycleHooks(cfg.hooks),
		runtime.WithClock(cfg.clock),
		runtime.WithDebounce(cfg.debounce),
		runtime.WithPixelRatio(surface.PixelRatio()),
	}
	if cfg.policy != nil {
		ctrlOpts = append(ctrlOpts, runtime.WithConfidencePolicy(*cfg.policy))
	}
	if cfg.maxInFlight > 0 {
		ctrlOpts = append(ctrlOpts, runtime.WithMaxInFlight(cfg.maxInFlight))
	}

	return &Pad{
		ctrl:      runtime.NewController(surface, predictor, sink, ctrlOpts...),
		surface:   surface,
		sink:      sink,
		predictor: predictor,
		logger:    cfg.logger,
	}, nil
}

// Start waits in the background for the predictor and then enables input.
func (p *Pad) Start(ctx context.Context) {
	p.ctrl.Start(ctx)
}

// Ready is closed once the pad accepts input.
func (p *Pad) Ready() <-chan struct{} {
	return p.ctrl.Ready()
}

// PointerDown starts a stroke at (x, y) in canvas coordinates.
func (p *Pad) PointerDown(x, y float64) {
	p.surface.PointerDown(domain.Point{X: x, Y: y})
}

// PointerMove extends the current stroke.
func (p *Pad) PointerMove(x, y float64) {
	p.surface.PointerMove(domain.Point{X: x, Y: y})
}

// PointerUp ends the current stroke.
func (p *Pad) PointerUp(x, y float64) {
	p.surface.PointerUp(domain.Point{X: x, Y: y})
}

// DrawStroke replays a complete stroke.
func (p *Pad) DrawStroke(points ...domain.Point) {
	p.surface.DrawStroke(points...)
}

// Clear empties the output, resets the predictor's input and blanks the canvas.
func (p *Pad) Clear(ctx context.Context) error {
	return p.ctrl.Clear(ctx)
}

// Resize recomputes the canvas from the viewport size.
func (p *Pad) Resize(viewportWidth, viewportHeight int) error {
	return p.ctrl.Resize(domain.CanvasSize(viewportWidth, viewportHeight))
}

// SetBrushWidth sets the brush width from user input; anything without a
// leading integer means 1 and widths above domain.MaxBrushWidth are capped.
// It returns the width in effect.
func (p *Pad) SetBrushWidth(raw string) int {
	w := min(domain.ParseBrushWidth(raw), domain.MaxBrushWidth)
	p.surface.SetBrushWidth(float64(w))
	return w
}

// Snapshot returns the current state of the pad.
func (p *Pad) Snapshot() domain.Snapshot {
	return p.ctrl.Snapshot()
}

// Text returns the accumulated output.
func (p *Pad) Text() string {
	return p.sink.Text()
}

// Subscribe streams the output text after every change.
func (p *Pad) Subscribe() (<-chan string, func()) {
	return p.sink.Subscribe()
}

// CanvasSize returns the logical canvas size.
func (p *Pad) CanvasSize() (width, height int) {
	return p.surface.Size()
}

// EncodePNG writes the canvas backing store as PNG.
func (p *Pad) EncodePNG(w io.Writer) error {
	return p.surface.EncodePNG(w)
}

// Wait blocks until dispatched predictions have settled.
func (p *Pad) Wait() {
	p.ctrl.Wait()
}

// Close stops the pad and cancels pending predictions.
func (p *Pad) Close() error {
	return p.ctrl.Close()
}
