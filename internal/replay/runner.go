package replay

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/glyph"
	"github.com/aretw0/glyph/internal/logging"
	"github.com/aretw0/glyph/internal/presentation/graph"
	"github.com/aretw0/glyph/internal/runtime"
	"github.com/aretw0/glyph/internal/vclock"
	"github.com/aretw0/glyph/pkg/adapters/memory"
	"github.com/aretw0/glyph/pkg/domain"
)

// Session is one completed gesture session of a replay.
type Session struct {
	SessionID  string
	Strokes    int
	Pixels     image.Rectangle
	Prediction domain.Prediction
	Text       string
	Err        error
}

// Transcript is the outcome of a replay.
type Transcript struct {
	Sessions []Session
	Empty    int
	Clears   int
	Text     string
	// Visited lists the controller states observed between steps, in order
	// of first appearance. State is the final one.
	Visited []domain.GestureState
	State   domain.GestureState
}

// Runner replays scripts through a real canvas and controller.
type Runner struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger passed to the pad.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithLifecycleHooks adds hooks observing the replay.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = h
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type recorder struct {
	mu       sync.Mutex
	sessions []Session
	index    map[string]int
	empty    int
}

func (rec *recorder) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEmptyGesture: func(ctx context.Context, e *domain.SessionEvent) {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.empty++
		},
		OnSessionComplete: func(ctx context.Context, e *domain.CaptureEvent) {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.index[e.SessionID] = len(rec.sessions)
			rec.sessions = append(rec.sessions, Session{
				SessionID: e.SessionID,
				Strokes:   e.Strokes,
				Pixels:    e.Pixels,
				Err:       e.Err,
			})
		},
		OnPrediction: func(ctx context.Context, e *domain.PredictionEvent) {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			i, ok := rec.index[e.SessionID]
			if !ok {
				return
			}
			rec.sessions[i].Prediction = e.Prediction
			rec.sessions[i].Text = e.Text
			if e.Err != nil {
				rec.sessions[i].Err = e.Err
			}
		},
	}
}

// Run replays script and returns its transcript. Waits advance a virtual
// clock, so a replay never sleeps.
func (r *Runner) Run(ctx context.Context, script Script) (*Transcript, error) {
	clock := vclock.New()
	rec := &recorder{index: make(map[string]int)}

	debounce := script.Debounce
	if debounce <= 0 {
		debounce = runtime.DebounceFor(script.InputMode)
	}

	pad, err := glyph.New(memory.NewPredictor(script.Predictions),
		glyph.WithClock(clock),
		glyph.WithDebounce(debounce),
		glyph.WithPixelRatio(script.PixelRatio),
		glyph.WithViewport(script.Viewport.Width, script.Viewport.Height),
		glyph.WithConfidencePolicy(script.Confidence),
		glyph.WithLogger(r.logger),
		glyph.WithLifecycleHooks(domain.ChainHooks(rec.hooks(), r.hooks)),
	)
	if err != nil {
		return nil, err
	}
	defer pad.Close()

	pad.Start(ctx)
	select {
	case <-pad.Ready():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	out := &Transcript{}
	observe := func() {
		state := pad.Snapshot().State
		if !slices.Contains(out.Visited, state) {
			out.Visited = append(out.Visited, state)
		}
		out.State = state
	}
	observe()
	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.logger.Debug("replay step", "index", i+1, "kind", step.Kind())

		switch step.Kind() {
		case "stroke":
			points, err := step.Points()
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
			pad.DrawStroke(points...)
		case "wait":
			clock.Advance(step.Wait)
			pad.Wait()
		case "clear":
			pad.Wait()
			if err := pad.Clear(ctx); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
			out.Clears++
		case "resize":
			if err := pad.Resize(step.Resize.Width, step.Resize.Height); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
		case "brush":
			pad.SetBrushWidth(step.Brush)
		}
		observe()
	}

	// Let a trailing session complete.
	clock.Advance(debounce)
	pad.Wait()
	observe()

	rec.mu.Lock()
	out.Sessions = append(out.Sessions, rec.sessions...)
	out.Empty = rec.empty
	rec.mu.Unlock()
	out.Text = pad.Text()
	return out, nil
}

// Markdown renders the transcript as a markdown document.
func (t *Transcript) Markdown() string {
	var b strings.Builder
	b.WriteString("# Replay transcript\n\n")
	if len(t.Sessions) == 0 {
		b.WriteString("_No session completed._\n\n")
	} else {
		b.WriteString("| # | Strokes | Crop | Prediction | Confidence | Appended |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for i, s := range t.Sessions {
			pred := s.Prediction.Character
			if s.Err != nil {
				pred = "error: " + s.Err.Error()
			}
			fmt.Fprintf(&b, "| %d | %d | %dx%d at (%d,%d) | %s | %.2f | %s |\n",
				i+1, s.Strokes, s.Pixels.Dx(), s.Pixels.Dy(), s.Pixels.Min.X, s.Pixels.Min.Y,
				pred, s.Prediction.Confidence, quote(s.Text))
		}
		b.WriteString("\n")
	}
	if t.Empty > 0 {
		fmt.Fprintf(&b, "Empty gestures: %d\n\n", t.Empty)
	}
	if t.Clears > 0 {
		fmt.Fprintf(&b, "Clears: %d\n\n", t.Clears)
	}
	fmt.Fprintf(&b, "**Output:** %s\n", quote(t.Text))
	return b.String()
}

// Diagram renders the gesture state machine as a Mermaid block with the
// states the replay went through highlighted.
func (t *Transcript) Diagram() string {
	overlay := &graph.Overlay{Visited: t.Visited, Current: t.State}
	return "```mermaid\n" + graph.GenerateMermaid(overlay) + "```\n"
}

func quote(s string) string {
	if s == "" {
		return "_(empty)_"
	}
	return "`" + s + "`"
}
