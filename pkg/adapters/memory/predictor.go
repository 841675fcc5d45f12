package memory

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/aretw0/glyph/pkg/domain"
)

// ErrExhausted is returned when a scripted predictor has no answers left.
var ErrExhausted = errors.New("scripted predictor exhausted")

// Predictor implements ports.Predictor by replaying a fixed list of answers.
// It is used by replays, demos and tests.
type Predictor struct {
	mu      sync.Mutex
	answers []domain.Prediction
	next    int
	repeat  bool
	inputs  []image.Rectangle
	clears  int
	ready   chan struct{}
	gate    <-chan struct{}
	once    sync.Once
}

// PredictorOption configures a scripted Predictor.
type PredictorOption func(*Predictor)

// WithGate holds readiness back until gate is closed.
func WithGate(gate <-chan struct{}) PredictorOption {
	return func(p *Predictor) {
		p.gate = gate
	}
}

// WithRepeat cycles through the answers instead of running out.
func WithRepeat() PredictorOption {
	return func(p *Predictor) {
		p.repeat = true
	}
}

// NewPredictor creates a scripted predictor answering with answers in order.
func NewPredictor(answers []domain.Prediction, opts ...PredictorOption) *Predictor {
	p := &Predictor{
		answers: append([]domain.Prediction(nil), answers...),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.gate == nil {
		close(p.ready)
	} else {
		go func() {
			<-p.gate
			p.once.Do(func() { close(p.ready) })
		}()
	}
	return p
}

// Ready is closed once the gate (if any) opened.
func (p *Predictor) Ready() <-chan struct{} {
	return p.ready
}

// Predict returns the next scripted answer and records the input size.
func (p *Predictor) Predict(ctx context.Context, img *image.RGBA) (domain.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Prediction{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if img != nil {
		p.inputs = append(p.inputs, img.Bounds())
	}
	if len(p.answers) == 0 {
		return domain.Prediction{}, ErrExhausted
	}
	if p.next >= len(p.answers) {
		if !p.repeat {
			return domain.Prediction{}, ErrExhausted
		}
		p.next = 0
	}
	ans := p.answers[p.next]
	p.next++
	return ans, nil
}

// ClearInput counts the reset.
func (p *Predictor) ClearInput(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clears++
	return nil
}

// Inputs returns the bounds of every buffer passed to Predict.
func (p *Predictor) Inputs() []image.Rectangle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]image.Rectangle(nil), p.inputs...)
}

// Clears returns how many times ClearInput was called.
func (p *Predictor) Clears() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clears
}
