package replay

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/glyph/internal/config"
	"github.com/aretw0/glyph/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Script is a scripted gesture sequence replayed against a virtual clock.
type Script struct {
	PixelRatio  float64                 `mapstructure:"pixel_ratio"`
	Viewport    Viewport                `mapstructure:"viewport"`
	InputMode   domain.InputMode        `mapstructure:"input_mode"`
	Debounce    time.Duration           `mapstructure:"debounce"`
	Confidence  domain.ConfidencePolicy `mapstructure:"confidence"`
	Predictions []domain.Prediction     `mapstructure:"predictions"`
	Steps       []Step                  `mapstructure:"steps"`
}

// Viewport is a browser-like viewport size the canvas is derived from.
type Viewport struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Step is one action of a script. Exactly one field is set.
type Step struct {
	Stroke [][]float64   `mapstructure:"stroke"`
	Wait   time.Duration `mapstructure:"wait"`
	Clear  bool          `mapstructure:"clear"`
	Resize *Viewport     `mapstructure:"resize"`
	Brush  string        `mapstructure:"brush"`
}

// Kind names the action of the step.
func (s Step) Kind() string {
	switch {
	case len(s.Stroke) > 0:
		return "stroke"
	case s.Wait > 0:
		return "wait"
	case s.Clear:
		return "clear"
	case s.Resize != nil:
		return "resize"
	case s.Brush != "":
		return "brush"
	}
	return ""
}

// Points converts the stroke pairs into canvas points.
func (s Step) Points() ([]domain.Point, error) {
	points := make([]domain.Point, 0, len(s.Stroke))
	for i, pair := range s.Stroke {
		if len(pair) != 2 {
			return nil, fmt.Errorf("point %d: expected [x, y], got %v", i, pair)
		}
		points = append(points, domain.Point{X: pair[0], Y: pair[1]})
	}
	return points, nil
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML script and validates its steps.
func ParseScript(data []byte) (Script, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	script := Script{
		PixelRatio: 1,
		Viewport:   Viewport{Width: 800, Height: 600},
		InputMode:  domain.InputMouse,
		Confidence: domain.DefaultConfidencePolicy(),
	}
	if err := config.DecodeMap(raw, &script); err != nil {
		return Script{}, fmt.Errorf("failed to decode script: %w", err)
	}
	for i, step := range script.Steps {
		if step.Kind() == "" {
			return Script{}, fmt.Errorf("step %d: no action", i+1)
		}
		if _, err := step.Points(); err != nil {
			return Script{}, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return script, nil
}
