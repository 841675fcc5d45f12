package domain

import (
	"strconv"
	"strings"
)

// Prediction is the model's answer for one captured character.
type Prediction struct {
	Character  string  `json:"character"`
	Confidence float64 `json:"confidence"`
}

// DefaultPlaceholder is appended instead of a rejected low-confidence character.
const DefaultPlaceholder = "?"

// DefaultConfidenceThreshold is the cut-off used when the policy is enabled.
const DefaultConfidenceThreshold = 0.5

// ConfidencePolicy decides what text a prediction contributes to the output.
// When disabled, the predicted character is always used.
type ConfidencePolicy struct {
	Enabled     bool    `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Threshold   float64 `json:"threshold" yaml:"threshold" mapstructure:"threshold"`
	Placeholder string  `json:"placeholder" yaml:"placeholder" mapstructure:"placeholder"`
}

// DefaultConfidencePolicy returns the disabled policy with the stock threshold and placeholder.
func DefaultConfidencePolicy() ConfidencePolicy {
	return ConfidencePolicy{
		Enabled:     false,
		Threshold:   DefaultConfidenceThreshold,
		Placeholder: DefaultPlaceholder,
	}
}

// Apply returns the text to append for p.
func (c ConfidencePolicy) Apply(p Prediction) string {
	if !c.Enabled || p.Confidence > c.Threshold {
		return p.Character
	}
	if c.Placeholder == "" {
		return DefaultPlaceholder
	}
	return c.Placeholder
}

// ParseBrushWidth parses a brush width control value the way a form field is
// read: the leading integer wins, anything unparsable or non-positive yields 1.
// Values above MaxBrushWidth are returned as parsed; callers decide whether
// to reject or clamp them.
func ParseBrushWidth(value string) int {
	value = strings.TrimSpace(value)
	end := 0
	for end < len(value) && (value[end] >= '0' && value[end] <= '9' || end == 0 && (value[end] == '-' || value[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
