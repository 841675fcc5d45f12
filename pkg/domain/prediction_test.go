package domain_test

import (
	"testing"

	"github.com/aretw0/glyph/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestConfidencePolicy_DisabledAlwaysAppends(t *testing.T) {
	policy := domain.DefaultConfidencePolicy()
	assert.False(t, policy.Enabled)
	assert.Equal(t, "x", policy.Apply(domain.Prediction{Character: "x", Confidence: 0.01}))
}

func TestConfidencePolicy_Enabled(t *testing.T) {
	policy := domain.DefaultConfidencePolicy()
	policy.Enabled = true

	assert.Equal(t, "k", policy.Apply(domain.Prediction{Character: "k", Confidence: 0.9}))
	assert.Equal(t, "?", policy.Apply(domain.Prediction{Character: "k", Confidence: 0.5}))

	policy.Placeholder = "_"
	assert.Equal(t, "_", policy.Apply(domain.Prediction{Character: "k", Confidence: 0.1}))

	policy.Placeholder = ""
	assert.Equal(t, domain.DefaultPlaceholder, policy.Apply(domain.Prediction{Character: "k", Confidence: 0.1}))
}

func TestParseBrushWidth(t *testing.T) {
	cases := map[string]int{
		"10":   10,
		" 7px": 7,
		"":     1,
		"abc":  1,
		"0":    1,
		"-4":   1,
		"+3":   3,
	}
	for in, want := range cases {
		assert.Equal(t, want, domain.ParseBrushWidth(in), "input %q", in)
	}
}
