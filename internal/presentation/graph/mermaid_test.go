package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/glyph/internal/presentation/graph"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		overlay     *graph.Overlay
		contains    []string
		notContains []string
	}{
		{
			name: "Plain Diagram",
			contains: []string{
				"stateDiagram-v2\n",
				"[*] --> uninitialized",
				"uninitialized --> idle : predictor ready",
				"idle --> drawing : pointer down",
				"drawing --> pending : pointer up",
				"pending --> drawing : pointer down (extend)",
				"pending --> idle : debounce elapsed",
			},
			notContains: []string{"classDef"},
		},
		{
			name: "Overlay",
			overlay: &graph.Overlay{
				Visited: []domain.GestureState{domain.StateIdle, domain.StateDrawing, domain.StateIdle, domain.StatePending},
				Current: domain.StatePending,
			},
			contains: []string{
				"classDef visited",
				"class idle visited",
				"class drawing visited",
				"class pending current",
			},
			notContains: []string{"class pending visited"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestGenerateMermaid_VisitedDeduplicated(t *testing.T) {
	got := graph.GenerateMermaid(&graph.Overlay{
		Visited: []domain.GestureState{domain.StateDrawing, domain.StateDrawing},
	})
	assert.Equal(t, 1, strings.Count(got, "class drawing visited"))
}
