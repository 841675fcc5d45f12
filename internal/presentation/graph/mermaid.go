package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/glyph/pkg/domain"
)

// Overlay contains dynamic state data to visualize on the diagram.
type Overlay struct {
	Visited []domain.GestureState
	Current domain.GestureState
}

// Transition is one labelled edge of the gesture state machine.
type Transition struct {
	From, To domain.GestureState
	Label    string
}

// Transitions lists the edges of the capture controller's state machine.
var Transitions = []Transition{
	{From: domain.StateUninitialized, To: domain.StateIdle, Label: "predictor ready"},
	{From: domain.StateIdle, To: domain.StateDrawing, Label: "pointer down"},
	{From: domain.StateDrawing, To: domain.StatePending, Label: "pointer up"},
	{From: domain.StatePending, To: domain.StateDrawing, Label: "pointer down (extend)"},
	{From: domain.StatePending, To: domain.StateIdle, Label: "debounce elapsed"},
	{From: domain.StatePending, To: domain.StateIdle, Label: "clear"},
}

// GenerateMermaid produces a Mermaid stateDiagram-v2 of the gesture state
// machine. The uninitialized state hangs off the start marker. Overlay
// styles (visited/current) are applied if provided.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(&sb, "    [*] --> %s\n", sanitizeMermaidID(string(domain.StateUninitialized)))

	for _, t := range Transitions {
		fmt.Fprintf(&sb, "    %s --> %s : %s\n",
			sanitizeMermaidID(string(t.From)), sanitizeMermaidID(string(t.To)), t.Label)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000\n")

		seen := make(map[string]bool)
		for _, state := range overlay.Visited {
			id := sanitizeMermaidID(string(state))
			if id == "" || seen[id] || state == overlay.Current {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited\n", id)
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current\n", sanitizeMermaidID(string(overlay.Current)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
