package domain

// GestureState is the position of the capture controller in its state machine.
type GestureState string

const (
	StateUninitialized GestureState = "uninitialized" // Waiting for the prediction service
	StateIdle          GestureState = "idle"          // Previous session completed (or none yet)
	StateDrawing       GestureState = "drawing"       // Pointer is down
	StatePending       GestureState = "pending"       // Pointer is up, completion timer armed
)

// CanvasState tells whether the drawing surface holds any ink.
type CanvasState string

const (
	CanvasBlank      CanvasState = "blank"
	CanvasHasStrokes CanvasState = "has-strokes"
)

// InputMode selects the debounce cadence of the controller.
type InputMode string

const (
	InputMouse InputMode = "mouse"
	InputTouch InputMode = "touch"
)

// Snapshot is a read-only view of the controller.
type Snapshot struct {
	State     GestureState `json:"state"`
	Canvas    CanvasState  `json:"canvas"`
	Ready     bool         `json:"ready"`
	SessionID string       `json:"session_id,omitempty"`
	Text      string       `json:"text"`
	InFlight  int          `json:"in_flight"`
}
