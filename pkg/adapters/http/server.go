package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/glyph"
	"github.com/aretw0/glyph/internal/logging"
	"github.com/aretw0/glyph/internal/presentation/graph"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// Pad defines the drawing pad driven by the HTTP adapter.
type Pad interface {
	PointerDown(x, y float64)
	PointerMove(x, y float64)
	PointerUp(x, y float64)
	DrawStroke(points ...domain.Point)
	Clear(ctx context.Context) error
	Resize(viewportWidth, viewportHeight int) error
	SetBrushWidth(raw string) int
	Snapshot() domain.Snapshot
	Text() string
	Subscribe() (<-chan string, func())
	CanvasSize() (width, height int)
	EncodePNG(w io.Writer) error
}

var _ Pad = (*glyph.Pad)(nil)

// Server serves the pad over HTTP.
type Server struct {
	Pad    Pad
	logger *slog.Logger
	mounts map[string]http.Handler
}

// HandlerOption configures the handler.
type HandlerOption func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMount serves h under pattern, e.g. a metrics endpoint.
func WithMount(pattern string, h http.Handler) HandlerOption {
	return func(s *Server) {
		s.mounts[pattern] = h
	}
}

// NewHandler creates a new HTTP handler for the pad.
func NewHandler(pad Pad, opts ...HandlerOption) http.Handler {
	s := &Server{
		Pad:    pad,
		logger: logging.NewNop(),
		mounts: make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Route("/pointer", func(r chi.Router) {
		r.Post("/down", s.pointer(pad.PointerDown))
		r.Post("/move", s.pointer(pad.PointerMove))
		r.Post("/up", s.pointer(pad.PointerUp))
	})
	r.Post("/strokes", s.Stroke)
	r.Post("/clear", s.Clear)
	r.Post("/resize", s.Resize)
	r.Post("/brush", s.Brush)
	r.Get("/state", s.GetState)
	r.Get("/output", s.GetOutput)
	r.Get("/canvas.png", s.GetCanvas)
	r.Get("/diagram", s.GetDiagram)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	for pattern, h := range s.mounts {
		r.Handle(pattern, h)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PointRequest is a single pointer position in canvas coordinates.
type PointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StrokeRequest is a full gesture as [x, y] pairs.
type StrokeRequest struct {
	Points [][2]float64 `json:"points"`
}

// ResizeRequest carries the viewport size the canvas is derived from.
type ResizeRequest struct {
	ViewportWidth  int `json:"viewport_width"`
	ViewportHeight int `json:"viewport_height"`
}

// BrushRequest carries the raw brush width input; strings and numbers are accepted.
type BrushRequest struct {
	Width json.RawMessage `json:"width"`
}

// StateResponse describes the pad.
type StateResponse struct {
	State        string `json:"state"`
	Canvas       string `json:"canvas"`
	Ready        bool   `json:"ready"`
	SessionID    string `json:"session_id,omitempty"`
	Text         string `json:"text"`
	InFlight     int    `json:"in_flight"`
	CanvasWidth  int    `json:"canvas_width"`
	CanvasHeight int    `json:"canvas_height"`
}

func (s *Server) pointer(f func(x, y float64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body PointRequest
		if !s.decode(w, r, &body) {
			return
		}
		if err := s.onCanvas(domain.Point{X: body.X, Y: body.Y}); err != nil {
			s.fail(w, "Pointer", err)
			return
		}
		f(body.X, body.Y)
		w.WriteHeader(http.StatusNoContent)
	}
}

// Stroke handles POST /strokes.
func (s *Server) Stroke(w http.ResponseWriter, r *http.Request) {
	var body StrokeRequest
	if !s.decode(w, r, &body) {
		return
	}
	if len(body.Points) == 0 {
		writeError(w, http.StatusBadRequest, "points are required")
		return
	}
	points := make([]domain.Point, len(body.Points))
	for i, p := range body.Points {
		points[i] = domain.Point{X: p[0], Y: p[1]}
		if err := s.onCanvas(points[i]); err != nil {
			s.fail(w, "Stroke", err)
			return
		}
	}
	s.Pad.DrawStroke(points...)
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles POST /clear. A clear before the pad is ready is ignored.
func (s *Server) Clear(w http.ResponseWriter, r *http.Request) {
	err := s.Pad.Clear(r.Context())
	switch {
	case errors.Is(err, domain.ErrNotReady):
		writeJSON(w, http.StatusOK, map[string]bool{"ignored": true})
	case err != nil:
		s.fail(w, "Clear", err)
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"ignored": false})
	}
}

// Resize handles POST /resize.
func (s *Server) Resize(w http.ResponseWriter, r *http.Request) {
	var body ResizeRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.Pad.Resize(body.ViewportWidth, body.ViewportHeight); err != nil {
		s.fail(w, "Resize", err)
		return
	}
	width, height := s.Pad.CanvasSize()
	writeJSON(w, http.StatusOK, map[string]int{"width": width, "height": height})
}

// Brush handles POST /brush.
func (s *Server) Brush(w http.ResponseWriter, r *http.Request) {
	var body BrushRequest
	if !s.decode(w, r, &body) {
		return
	}
	raw := strings.TrimSpace(string(body.Width))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	if width := domain.ParseBrushWidth(raw); width > domain.MaxBrushWidth {
		s.fail(w, "Brush", fmt.Errorf("%w: %d exceeds %d", domain.ErrInvalidBrushWidth, width, domain.MaxBrushWidth))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"width": s.Pad.SetBrushWidth(raw)})
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	snap := s.Pad.Snapshot()
	width, height := s.Pad.CanvasSize()
	writeJSON(w, http.StatusOK, StateResponse{
		State:        string(snap.State),
		Canvas:       string(snap.Canvas),
		Ready:        snap.Ready,
		SessionID:    snap.SessionID,
		Text:         snap.Text,
		InFlight:     snap.InFlight,
		CanvasWidth:  width,
		CanvasHeight: height,
	})
}

// GetOutput handles GET /output.
func (s *Server) GetOutput(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"text": s.Pad.Text()})
}

// GetCanvas handles GET /canvas.png.
func (s *Server) GetCanvas(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := s.Pad.EncodePNG(w); err != nil {
		s.logger.Error("GetCanvas encode failed", "err", err)
	}
}

// GetDiagram handles GET /diagram: the gesture state machine as Mermaid,
// with the current state highlighted.
func (s *Server) GetDiagram(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	overlay := &graph.Overlay{Current: s.Pad.Snapshot().State}
	_, _ = io.WriteString(w, graph.GenerateMermaid(overlay))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "glyph-http",
		"version": strings.TrimSpace(glyph.Version),
	})
}

// SubscribeEvents handles GET /events (SSE): the output text after every change.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Pad.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE client connected")

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected")
			return
		case text, ok := <-ch:
			if !ok {
				return
			}
			data, _ := json.Marshal(map[string]string{"text": text})
			fmt.Fprintf(w, "event: output\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

// onCanvas rejects points outside the current canvas.
func (s *Server) onCanvas(p domain.Point) error {
	width, height := s.Pad.CanvasSize()
	if !p.Within(width, height) {
		return fmt.Errorf("%w: (%g, %g) not on %dx%d", domain.ErrOutOfBounds, p.X, p.Y, width, height)
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidDimensions),
		errors.Is(err, domain.ErrOutOfBounds),
		errors.Is(err, domain.ErrInvalidBrushWidth):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	}
	writeError(w, status, fmt.Sprintf("%s error: %v", op, err))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
