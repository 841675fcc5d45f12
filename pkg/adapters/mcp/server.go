package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/glyph"
	"github.com/aretw0/glyph/internal/logging"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// OutputURI is the resource exposing the recognised text.
const OutputURI = "glyph://output"

// Pad defines what the MCP server needs from a drawing pad.
type Pad interface {
	DrawStroke(points ...domain.Point)
	CanvasSize() (width, height int)
	Clear(ctx context.Context) error
	Snapshot() domain.Snapshot
	Text() string
}

var _ Pad = (*glyph.Pad)(nil)

// StateResponse is the structured result of the pad tools.
type StateResponse struct {
	State    string `json:"state" jsonschema_description:"Gesture state of the pad"`
	Canvas   string `json:"canvas" jsonschema_description:"Whether the canvas holds ink"`
	Ready    bool   `json:"ready" jsonschema_description:"Whether the pad accepts input"`
	Text     string `json:"text" jsonschema_description:"Recognised text so far"`
	InFlight int    `json:"in_flight" jsonschema_description:"Completed sessions awaiting a prediction"`
}

// DrawStrokeArgs are the arguments of draw_stroke.
type DrawStrokeArgs struct {
	Points [][2]float64 `json:"points"`
}

// Server exposes a pad as an MCP server.
type Server struct {
	pad       Pad
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(pad Pad, opts ...Option) *Server {
	s := &Server{
		pad:       pad,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("glyph-mcp", strings.TrimSpace(glyph.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	drawTool := mcp.NewTool("draw_stroke",
		mcp.WithDescription("Draw one stroke on the pad. Strokes drawn within the debounce window form one character."),
		mcp.WithArray("points", mcp.Required(),
			mcp.Description("Stroke points as [x, y] pairs in canvas pixels, within the canvas size"),
			mcp.Items(map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "number"},
				"minItems": 2,
				"maxItems": 2,
			}),
		),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(drawTool, mcp.NewStructuredToolHandler(s.handleDrawStroke))

	s.mcpServer.AddTool(mcp.NewTool("get_output",
		mcp.WithDescription("Get the recognised text and the pad state."),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetOutput))

	s.mcpServer.AddTool(mcp.NewTool("clear_output",
		mcp.WithDescription("Clear the recognised text, the model input and the canvas."),
	), s.handleClearOutput)
}

func (s *Server) handleClearOutput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.pad.Clear(ctx); err != nil {
		if errors.Is(err, domain.ErrNotReady) {
			return mcp.NewToolResultText("pad not ready; nothing cleared"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("clear failed: %v", err)), nil
	}
	return mcp.NewToolResultText("cleared"), nil
}

func (s *Server) handleDrawStroke(ctx context.Context, request mcp.CallToolRequest, args DrawStrokeArgs) (StateResponse, error) {
	if len(args.Points) == 0 {
		return StateResponse{}, fmt.Errorf("points are required")
	}
	points := make([]domain.Point, len(args.Points))
	width, height := s.pad.CanvasSize()
	for i, p := range args.Points {
		points[i] = domain.Point{X: p[0], Y: p[1]}
		if !points[i].Within(width, height) {
			return StateResponse{}, fmt.Errorf("%w: point %d (%g, %g) not on %dx%d canvas",
				domain.ErrOutOfBounds, i, p[0], p[1], width, height)
		}
	}
	s.pad.DrawStroke(points...)
	s.logger.Debug("MCP stroke drawn", "points", len(points))
	return s.state(), nil
}

func (s *Server) handleGetOutput(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	return s.state(), nil
}

func (s *Server) state() StateResponse {
	snap := s.pad.Snapshot()
	return StateResponse{
		State:    string(snap.State),
		Canvas:   string(snap.Canvas),
		Ready:    snap.Ready,
		Text:     snap.Text,
		InFlight: snap.InFlight,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(OutputURI, "Recognised Text",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(map[string]string{"text": s.pad.Text()})
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      OutputURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
