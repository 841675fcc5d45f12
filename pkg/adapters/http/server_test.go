package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/glyph"
	"github.com/aretw0/glyph/internal/vclock"
	handler "github.com/aretw0/glyph/pkg/adapters/http"
	"github.com/aretw0/glyph/pkg/adapters/memory"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const debounce = 50 * time.Millisecond

func newPad(t *testing.T, predictor *memory.Predictor) (*glyph.Pad, *vclock.Clock) {
	t.Helper()
	clock := vclock.New()
	pad, err := glyph.New(predictor,
		glyph.WithClock(clock),
		glyph.WithDebounce(debounce),
		glyph.WithCanvasSize(100, 80),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pad.Close() })
	return pad, clock
}

func start(t *testing.T, pad *glyph.Pad) {
	t.Helper()
	pad.Start(context.Background())
	select {
	case <-pad.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("pad never became ready")
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func TestHandler_StrokeToOutput(t *testing.T) {
	pad, clock := newPad(t, memory.NewPredictor([]domain.Prediction{{Character: "h", Confidence: 0.9}}))
	start(t, pad)
	h := handler.NewHandler(pad)

	w := do(t, h, "POST", "/strokes", `{"points":[[10,10],[40,50]]}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	var state handler.StateResponse
	decode(t, do(t, h, "GET", "/state", ""), &state)
	assert.Equal(t, "pending", state.State)
	assert.Equal(t, "has-strokes", state.Canvas)
	assert.True(t, state.Ready)

	clock.Advance(debounce + time.Millisecond)
	pad.Wait()

	var out map[string]string
	decode(t, do(t, h, "GET", "/output", ""), &out)
	assert.Equal(t, "h", out["text"])
}

func TestHandler_PointerRoutes(t *testing.T) {
	pad, clock := newPad(t, memory.NewPredictor([]domain.Prediction{{Character: "p", Confidence: 0.9}}))
	start(t, pad)
	h := handler.NewHandler(pad)

	assert.Equal(t, http.StatusNoContent, do(t, h, "POST", "/pointer/down", `{"x":5,"y":5}`).Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, "POST", "/pointer/move", `{"x":15,"y":10}`).Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, "POST", "/pointer/up", `{"x":20,"y":30}`).Code)

	clock.Advance(debounce + time.Millisecond)
	pad.Wait()
	assert.Equal(t, "p", pad.Text())
}

func TestHandler_InvalidBody(t *testing.T) {
	pad, _ := newPad(t, memory.NewPredictor(nil))
	h := handler.NewHandler(pad)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/pointer/down", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/strokes", `{"points":[]}`).Code)
}

func TestHandler_ClearBeforeReadyIsIgnored(t *testing.T) {
	gate := make(chan struct{})
	pad, _ := newPad(t, memory.NewPredictor(nil, memory.WithGate(gate)))
	pad.Start(context.Background())
	h := handler.NewHandler(pad)

	var out map[string]bool
	w := do(t, h, "POST", "/clear", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &out)
	assert.True(t, out["ignored"])

	close(gate)
	<-pad.Ready()
	w = do(t, h, "POST", "/clear", "")
	decode(t, w, &out)
	assert.False(t, out["ignored"])
}

func TestHandler_Resize(t *testing.T) {
	pad, _ := newPad(t, memory.NewPredictor(nil))
	start(t, pad)
	h := handler.NewHandler(pad)

	var size map[string]int
	w := do(t, h, "POST", "/resize", `{"viewport_width":1000,"viewport_height":800}`)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &size)
	assert.Equal(t, 1000, size["width"])
	assert.Equal(t, 476, size["height"])

	w = do(t, h, "POST", "/resize", `{"viewport_width":0,"viewport_height":800}`)
	assert.Equal(t, http.StatusOK, w.Code, "degenerate viewports clamp to a 1px canvas")
}

func TestHandler_Brush(t *testing.T) {
	pad, _ := newPad(t, memory.NewPredictor(nil))
	h := handler.NewHandler(pad)

	cases := map[string]int{
		`{"width":"12px"}`: 12,
		`{"width":7}`:      7,
		`{"width":"abc"}`:  1,
		`{}`:               1,
	}
	for body, want := range cases {
		var out map[string]int
		w := do(t, h, "POST", "/brush", body)
		require.Equal(t, http.StatusOK, w.Code, body)
		decode(t, w, &out)
		assert.Equal(t, want, out["width"], body)
	}
}

func TestHandler_Canvas(t *testing.T) {
	pad, _ := newPad(t, memory.NewPredictor(nil))
	h := handler.NewHandler(pad)

	w := do(t, h, "GET", "/canvas.png", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestHandler_Mount(t *testing.T) {
	pad, _ := newPad(t, memory.NewPredictor(nil))
	h := handler.NewHandler(pad, handler.WithMount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})))

	w := do(t, h, "GET", "/metrics", "")
	assert.Equal(t, "metrics", w.Body.String())
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/health", "").Code)
}

func TestHandler_Events(t *testing.T) {
	pad, clock := newPad(t, memory.NewPredictor([]domain.Prediction{{Character: "e", Confidence: 1}}))
	start(t, pad)
	srv := httptest.NewServer(handler.NewHandler(pad))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	reader := bufio.NewReader(res.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	pad.DrawStroke(domain.Point{X: 1, Y: 1}, domain.Point{X: 20, Y: 20})
	clock.Advance(debounce + time.Millisecond)
	pad.Wait()

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			break
		}
	}
	assert.Equal(t, "data: {\"text\":\"e\"}\n", line)
}

func TestHandler_Diagram(t *testing.T) {
	pad, _ := newPad(t, memory.NewPredictor(nil))
	start(t, pad)
	h := handler.NewHandler(pad)

	w := do(t, h, "GET", "/diagram", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "stateDiagram-v2")
	assert.Contains(t, w.Body.String(), "class idle current")
}

func TestHandler_RejectsPointsOffCanvas(t *testing.T) {
	predictor := memory.NewPredictor([]domain.Prediction{{Character: "k", Confidence: 0.9}})
	pad, clock := newPad(t, predictor)
	start(t, pad)
	h := handler.NewHandler(pad)

	for _, req := range []struct{ path, body string }{
		{"/strokes", `{"points":[[10,10],[1000000,1000000]]}`},
		{"/strokes", `{"points":[[-5,10],[20,20]]}`},
		{"/pointer/down", `{"x":101,"y":5}`},
		{"/pointer/move", `{"x":5,"y":-1}`},
		{"/pointer/up", `{"x":5,"y":81}`},
	} {
		w := do(t, h, "POST", req.path, req.body)
		require.Equal(t, http.StatusBadRequest, w.Code, req.body)
		var out map[string]string
		decode(t, w, &out)
		assert.Contains(t, out["error"], domain.ErrOutOfBounds.Error(), req.body)
	}

	clock.Advance(10 * debounce)
	pad.Wait()
	assert.Empty(t, predictor.Inputs(), "rejected input never reaches the canvas")
	assert.Equal(t, domain.CanvasBlank, pad.Snapshot().Canvas)

	require.Equal(t, http.StatusNoContent, do(t, h, "POST", "/strokes", `{"points":[[0,0],[100,80]]}`).Code,
		"the canvas edges are accepted")
}

func TestHandler_BrushTooWide(t *testing.T) {
	pad, _ := newPad(t, memory.NewPredictor(nil))
	h := handler.NewHandler(pad)

	for _, body := range []string{`{"width":"101"}`, `{"width":99999999}`} {
		w := do(t, h, "POST", "/brush", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		var out map[string]string
		decode(t, w, &out)
		assert.Contains(t, out["error"], domain.ErrInvalidBrushWidth.Error(), body)
	}

	var out map[string]int
	w := do(t, h, "POST", "/brush", `{"width":100}`)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &out)
	assert.Equal(t, domain.MaxBrushWidth, out["width"])
}
