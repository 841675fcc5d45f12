package remote

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/glyph/internal/logging"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

const (
	// DefaultPollInterval is the delay between readiness probes.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second
)

// Config describes a remote prediction service.
type Config struct {
	URL            string
	ApplicationKey string
	HMACKey        string
	// InputSize, when positive, letterboxes the crop into a square of this
	// many pixels before upload.
	InputSize    int
	PollInterval time.Duration
	Timeout      time.Duration
}

// Client implements ports.Predictor against an HTTP prediction service.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	ready  chan struct{}
	once   sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New creates a client. It is not ready until Warm succeeds.
func New(cfg Config, opts ...Option) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logging.NewNop(),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready is closed once the service answered its health check.
func (c *Client) Ready() <-chan struct{} {
	return c.ready
}

// Warm polls the health endpoint until it answers 200 or ctx is done.
func (c *Client) Warm(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		err := c.probe(ctx)
		if err == nil {
			c.once.Do(func() { close(c.ready) })
			c.logger.Info("prediction service ready", "url", c.cfg.URL, "attempts", attempt)
			return nil
		}
		c.logger.Debug("prediction service not ready", "attempt", attempt, "err", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("prediction service never became ready: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("health check status %d", res.StatusCode)
	}
	return nil
}

type predictResponse struct {
	Character  string  `json:"character"`
	Confidence float64 `json:"confidence"`
}

// Predict uploads the raw RGBA pixels and decodes the recognised character.
func (c *Client) Predict(ctx context.Context, img *image.RGBA) (domain.Prediction, error) {
	if img == nil {
		return domain.Prediction{}, fmt.Errorf("nil image")
	}
	img = c.normalise(img)
	b := img.Bounds()

	req, err := c.signed(ctx, "/predict", img.Pix)
	if err != nil {
		return domain.Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Image-Width", strconv.Itoa(b.Dx()))
	req.Header.Set("X-Image-Height", strconv.Itoa(b.Dy()))

	body, err := c.do(req)
	if err != nil {
		return domain.Prediction{}, err
	}
	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.Prediction{}, fmt.Errorf("failed to decode prediction: %w", err)
	}
	return domain.Prediction{Character: out.Character, Confidence: out.Confidence}, nil
}

// ClearInput resets the service's accumulated input.
func (c *Client) ClearInput(ctx context.Context) error {
	req, err := c.signed(ctx, "/clear", nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

func (c *Client) signed(ctx context.Context, path string, data []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.cfg.ApplicationKey != "" {
		req.Header.Set("applicationKey", c.cfg.ApplicationKey)
		req.Header.Set("hmac", Sign(c.cfg.ApplicationKey, c.cfg.HMACKey, data))
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: Status %d, Response: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// Sign returns the hex HMAC-SHA512 of data keyed with key+hmacKey.
func Sign(key, hmacKey string, data []byte) string {
	mac := hmac.New(sha512.New, []byte(key+hmacKey))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// normalise letterboxes img onto a transparent square and scales it to the
// configured input size.
func (c *Client) normalise(img *image.RGBA) *image.RGBA {
	size := c.cfg.InputSize
	if size <= 0 {
		return img
	}
	b := img.Bounds()
	side := max(b.Dx(), b.Dy(), 1)
	square := image.NewRGBA(image.Rect(0, 0, side, side))
	offset := image.Pt((side-b.Dx())/2, (side-b.Dy())/2)
	draw.Draw(square, b.Sub(b.Min).Add(offset), img, b.Min, draw.Src)

	scaled := resize.Resize(uint(size), uint(size), square, resize.Bilinear)
	if rgba, ok := scaled.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(out, out.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	return out
}
