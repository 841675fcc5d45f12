package redis

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/aretw0/glyph/internal/logging"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/aretw0/glyph/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const (
	// DefaultPrefix namespaces every key written by the cache.
	DefaultPrefix = "glyph:"
	// DefaultTTL is how long a cached prediction is kept.
	DefaultTTL = 24 * time.Hour
)

// Cache decorates a ports.Predictor with a Redis-backed result cache keyed
// by the crop's pixels. Redis failures are logged and fall through to the
// wrapped predictor.
type Cache struct {
	client *backend.Client
	next   ports.Predictor
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the expiry of cached predictions. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// New connects to addr and wraps next.
func New(addr string, db int, next ports.Predictor, opts ...Option) *Cache {
	client := backend.NewClient(&backend.Options{Addr: addr, DB: db})
	return NewFromClient(client, next, opts...)
}

// NewFromClient wraps next using an existing client.
func NewFromClient(client *backend.Client, next ports.Predictor, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		next:   next,
		prefix: DefaultPrefix,
		ttl:    DefaultTTL,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready reports the wrapped predictor's readiness.
func (c *Cache) Ready() <-chan struct{} {
	return c.next.Ready()
}

// Predict returns the cached prediction for img, or asks the wrapped
// predictor and stores its answer.
func (c *Cache) Predict(ctx context.Context, img *image.RGBA) (domain.Prediction, error) {
	key := c.Key(img)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var pred domain.Prediction
		if jerr := json.Unmarshal(raw, &pred); jerr == nil {
			c.logger.Debug("prediction cache hit", "key", key)
			return pred, nil
		}
		c.logger.Warn("corrupt cache entry", "key", key)
	case errors.Is(err, backend.Nil):
	default:
		c.logger.Warn("prediction cache unavailable", "err", err)
	}

	pred, err := c.next.Predict(ctx, img)
	if err != nil {
		return pred, err
	}

	data, err := json.Marshal(pred)
	if err != nil {
		return pred, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to store prediction", "key", key, "err", err)
	}
	return pred, nil
}

// ClearInput forwards to the wrapped predictor. Cached answers stay valid.
func (c *Cache) ClearInput(ctx context.Context) error {
	return c.next.ClearInput(ctx)
}

// Key returns the cache key for img: the prefix plus the SHA-256 of its
// dimensions and pixels.
func (c *Cache) Key(img *image.RGBA) string {
	h := sha256.New()
	if img != nil {
		b := img.Bounds()
		var dims [8]byte
		binary.BigEndian.PutUint32(dims[:4], uint32(b.Dx()))
		binary.BigEndian.PutUint32(dims[4:], uint32(b.Dy()))
		h.Write(dims[:])
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := img.PixOffset(b.Min.X, y)
			h.Write(img.Pix[off : off+4*b.Dx()])
		}
	}
	return fmt.Sprintf("%sprediction:%s", c.prefix, hex.EncodeToString(h.Sum(nil)))
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
