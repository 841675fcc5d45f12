package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/glyph/internal/logging"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the file.
const (
	EnvPredictURL     = "GLYPH_PREDICT_URL"
	EnvApplicationKey = "GLYPH_PREDICT_APPLICATION_KEY"
	EnvHMACKey        = "GLYPH_PREDICT_HMAC"
	EnvRedisAddr      = "GLYPH_REDIS_ADDR"
)

// Config is the full runtime configuration of glyph.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Input      InputConfig      `mapstructure:"input"`
	Canvas     CanvasConfig     `mapstructure:"canvas"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Server     ServerConfig     `mapstructure:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// InputConfig selects the debounce cadence.
type InputConfig struct {
	Mode          domain.InputMode `mapstructure:"mode"`
	TouchDebounce time.Duration    `mapstructure:"touch_debounce"`
	MouseDebounce time.Duration    `mapstructure:"mouse_debounce"`
}

// CanvasConfig sizes the drawing surface.
type CanvasConfig struct {
	ViewportWidth  int     `mapstructure:"viewport_width"`
	ViewportHeight int     `mapstructure:"viewport_height"`
	PixelRatio     float64 `mapstructure:"pixel_ratio"`
	BrushWidth     string  `mapstructure:"brush_width"`
}

// PredictionConfig describes the prediction service. Without a URL the
// scripted answers are used.
type PredictionConfig struct {
	URL            string                  `mapstructure:"url"`
	ApplicationKey string                  `mapstructure:"application_key"`
	HMACKey        string                  `mapstructure:"hmac_key"`
	Timeout        time.Duration           `mapstructure:"timeout"`
	PollInterval   time.Duration           `mapstructure:"poll_interval"`
	InputSize      int                     `mapstructure:"input_size"`
	MaxInFlight    int64                   `mapstructure:"max_in_flight"`
	Confidence     domain.ConfidencePolicy `mapstructure:"confidence"`
	Script         []domain.Prediction     `mapstructure:"script"`
}

// CacheConfig enables the Redis prediction cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Addr    string        `mapstructure:"addr"`
	DB      int           `mapstructure:"db"`
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: logging.FormatAuto},
		Input: InputConfig{
			Mode:          domain.InputMouse,
			TouchDebounce: 400 * time.Millisecond,
			MouseDebounce: 800 * time.Millisecond,
		},
		Canvas: CanvasConfig{
			ViewportWidth:  800,
			ViewportHeight: 600,
			PixelRatio:     1,
			BrushWidth:     "10",
		},
		Prediction: PredictionConfig{
			Timeout:      10 * time.Second,
			PollInterval: 500 * time.Millisecond,
			MaxInFlight:  4,
			Confidence:   domain.DefaultConfidencePolicy(),
		},
		Cache: CacheConfig{
			Addr:   "localhost:6379",
			Prefix: "glyph:",
			TTL:    24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MetricsAddr: ":2112",
		},
	}
}

// Load reads path (if not empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode merges YAML data into cfg. Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	return DecodeMap(raw, cfg)
}

// DecodeMap decodes a generic map into out, converting duration strings.
func DecodeMap(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvPredictURL); ok {
		cfg.Prediction.URL = v
	}
	if v, ok := os.LookupEnv(EnvApplicationKey); ok {
		cfg.Prediction.ApplicationKey = v
	}
	if v, ok := os.LookupEnv(EnvHMACKey); ok {
		cfg.Prediction.HMACKey = v
	}
	if v, ok := os.LookupEnv(EnvRedisAddr); ok && v != "" {
		cfg.Cache.Addr = v
		cfg.Cache.Enabled = true
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Input.Mode {
	case domain.InputMouse, domain.InputTouch:
	default:
		errs = append(errs, fmt.Errorf("input.mode must be %q or %q, got %q", domain.InputMouse, domain.InputTouch, c.Input.Mode))
	}
	if c.Input.TouchDebounce <= 0 || c.Input.MouseDebounce <= 0 {
		errs = append(errs, errors.New("input debounces must be positive"))
	}
	if c.Canvas.ViewportWidth <= 0 || c.Canvas.ViewportHeight <= 0 {
		errs = append(errs, fmt.Errorf("canvas viewport must be positive, got %dx%d", c.Canvas.ViewportWidth, c.Canvas.ViewportHeight))
	}
	if c.Canvas.PixelRatio <= 0 {
		errs = append(errs, fmt.Errorf("canvas.pixel_ratio must be positive, got %s", strconv.FormatFloat(c.Canvas.PixelRatio, 'g', -1, 64)))
	}
	if c.Prediction.MaxInFlight < 1 {
		errs = append(errs, fmt.Errorf("prediction.max_in_flight must be at least 1"))
	}
	if t := c.Prediction.Confidence.Threshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("prediction.confidence.threshold must be within [0, 1]"))
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		errs = append(errs, errors.New("cache.addr is required when the cache is enabled"))
	}
	return errors.Join(errs...)
}

// Debounce returns the debounce for the configured input mode.
func (c Config) Debounce() time.Duration {
	if c.Input.Mode == domain.InputTouch {
		return c.Input.TouchDebounce
	}
	return c.Input.MouseDebounce
}
