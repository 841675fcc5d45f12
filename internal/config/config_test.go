package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/glyph/internal/config"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glyph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 800*time.Millisecond, cfg.Debounce())
	assert.False(t, cfg.Prediction.Confidence.Enabled)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
input:
  mode: touch
  touch_debounce: 250ms
canvas:
  pixel_ratio: 2
  brush_width: 12px
prediction:
  url: http://model:9000
  input_size: 28
  confidence:
    enabled: true
    threshold: 0.7
  script:
    - {character: "a", confidence: 0.9}
cache:
  enabled: true
  ttl: 1h
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, domain.InputTouch, cfg.Input.Mode)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 800*time.Millisecond, cfg.Input.MouseDebounce, "unset keys keep their defaults")
	assert.Equal(t, 2.0, cfg.Canvas.PixelRatio)
	assert.Equal(t, "12px", cfg.Canvas.BrushWidth)
	assert.Equal(t, 800, cfg.Canvas.ViewportWidth)
	assert.Equal(t, "http://model:9000", cfg.Prediction.URL)
	assert.Equal(t, 28, cfg.Prediction.InputSize)
	assert.True(t, cfg.Prediction.Confidence.Enabled)
	assert.Equal(t, 0.7, cfg.Prediction.Confidence.Threshold)
	assert.Equal(t, domain.DefaultPlaceholder, cfg.Prediction.Confidence.Placeholder)
	assert.Equal(t, []domain.Prediction{{Character: "a", Confidence: 0.9}}, cfg.Prediction.Script)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(config.EnvPredictURL, "http://env:1")
	t.Setenv(config.EnvApplicationKey, "app")
	t.Setenv(config.EnvHMACKey, "secret")
	t.Setenv(config.EnvRedisAddr, "redis:6379")

	cfg, err := config.Load(writeConfig(t, "prediction: {url: http://file:2}\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://env:1", cfg.Prediction.URL)
	assert.Equal(t, "app", cfg.Prediction.ApplicationKey)
	assert.Equal(t, "secret", cfg.Prediction.HMACKey)
	assert.Equal(t, "redis:6379", cfg.Cache.Addr)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "canvas: {colour: red}\n",
		"bad duration":    "input: {touch_debounce: soon}\n",
		"bad mode":        "input: {mode: pen}\n",
		"bad ratio":       "canvas: {pixel_ratio: 0}\n",
		"bad level":       "log: {level: loud}\n",
		"bad threshold":   "prediction: {confidence: {threshold: 2}}\n",
		"bad concurrency": "prediction: {max_in_flight: 0}\n",
		"invalid yaml":    "canvas: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
