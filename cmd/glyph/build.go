package main

import (
	"context"
	"log/slog"

	"github.com/aretw0/glyph"
	"github.com/aretw0/glyph/internal/config"
	"github.com/aretw0/glyph/pkg/adapters/memory"
	"github.com/aretw0/glyph/pkg/adapters/redis"
	"github.com/aretw0/glyph/pkg/adapters/remote"
	"github.com/aretw0/glyph/pkg/domain"
	"github.com/aretw0/glyph/pkg/ports"
)

// stack is the predictor chain built from the configuration.
type stack struct {
	predictor ports.Predictor
	warm      func(ctx context.Context) error
	close     func() error
}

func buildPredictor(cfg config.Config, logger *slog.Logger) stack {
	s := stack{
		warm:  func(context.Context) error { return nil },
		close: func() error { return nil },
	}

	if cfg.Prediction.URL != "" {
		client := remote.New(remote.Config{
			URL:            cfg.Prediction.URL,
			ApplicationKey: cfg.Prediction.ApplicationKey,
			HMACKey:        cfg.Prediction.HMACKey,
			InputSize:      cfg.Prediction.InputSize,
			PollInterval:   cfg.Prediction.PollInterval,
			Timeout:        cfg.Prediction.Timeout,
		}, remote.WithLogger(logger.With("component", "remote")))
		s.predictor = client
		s.warm = client.Warm
		logger.Info("using remote prediction service", "url", cfg.Prediction.URL)
	} else {
		script := cfg.Prediction.Script
		if len(script) == 0 {
			script = []domain.Prediction{{Character: domain.DefaultPlaceholder}}
		}
		s.predictor = memory.NewPredictor(script, memory.WithRepeat())
		logger.Warn("no prediction url configured; using scripted answers", "answers", len(script))
	}

	if cfg.Cache.Enabled {
		cache := redis.New(cfg.Cache.Addr, cfg.Cache.DB, s.predictor,
			redis.WithPrefix(cfg.Cache.Prefix),
			redis.WithTTL(cfg.Cache.TTL),
			redis.WithLogger(logger.With("component", "cache")),
		)
		s.predictor = cache
		s.close = cache.Close
		logger.Info("prediction cache enabled", "addr", cfg.Cache.Addr)
	}
	return s
}

func buildPad(cfg config.Config, predictor ports.Predictor, logger *slog.Logger, hooks domain.LifecycleHooks) (*glyph.Pad, error) {
	pad, err := glyph.New(predictor,
		glyph.WithLogger(logger),
		glyph.WithLifecycleHooks(hooks),
		glyph.WithDebounce(cfg.Debounce()),
		glyph.WithPixelRatio(cfg.Canvas.PixelRatio),
		glyph.WithViewport(cfg.Canvas.ViewportWidth, cfg.Canvas.ViewportHeight),
		glyph.WithConfidencePolicy(cfg.Prediction.Confidence),
		glyph.WithMaxInFlight(cfg.Prediction.MaxInFlight),
	)
	if err != nil {
		return nil, err
	}
	pad.SetBrushWidth(cfg.Canvas.BrushWidth)
	return pad, nil
}

var noHooks domain.LifecycleHooks
