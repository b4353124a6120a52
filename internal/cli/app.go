// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Shared application bootstrap for the TUI and CLI commands.
//
// Every entry point needs the same wiring: config, file logger,
// session store, providers, pipeline. App owns that wiring and the
// shutdown order.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/posyandu-tui/internal/config"
	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/pipeline"
	"github.com/jeranaias/posyandu-tui/internal/provider"
	"github.com/jeranaias/posyandu-tui/internal/storage"
)

// =============================================================================
// APPLICATION CONTAINER
// =============================================================================

// App bundles the long-lived pieces every command needs.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	KV       *storage.KVStore
	Store    *storage.SessionStore
	Pipeline *pipeline.Pipeline
	Watcher  *storage.StoreWatcher
}

// NewApp loads configuration and wires the store, providers, and
// pipeline. The returned App must be closed.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig wires an App around an already-loaded config.
func NewAppWithConfig(cfg *config.Config) (*App, error) {
	logger, err := newFileLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	storePath, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	kv, err := storage.OpenKV(storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	store, err := storage.NewSessionStore(kv, logger)
	if err != nil {
		kv.Close()
		return nil, err
	}

	text := provider.NewTextClient(cfg.Text.APIKey, cfg.Text.BaseURL, cfg.Text.Model).
		WithTimeout(time.Duration(cfg.Text.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.Text.MaxRetries).
		WithRateLimit(cfg.Text.RateLimitRPS).
		WithLogger(logger)

	// A missing Gemini key degrades gracefully: text chat still works,
	// image analysis reports the configuration problem in-channel.
	vision, err := provider.NewVisionClient(context.Background(), cfg.Vision.APIKey, cfg.Vision.Model)
	if err != nil && !errors.Is(err, provider.ErrNotConfigured) {
		kv.Close()
		return nil, fmt.Errorf("failed to init vision client: %w", err)
	}
	var visionAnalyzer provider.VisionAnalyzer
	if vision != nil {
		visionAnalyzer = vision.
			WithTimeout(time.Duration(cfg.Vision.TimeoutSecs) * time.Second).
			WithLogger(logger)
	} else {
		visionAnalyzer = unconfiguredVision{}
		logger.Warn("vision provider not configured, image analysis disabled")
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		KV:       kv,
		Store:    store,
		Pipeline: pipeline.New(store, text, visionAnalyzer, logger),
	}, nil
}

// StartWatcher begins watching the history store for writes by other
// processes, invoking onChange after each reload.
func (a *App) StartWatcher(onChange func()) error {
	watcher, err := storage.NewStoreWatcher(a.Store, a.Logger, onChange)
	if err != nil {
		return err
	}
	if err := watcher.Watch(); err != nil {
		watcher.Close()
		return err
	}
	a.Watcher = watcher
	return nil
}

// Close releases everything in reverse dependency order.
func (a *App) Close() {
	if a.Watcher != nil {
		a.Watcher.Close()
	}
	if a.KV != nil {
		a.KV.Close()
	}
	if a.Logger != nil {
		a.Logger.Sync()
	}
}

// =============================================================================
// LOGGING
// =============================================================================

// newFileLogger builds a zap logger writing to the configured log
// file. Stdout stays clean for the TUI and piped output.
func newFileLogger(cfg *config.Config) (*zap.Logger, error) {
	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}

	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{logPath}
	zapCfg.ErrorOutputPaths = []string{logPath}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// =============================================================================
// VISION FALLBACK
// =============================================================================

// unconfiguredVision stands in when no Gemini key is configured. The
// pipeline turns the sentinel into the standard Indonesian guidance.
type unconfiguredVision struct{}

func (unconfiguredVision) Analyze(context.Context, string, []model.ImageAttachment) (string, error) {
	return "", provider.ErrNotConfigured
}
