package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-agent/internal/config"
	"github.com/jonathan/resume-chat-agent/internal/llm"
	"github.com/jonathan/resume-chat-agent/internal/store"
)

// buildLogger constructs the process logger. Verbose mode switches to the
// human-readable development encoder with debug level enabled.
func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// buildModelConfig applies per-tier model overrides on top of the defaults.
func buildModelConfig(cfg config.Config) *llm.Config {
	models := llm.DefaultConfig()
	if cfg.ModelLite != "" {
		models = models.WithModel(llm.TierLite, cfg.ModelLite)
	}
	if cfg.ModelStandard != "" {
		models = models.WithModel(llm.TierStandard, cfg.ModelStandard)
	}
	if cfg.ModelAdvanced != "" {
		models = models.WithModel(llm.TierAdvanced, cfg.ModelAdvanced)
	}
	return models
}

// buildClient selects the completion backend: replay beats live Gemini, and
// no credentials at all means a nil client (offline mode with deterministic
// placeholder replies).
func buildClient(ctx context.Context, cfg config.Config, log *zap.Logger) (llm.Client, error) {
	if cfg.ReplayDir != "" {
		client, err := llm.NewReplayClient(cfg.ReplayDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load replay responses: %w", err)
		}
		log.Info("using recorded responses", zap.String("dir", cfg.ReplayDir))
		return client, nil
	}
	if cfg.APIKey != "" {
		return llm.NewClient(ctx, buildModelConfig(cfg), cfg.APIKey)
	}
	log.Warn("no GEMINI_API_KEY set, running in offline mode")
	return nil, nil
}

// openStore connects the optional transcript store. Persistence failures are
// never fatal to a chat session; a nil return means "run without storage".
func openStore(ctx context.Context, databaseURL string, log *zap.Logger) *store.Store {
	if databaseURL == "" {
		return nil
	}
	st, err := store.Connect(ctx, databaseURL)
	if err != nil {
		log.Warn("transcript storage unavailable, continuing without it", zap.Error(err))
		return nil
	}
	return st
}
