package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talenttrack/hr-assistant/internal/ai"
	"github.com/talenttrack/hr-assistant/internal/ai/gemini"
	"github.com/talenttrack/hr-assistant/internal/capability"
	"github.com/talenttrack/hr-assistant/internal/engine"
	"github.com/talenttrack/hr-assistant/internal/hrms"
	"github.com/talenttrack/hr-assistant/internal/secrets"
)

// buildEngine wires the store, generation backend, and capability registry
// into a dispatch engine. The returned closer releases the store.
func buildEngine(ctx context.Context, config *Config, logger *zap.Logger) (*engine.Engine, func() error, error) {
	if config == nil {
		return nil, nil, errors.New("config is required")
	}
	if config.Database == nil || strings.TrimSpace(config.Database.Path) == "" {
		return nil, nil, errors.New("database path is required (set database.path or HRMS_DATABASE)")
	}

	store, err := hrms.OpenSQLStore(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening hrms database: %w", err)
	}

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	var opts []engine.Option
	docs, err := store.Documents(ctx)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("loading documents: %w", err)
	}
	if len(docs) > 0 {
		logger.Debug("document context enabled", zap.Int("documents", len(docs)))
		opts = append(opts, engine.WithDocumentStore(hrms.NewMemoryDocumentStore(docs)))
	}

	registry := capability.NewRegistry(store, logger)
	eng := engine.New(registry, generator, logger, opts...)

	return eng, store.Close, nil
}

func newGenerator(ctx context.Context, config *AIConfig, logger *zap.Logger) (ai.Generator, error) {
	if config == nil || config.Gemini == nil {
		return nil, errors.New("gemini configuration is required under ai.gemini")
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	return gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxRetries, logger)
}
