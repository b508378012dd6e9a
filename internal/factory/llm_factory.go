package factory

import (
	"fmt"

	"github.com/phishlook/phishlook/internal/adapters/bedrock"
	"github.com/phishlook/phishlook/internal/adapters/gemini"
	"github.com/phishlook/phishlook/internal/adapters/openai"
	"github.com/phishlook/phishlook/internal/config"
	"github.com/phishlook/phishlook/internal/core"
	"github.com/phishlook/phishlook/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory creates LLM judgment clients
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateLLMClient creates a new LLM client based on the configuration.
// Returns nil when the judgment layer is disabled; heuristic analysis
// works without it.
func (f *LLMFactory) CreateLLMClient() (core.LLMClient, error) {
	llmConfig := f.cfg.GetLLM()

	if !llmConfig.Enabled {
		f.logger.Info("AI judgment layer disabled")
		return nil, nil
	}

	switch llmConfig.Provider {
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		client, err := factory.CreateClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClient()
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateLLMClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
