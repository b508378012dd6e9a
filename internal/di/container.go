package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/phishlook/phishlook/internal/adapters/reputation"
	"github.com/phishlook/phishlook/internal/config"
	"github.com/phishlook/phishlook/internal/core"
	"github.com/phishlook/phishlook/internal/factory"
	"github.com/phishlook/phishlook/internal/heuristic"
	"github.com/phishlook/phishlook/internal/logging"
	"github.com/phishlook/phishlook/internal/phishdb"
	"github.com/phishlook/phishlook/internal/ports"
	"github.com/phishlook/phishlook/internal/utils"
	"github.com/phishlook/phishlook/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReputationFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register heuristic detector as the email analyzer
	if err := container.Provide(func(logger *zap.Logger) core.EmailAnalyzer {
		return heuristic.NewDetector(logger)
	}); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register whitelist checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		domains := cfg.GetStringSlice("analysis.whitelisted_domains")
		if len(domains) > 0 {
			logger.Info("Loaded whitelisted domains", zap.Strings("domains", domains))
		}
		return whitelist.NewChecker(domains, logger)
	}); err != nil {
		return nil, err
	}

	// Register phishing URL store
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*phishdb.Store, error) {
		store := phishdb.NewStore(logger)
		dbPath := cfg.GetPhishDB().Path
		if dbPath != "" {
			if err := store.LoadFile(dbPath); err != nil {
				return nil, err
			}
			stats := store.Stats()
			logger.Info("Loaded phishing URL database",
				zap.String("path", dbPath),
				zap.Int("records", stats.Records),
				zap.Int("keys", stats.Keys))
		}
		return store, nil
	}); err != nil {
		return nil, err
	}

	// Register reputation pipeline
	if err := container.Provide(func(f *factory.ReputationFactory) (*reputation.Pipeline, error) {
		return f.CreatePipeline()
	}); err != nil {
		return nil, err
	}

	// Register analyzer service
	if err := container.Provide(func(
		cfg *config.Config,
		analyzer core.EmailAnalyzer,
		llmClient core.LLMClient,
		cacheRepo core.CacheRepository,
		cacheFactory *factory.CacheFactory,
		logger *zap.Logger,
		wl *whitelist.Checker,
	) (*core.AnalyzerService, error) {
		cacheTTL, err := cacheFactory.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		judgmentTimeout, err := cfg.GetDuration("llm.judgment_timeout")
		if err != nil {
			return nil, err
		}
		return core.NewAnalyzerService(
			analyzer,
			llmClient,
			cacheRepo,
			logger,
			wl,
			cacheFactory.IsCacheEnabled(),
			cacheTTL,
			judgmentTimeout,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
