package factory

import (
	"fmt"

	"github.com/phishlook/phishlook/internal/adapters/reputation"
	"github.com/phishlook/phishlook/internal/config"
	"go.uber.org/zap"
)

// ReputationFactory creates the online URL reputation pipeline
type ReputationFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewReputationFactory creates a new reputation factory
func NewReputationFactory(cfg *config.Config, logger *zap.Logger) *ReputationFactory {
	return &ReputationFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePipeline creates the reputation pipeline, or nil when online
// lookups are disabled.
func (f *ReputationFactory) CreatePipeline() (*reputation.Pipeline, error) {
	repCfg := f.cfg.GetReputation()
	if !repCfg.Enabled {
		f.logger.Info("Online reputation lookups disabled")
		return nil, nil
	}

	timeout, err := f.cfg.GetDuration("reputation.timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid reputation timeout: %w", err)
	}

	primary := reputation.NewCheckURLResolver(repCfg.PrimaryURL, timeout, f.logger)

	var fallback reputation.Resolver
	if repCfg.FallbackURL != "" {
		fallback = reputation.NewLookupResolver(repCfg.FallbackURL, timeout, f.logger)
	}

	return reputation.NewPipeline(primary, fallback, repCfg.MaxConcurrency, f.logger), nil
}
