package factory

import (
	"fmt"

	"github.com/phishlook/phishlook/internal/adapters/httpserver"
	"github.com/phishlook/phishlook/internal/adapters/reputation"
	"github.com/phishlook/phishlook/internal/adapters/smtpproxy"
	"github.com/phishlook/phishlook/internal/config"
	"github.com/phishlook/phishlook/internal/core"
	"github.com/phishlook/phishlook/internal/phishdb"
	"github.com/phishlook/phishlook/internal/ports"
	"go.uber.org/zap"
)

// FrontendFactory creates serving frontends based on configuration
type FrontendFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	service    *core.AnalyzerService
	store      *phishdb.Store
	reputation *reputation.Pipeline
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.AnalyzerService,
	store *phishdb.Store,
	reputationPipeline *reputation.Pipeline,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		store:      store,
		reputation: reputationPipeline,
	}
}

// CreateFrontend creates a frontend based on the configuration
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	serverCfg := f.cfg.GetServer()

	switch serverCfg.FrontendType {
	case "http":
		return httpserver.NewServer(
			f.service,
			f.store,
			f.reputation,
			f.logger,
			serverCfg.ListenAddress,
			serverCfg.EnableCORS,
			f.cfg.GetPhishDB().Path,
		), nil
	case "smtp":
		return smtpproxy.NewProxy(
			f.service,
			f.logger,
			serverCfg.SMTPListenAddress,
			serverCfg.BlockHighRisk,
			serverCfg.RiskHeader,
			serverCfg.ScoreHeader,
			serverCfg.ReasonHeader,
			serverCfg.RelayAddress,
			serverCfg.RelayPort,
			serverCfg.RelayEnabled,
			serverCfg.SubjectPrefix,
			serverCfg.ModifySubject,
		), nil
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", serverCfg.FrontendType)
	}
}
