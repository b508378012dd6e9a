package core

import (
	"context"
	"errors"
	"time"

	"github.com/phishlook/phishlook/internal/whitelist"
	"go.uber.org/zap"
)

// ErrAIUnavailable is returned when no judgment model is configured or the
// call to it failed. The heuristic path stays usable regardless.
var ErrAIUnavailable = errors.New("AI judgment unavailable")

// AnalyzerService is the core service for phishing analysis. The heuristic
// analyzer always produces a result; the AI judgment is an optional second
// opinion behind a timeout and a per-sender cache.
type AnalyzerService struct {
	analyzer        EmailAnalyzer
	llmClient       LLMClient
	cache           CacheRepository
	logger          *zap.Logger
	whitelist       *whitelist.Checker
	cacheEnabled    bool
	cacheTTL        time.Duration
	judgmentTimeout time.Duration
}

// NewAnalyzerService creates a new analyzer service. llmClient may be nil when
// AI judgment is disabled.
func NewAnalyzerService(
	analyzer EmailAnalyzer,
	llmClient LLMClient,
	cache CacheRepository,
	logger *zap.Logger,
	wl *whitelist.Checker,
	cacheEnabled bool,
	cacheTTL time.Duration,
	judgmentTimeout time.Duration,
) *AnalyzerService {
	if judgmentTimeout <= 0 {
		judgmentTimeout = 30 * time.Second
	}
	return &AnalyzerService{
		analyzer:        analyzer,
		llmClient:       llmClient,
		cache:           cache,
		logger:          logger,
		whitelist:       wl,
		cacheEnabled:    cacheEnabled,
		cacheTTL:        cacheTTL,
		judgmentTimeout: judgmentTimeout,
	}
}

// Analyze runs the heuristic analysis for one email.
func (s *AnalyzerService) Analyze(ctx context.Context, email *EmailRecord) (*AnalysisResult, error) {
	if s.whitelist != nil && s.whitelist.IsWhitelisted(email.SenderEmail) {
		s.logger.Info("Skipping analysis for whitelisted sender",
			zap.String("sender", email.SenderEmail),
			zap.String("action", "whitelist_bypass"))
		return &AnalysisResult{
			SuspicionScore: 0,
			RiskLevel:      RiskLow,
			Explanation:    "Sender domain is whitelisted.",
			AnalyzedAt:     time.Now(),
		}, nil
	}

	return s.analyzer.Analyze(ctx, email)
}

// Judge asks the external model for a second opinion on the email. The result
// is cached per sender when caching is enabled.
func (s *AnalyzerService) Judge(ctx context.Context, email *EmailRecord) (*AIVerdict, error) {
	if s.whitelist != nil && s.whitelist.IsWhitelisted(email.SenderEmail) {
		return &AIVerdict{
			RiskLevel:      RiskLow,
			Confidence:     100,
			Explanation:    "Sender domain is whitelisted",
			Recommendation: "No action required",
			ModelUsed:      "whitelist",
			AnalyzedAt:     time.Now(),
		}, nil
	}

	if s.cacheEnabled && s.cache != nil && email.SenderEmail != "" {
		if verdict, ok := s.cache.Get(email.SenderEmail); ok {
			s.logger.Debug("Cache hit for sender", zap.String("sender", email.SenderEmail))
			return verdict, nil
		}
	}

	if s.llmClient == nil {
		return nil, ErrAIUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.judgmentTimeout)
	defer cancel()

	verdict, err := s.llmClient.JudgeEmail(ctx, email)
	if err != nil {
		s.logger.Warn("AI judgment failed, heuristic-only result remains available",
			zap.Error(err),
			zap.String("sender", email.SenderEmail))
		return nil, errors.Join(ErrAIUnavailable, err)
	}

	if s.cacheEnabled && s.cache != nil && email.SenderEmail != "" && !verdict.Degraded {
		s.cache.Set(email.SenderEmail, verdict, s.cacheTTL)
	}

	return verdict, nil
}

// IsHighRisk reports whether the heuristic result crossed the high tier.
func (s *AnalyzerService) IsHighRisk(result *AnalysisResult) bool {
	return result.RiskLevel == RiskHigh
}
