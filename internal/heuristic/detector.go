package heuristic

import (
	"context"
	"time"

	"github.com/phishlook/phishlook/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Detector runs the five sub-scorers over one email record and fuses their
// outputs. The sub-scorers are pure and share no mutable state, so they run in
// parallel; fusion only needs all five results, not any arrival order.
type Detector struct {
	sentiment *SentimentScorer
	logger    *zap.Logger
}

// NewDetector creates a heuristic detector.
func NewDetector(logger *zap.Logger) *Detector {
	return &Detector{
		sentiment: NewSentimentScorer(),
		logger:    logger,
	}
}

// presentSignals marks which sub-scores had any input to judge. A signal with
// no input at all (no text, no HTML part, no attachments) drops out of the
// fusion and its weight is redistributed, rather than pulling the weighted sum
// toward zero with a structural empty result.
func presentSignals(email *core.EmailRecord, text string) map[Signal]bool {
	return map[Signal]bool{
		SignalPatterns:    text != "",
		SignalSentiment:   text != "",
		SignalPunctuation: text != "",
		SignalLinks:       email.HTMLBody != "",
		SignalAttachments: len(email.Attachments) > 0,
	}
}

// Analyze implements core.EmailAnalyzer. It is total for well-formed input:
// absent fields produce well-formed zero sub-results, never an error.
func (d *Detector) Analyze(ctx context.Context, email *core.EmailRecord) (*core.AnalysisResult, error) {
	text := NormalizeText(email.Subject, email.Body)

	var details core.AnalysisDetails
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		details.Patterns = CountSuspiciousPatterns(text)
		return nil
	})
	g.Go(func() error {
		details.Sentiment = d.sentiment.Score(text)
		return nil
	})
	g.Go(func() error {
		details.Punctuation = ScorePunctuation(email.Subject, email.Body)
		return nil
	})
	g.Go(func() error {
		details.Links = AnalyzeLinks(email.HTMLBody)
		return nil
	})
	g.Go(func() error {
		details.Attachments = AnalyzeAttachments(email.Attachments)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	score, level, explanation := Fuse(details, presentSignals(email, text))

	d.logger.Debug("Heuristic analysis complete",
		zap.Int("score", score),
		zap.String("risk_level", string(level)),
		zap.Int("pattern_matches", details.Patterns.Total),
		zap.Int("links", details.Links.TotalCount),
		zap.Int("attachments", details.Attachments.TotalCount))

	return &core.AnalysisResult{
		SuspicionScore: score,
		RiskLevel:      level,
		Explanation:    explanation,
		Details:        details,
		AnalyzedAt:     time.Now(),
	}, nil
}
