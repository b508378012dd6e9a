package heuristic

import (
	"math"

	"github.com/jonreiter/govader"
	"github.com/phishlook/phishlook/internal/core"
)

// SentimentScorer maps text polarity to a 0-1 suspicion value. Threat and fear
// language reads as negative polarity; positive text always scores 0 from this
// signal, so reward scams are left to the pattern matcher.
type SentimentScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewSentimentScorer builds a scorer around a VADER polarity analyzer. The
// analyzer is read-only after construction and safe for concurrent use.
func NewSentimentScorer() *SentimentScorer {
	return &SentimentScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score analyzes the normalized text. The compound polarity is carried on a
// -10..10 scale and negativity maps linearly onto [0,1].
func (s *SentimentScorer) Score(text string) core.SentimentResult {
	if text == "" {
		return core.SentimentResult{}
	}

	scores := s.analyzer.PolarityScores(text)
	raw := scores.Compound * 10

	suspicion := math.Max(0, -raw/10)
	if suspicion > 1 {
		suspicion = 1
	}

	return core.SentimentResult{
		RawScore:  raw,
		Suspicion: suspicion,
	}
}
