package heuristic

import (
	"fmt"
	"math"
	"strings"

	"github.com/phishlook/phishlook/internal/core"
)

// Signal identifies one of the five fused sub-scores.
type Signal int

const (
	SignalPatterns Signal = iota
	SignalSentiment
	SignalPunctuation
	SignalLinks
	SignalAttachments
	signalCount
)

// signalWeights is the fixed full-set weight table. It sums to 1.0; when a
// caller fuses a reduced signal set the remaining weights are renormalized to
// sum to 1.0 again.
var signalWeights = [signalCount]float64{
	SignalPatterns:    0.3,
	SignalSentiment:   0.2,
	SignalPunctuation: 0.1,
	SignalLinks:       0.2,
	SignalAttachments: 0.2,
}

// Risk tier thresholds on the internal 0-1 scale, applied before rounding.
const (
	highRiskThreshold   = 0.7
	mediumRiskThreshold = 0.4
)

// Ten or more combined keyword hits saturate the pattern channel.
const patternSaturation = 10

// AllSignals marks every sub-score as present.
func AllSignals() map[Signal]bool {
	return map[Signal]bool{
		SignalPatterns:    true,
		SignalSentiment:   true,
		SignalPunctuation: true,
		SignalLinks:       true,
		SignalAttachments: true,
	}
}

// Fuse blends the sub-scores in details into the composite 0-100 suspicion
// score, risk tier and explanation. present marks which signals the caller
// actually computed; absent signals drop out and their weight is
// redistributed across the rest.
func Fuse(details core.AnalysisDetails, present map[Signal]bool) (int, core.RiskLevel, string) {
	scores := [signalCount]float64{
		SignalPatterns:    normalizePatternScore(details.Patterns.Total),
		SignalSentiment:   details.Sentiment.Suspicion,
		SignalPunctuation: details.Punctuation.Suspicion,
		SignalLinks:       details.Links.Suspicion,
		SignalAttachments: details.Attachments.Suspicion,
	}

	internal := weightedScore(scores, present)
	return int(math.Round(internal * 100)), riskLevelFor(internal), buildExplanation(details)
}

func normalizePatternScore(total int) float64 {
	return math.Min(float64(total)/patternSaturation, 1)
}

func weightedScore(scores [signalCount]float64, present map[Signal]bool) float64 {
	weightSum := 0.0
	for sig := Signal(0); sig < signalCount; sig++ {
		if present[sig] {
			weightSum += signalWeights[sig]
		}
	}
	if weightSum == 0 {
		return 0
	}

	total := 0.0
	for sig := Signal(0); sig < signalCount; sig++ {
		if present[sig] {
			total += scores[sig] * (signalWeights[sig] / weightSum)
		}
	}
	return math.Min(total, 1)
}

func riskLevelFor(score float64) core.RiskLevel {
	switch {
	case score >= highRiskThreshold:
		return core.RiskHigh
	case score >= mediumRiskThreshold:
		return core.RiskMedium
	default:
		return core.RiskLow
	}
}

// Sentiment only shows up in the explanation once it is clearly negative.
const sentimentExplanationThreshold = 0.3

// buildExplanation lists the nonzero findings in a fixed order so the text is
// reproducible for identical inputs.
func buildExplanation(details core.AnalysisDetails) string {
	type finding struct {
		count int
		label string
	}
	ordered := []finding{
		{details.Patterns.Urgency, "urgency keyword(s)"},
		{details.Patterns.Threats, "threat keyword(s)"},
		{details.Patterns.Authority, "authority-impersonation keyword(s)"},
		{details.Patterns.Credentials, "credential-harvesting keyword(s)"},
		{details.Patterns.Rewards, "reward-bait keyword(s)"},
	}

	var parts []string
	for _, f := range ordered {
		if f.count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", f.count, f.label))
		}
	}
	if details.Sentiment.Suspicion > sentimentExplanationThreshold {
		parts = append(parts, "strongly negative tone")
	}

	if len(parts) == 0 {
		return "No significant suspicious indicators detected."
	}
	return "Suspicious indicators: " + strings.Join(parts, ", ") + "."
}
