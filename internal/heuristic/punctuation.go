package heuristic

import (
	"strings"
	"unicode"

	"github.com/phishlook/phishlook/internal/core"
)

// Fixed thresholds for the punctuation/formatting signal.
const (
	exclamationThreshold = 3
	questionThreshold    = 3
	capsWordThreshold    = 2
	capsWordMinLength    = 3
)

// ScorePunctuation counts exclamation marks, question marks and shouty
// all-uppercase words in the raw (not lower-cased) subject+body text. The
// additive score is capped at 1.
func ScorePunctuation(subject, body string) core.PunctuationResult {
	text := subject + " " + body

	result := core.PunctuationResult{
		Exclamations: strings.Count(text, "!"),
		Questions:    strings.Count(text, "?"),
		CapsWords:    countCapsWords(text),
	}

	score := 0.0
	if result.Exclamations > exclamationThreshold {
		score += 0.2
	}
	if result.Questions > questionThreshold {
		score += 0.1
	}
	if result.CapsWords > capsWordThreshold {
		score += 0.3
	}
	if score > 1 {
		score = 1
	}
	result.Suspicion = score

	return result
}

// countCapsWords counts whitespace-delimited all-uppercase alphabetic tokens
// longer than capsWordMinLength characters.
func countCapsWords(text string) int {
	count := 0
	for _, token := range strings.Fields(text) {
		if len(token) <= capsWordMinLength {
			continue
		}
		allUpper := true
		for _, r := range token {
			if !unicode.IsUpper(r) || !unicode.IsLetter(r) {
				allUpper = false
				break
			}
		}
		if allUpper {
			count++
		}
	}
	return count
}
