package heuristic

import (
	"regexp"
	"strings"

	"github.com/phishlook/phishlook/internal/core"
)

// Category identifies one social-engineering phrase family.
type Category string

const (
	CategoryUrgency     Category = "urgency"
	CategoryAuthority   Category = "authority"
	CategoryThreats     Category = "threats"
	CategoryCredentials Category = "credentials"
	CategoryRewards     Category = "rewards"
)

// categoryOrder fixes the iteration order for counting and for the
// explanation generator, so output is reproducible.
var categoryOrder = []Category{
	CategoryUrgency,
	CategoryAuthority,
	CategoryThreats,
	CategoryCredentials,
	CategoryRewards,
}

// categoryPhrases is process-wide read-only configuration. Phrases are matched
// case-insensitively on word boundaries, non-overlapping, with no per-phrase cap.
var categoryPhrases = map[Category][]string{
	CategoryUrgency: {
		"urgent",
		"immediately",
		"act now",
		"right away",
		"as soon as possible",
		"expires today",
		"within 24 hours",
		"time sensitive",
		"don't delay",
		"last chance",
	},
	CategoryAuthority: {
		"bank",
		"paypal",
		"irs",
		"microsoft",
		"apple",
		"amazon",
		"government",
		"security team",
		"account team",
		"customer service",
	},
	CategoryThreats: {
		"suspended",
		"suspension",
		"account suspension",
		"account suspended",
		"locked",
		"closed",
		"terminated",
		"deactivated",
		"unauthorized",
		"suspicious activity",
		"legal action",
		"final notice",
		"failure to comply",
	},
	CategoryCredentials: {
		"password",
		"username",
		"login",
		"account",
		"verify your account",
		"verify your information",
		"confirm your identity",
		"update your information",
		"social security",
		"credit card",
		"billing information",
	},
	CategoryRewards: {
		"congratulations",
		"winner",
		"you have won",
		"free",
		"prize",
		"lottery",
		"gift card",
		"claim your",
		"million dollars",
		"inheritance",
	},
}

var phrasePatterns map[Category][]*regexp.Regexp

func init() {
	phrasePatterns = make(map[Category][]*regexp.Regexp, len(categoryPhrases))
	for cat, phrases := range categoryPhrases {
		compiled := make([]*regexp.Regexp, 0, len(phrases))
		for _, phrase := range phrases {
			compiled = append(compiled, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(phrase)+`\b`))
		}
		phrasePatterns[cat] = compiled
	}
}

// NormalizeText builds the scorer input contract: lower-cased concatenation of
// subject and body, empty string for absent fields.
func NormalizeText(subject, body string) string {
	return strings.ToLower(strings.TrimSpace(subject + " " + body))
}

// CountSuspiciousPatterns scans the text against every category phrase list
// and returns per-category and total match counts. Pure and deterministic.
func CountSuspiciousPatterns(text string) core.PatternMatches {
	var matches core.PatternMatches
	if text == "" {
		return matches
	}

	for _, cat := range categoryOrder {
		count := 0
		for _, re := range phrasePatterns[cat] {
			count += len(re.FindAllStringIndex(text, -1))
		}
		switch cat {
		case CategoryUrgency:
			matches.Urgency = count
		case CategoryAuthority:
			matches.Authority = count
		case CategoryThreats:
			matches.Threats = count
		case CategoryCredentials:
			matches.Credentials = count
		case CategoryRewards:
			matches.Rewards = count
		}
		matches.Total += count
	}

	return matches
}
