package heuristic

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/phishlook/phishlook/internal/core"
)

var (
	anchorPattern   = regexp.MustCompile(`(?is)<a\s+[^>]*href\s*=\s*["']([^"']*)["'][^>]*>(.*?)</a>`)
	innerTagPattern = regexp.MustCompile(`(?s)<[^>]*>`)
	domainLikeToken = regexp.MustCompile(`(?i)\b[a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)*\.[a-z]{2,}\b`)
)

// shortenerDomains is the fixed URL-shortener list.
var shortenerDomains = []string{
	"bit.ly",
	"tinyurl.com",
	"t.co",
	"goo.gl",
	"ow.ly",
}

// dangerousLinkExtensions flags direct downloads of executable payloads.
var dangerousLinkExtensions = []string{
	".exe",
	".scr",
	".bat",
	".cmd",
	".zip",
}

// genericAnchorPhrases carry no domain claim, so they never trigger the
// text/domain mismatch rule.
var genericAnchorPhrases = []string{
	"click here",
	"read more",
	"download",
	"continue",
}

// AnalyzeLinks extracts every anchor from the HTML body and flags each link
// that fails any of the three independent checks. An empty HTML body yields a
// zero-link, zero-score analysis.
func AnalyzeLinks(htmlBody string) core.LinkAnalysis {
	var analysis core.LinkAnalysis
	if htmlBody == "" {
		return analysis
	}

	for _, m := range anchorPattern.FindAllStringSubmatch(htmlBody, -1) {
		link := inspectLink(m[1], stripTags(m[2]))
		analysis.Links = append(analysis.Links, link)
		analysis.TotalCount++
		if link.IsSuspicious {
			analysis.SuspiciousCount++
		}
	}

	if analysis.TotalCount > 0 {
		analysis.Suspicion = float64(analysis.SuspiciousCount) / float64(analysis.TotalCount)
	}

	return analysis
}

func stripTags(s string) string {
	return strings.TrimSpace(innerTagPattern.ReplaceAllString(s, ""))
}

func inspectLink(rawURL, anchorText string) core.LinkVerdict {
	verdict := core.LinkVerdict{
		URL:        rawURL,
		AnchorText: anchorText,
	}

	lowerURL := strings.ToLower(rawURL)

	if mismatchedDomainClaim(anchorText, rawURL) {
		verdict.Reasons = append(verdict.Reasons, core.LinkReasonTextMismatch)
	}

	for _, shortener := range shortenerDomains {
		if strings.Contains(lowerURL, shortener) {
			verdict.Reasons = append(verdict.Reasons, core.LinkReasonShortener)
			break
		}
	}

	for _, ext := range dangerousLinkExtensions {
		if strings.Contains(lowerURL, ext) {
			verdict.Reasons = append(verdict.Reasons, core.LinkReasonSuspiciousExtension)
			break
		}
	}

	verdict.IsSuspicious = len(verdict.Reasons) > 0
	return verdict
}

// mismatchedDomainClaim reports whether the anchor text names a domain that is
// not part of the link's actual hostname.
func mismatchedDomainClaim(anchorText, rawURL string) bool {
	normalized := strings.ToLower(strings.TrimSpace(anchorText))
	for _, phrase := range genericAnchorPhrases {
		if normalized == phrase {
			return false
		}
	}

	claimed := domainLikeToken.FindAllString(normalized, -1)
	if len(claimed) == 0 {
		return false
	}

	hostname := linkHostname(rawURL)
	for _, token := range claimed {
		if !strings.Contains(hostname, token) {
			return true
		}
	}
	return false
}

func linkHostname(rawURL string) string {
	candidate := rawURL
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
