package phishdb

import (
	"net/url"
	"regexp"
	"strings"
)

// URLs shown to users and URLs stored in the reference database disagree on
// scheme, trailing slash and HTML-entity encoding. BuildIndexKeys generates
// every normalized form of a URL so both sides meet on an exact-match key.

var entityDecoder = strings.NewReplacer(
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// BuildIndexKeys generates the normalized key set of a raw URL string. It is
// pure, deterministic and total: a candidate that fails to parse just skips
// its derived forms, leaving a smaller key set.
func BuildIndexKeys(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	candidates := []string{trimmed}
	if decoded := entityDecoder.Replace(trimmed); decoded != trimmed {
		candidates = append(candidates, decoded)
	}

	var keys []string
	seen := make(map[string]struct{})
	add := func(key string) {
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	for _, candidate := range candidates {
		add(candidate)

		p, ok := parseCandidate(candidate)
		if !ok {
			continue
		}

		add(p.scheme + "://" + p.host + p.path + p.query)
		add(p.host + p.path + p.query)

		// Trailing-slash toggle, skipped for the bare root path.
		if p.path != "/" {
			toggled := toggleTrailingSlash(p.path)
			add(p.scheme + "://" + p.host + toggled + p.query)
			add(p.host + toggled + p.query)
		}
	}

	return keys
}

// CanonicalForm returns the scheme://host/path?query normalization of a raw
// URL string, the same canonical form the index keys use. It falls back to
// the trimmed input when no candidate parses.
func CanonicalForm(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	// The decoded form is the real URL; the raw spelling is only a fallback.
	candidates := []string{trimmed}
	if decoded := entityDecoder.Replace(trimmed); decoded != trimmed {
		candidates = []string{decoded, trimmed}
	}
	for _, candidate := range candidates {
		if p, ok := parseCandidate(candidate); ok {
			return p.scheme + "://" + p.host + p.path + p.query
		}
	}
	return trimmed
}

type parsedCandidate struct {
	scheme, host, path, query string
}

func parseCandidate(candidate string) (parsedCandidate, bool) {
	parseable := candidate
	if !schemePattern.MatchString(parseable) {
		parseable = "http://" + parseable
	}
	u, err := url.Parse(parseable)
	if err != nil || u.Host == "" {
		return parsedCandidate{}, false
	}

	query := ""
	if u.RawQuery != "" {
		query = "?" + u.RawQuery
	}
	return parsedCandidate{
		scheme: strings.ToLower(u.Scheme),
		host:   strings.ToLower(u.Host),
		path:   u.EscapedPath(),
		query:  query,
	}, true
}

func toggleTrailingSlash(path string) string {
	if strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/")
	}
	return path + "/"
}
