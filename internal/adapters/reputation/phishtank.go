package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phishlook/phishlook/internal/phishdb"
	"go.uber.org/zap"
)

// CheckURLResolver queries a PhishTank-style checkurl endpoint. The candidate
// URL is submitted in its canonical form so the remote exact-match lookup sees
// the same normalization the local index uses.
type CheckURLResolver struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewCheckURLResolver creates a resolver for a checkurl-style endpoint.
func NewCheckURLResolver(endpoint string, timeout time.Duration, logger *zap.Logger) *CheckURLResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CheckURLResolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Name identifies the source
func (r *CheckURLResolver) Name() string {
	return "checkurl"
}

type checkURLResponse struct {
	Results struct {
		InDatabase      bool   `json:"in_database"`
		Verified        bool   `json:"verified"`
		PhishDetailPage string `json:"phish_detail_page"`
	} `json:"results"`
	Meta struct {
		Status string `json:"status"`
	} `json:"meta"`
}

// Resolve submits one URL and normalizes the response.
func (r *CheckURLResolver) Resolve(ctx context.Context, rawURL string) (*Result, error) {
	form := url.Values{}
	form.Set("url", phishdb.CanonicalForm(rawURL))
	form.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkurl request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkurl request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checkurl returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read checkurl response: %w", err)
	}

	var decoded checkURLResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode checkurl response: %w", err)
	}

	verified := "no"
	if decoded.Results.Verified {
		verified = "yes"
	}

	return &Result{
		URL:        rawURL,
		Listed:     decoded.Results.InDatabase,
		Conclusive: decoded.Results.InDatabase,
		Verified:   verified,
		Detail:     decoded.Results.PhishDetailPage,
		Source:     r.Name(),
	}, nil
}
