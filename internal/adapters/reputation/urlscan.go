package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/phishlook/phishlook/internal/phishdb"
	"go.uber.org/zap"
)

// LookupResolver queries a simple GET-style blocklist endpoint that answers
// {"listed": bool, "reference": "..."} for a single URL. Used as the
// secondary source behind the checkurl primary.
type LookupResolver struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewLookupResolver creates a resolver for a GET lookup endpoint.
func NewLookupResolver(endpoint string, timeout time.Duration, logger *zap.Logger) *LookupResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LookupResolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Name identifies the source
func (r *LookupResolver) Name() string {
	return "lookup"
}

type lookupResponse struct {
	Listed    bool   `json:"listed"`
	Verified  string `json:"verified"`
	Reference string `json:"reference"`
}

// Resolve checks one URL against the blocklist endpoint.
func (r *LookupResolver) Resolve(ctx context.Context, rawURL string) (*Result, error) {
	query := url.Values{}
	query.Set("url", phishdb.CanonicalForm(rawURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup response: %w", err)
	}

	var decoded lookupResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}

	// The secondary source is the end of the pipeline; its answer is final
	// either way.
	return &Result{
		URL:        rawURL,
		Listed:     decoded.Listed,
		Conclusive: true,
		Verified:   decoded.Verified,
		Detail:     decoded.Reference,
		Source:     r.Name(),
	}, nil
}
