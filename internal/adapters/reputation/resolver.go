package reputation

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is the normalized outcome of one remote reputation lookup.
// Conclusive distinguishes "the source answered" from "the source did not
// know"; only inconclusive primary results fall through to the fallback.
type Result struct {
	URL        string `json:"url"`
	Listed     bool   `json:"listed"`
	Conclusive bool   `json:"conclusive"`
	Verified   string `json:"verified,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Source     string `json:"source"`
}

// Resolver is one external reputation source.
type Resolver interface {
	// Resolve looks up one URL. A transport or decode failure is an error;
	// "not in this source's database" is an inconclusive result, not an error.
	Resolve(ctx context.Context, rawURL string) (*Result, error)

	// Name identifies the source in results and logs.
	Name() string
}

// Pipeline resolves URLs against a primary source, consulting the fallback
// only when the primary is inconclusive or failed. One attempt per source, no
// retries.
type Pipeline struct {
	primary  Resolver
	fallback Resolver
	logger   *zap.Logger
	maxConc  int
}

// NewPipeline creates a two-stage resolution pipeline. fallback may be nil.
func NewPipeline(primary, fallback Resolver, maxConcurrency int, logger *zap.Logger) *Pipeline {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	return &Pipeline{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		maxConc:  maxConcurrency,
	}
}

// Resolve runs the two-stage lookup for one URL.
func (p *Pipeline) Resolve(ctx context.Context, rawURL string) (*Result, error) {
	result, err := p.primary.Resolve(ctx, rawURL)
	if err == nil && result.Conclusive {
		return result, nil
	}

	if err != nil {
		p.logger.Warn("Primary reputation lookup failed",
			zap.String("source", p.primary.Name()),
			zap.String("url", rawURL),
			zap.Error(err))
	}

	if p.fallback == nil {
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	fbResult, fbErr := p.fallback.Resolve(ctx, rawURL)
	if fbErr != nil {
		p.logger.Warn("Fallback reputation lookup failed",
			zap.String("source", p.fallback.Name()),
			zap.String("url", rawURL),
			zap.Error(fbErr))
		// Prefer whatever the primary managed to produce.
		if err == nil {
			return result, nil
		}
		return nil, fbErr
	}

	return fbResult, nil
}

// BatchResult tags one URL's outcome with its failure, if any, so one failing
// lookup never invalidates its siblings.
type BatchResult struct {
	URL    string  `json:"url"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// ResolveBatch fans the pipeline out over a batch of URLs with bounded
// concurrency. Failures are isolated per item.
func (p *Pipeline) ResolveBatch(ctx context.Context, rawURLs []string) []BatchResult {
	results := make([]BatchResult, len(rawURLs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConc)

	for i, rawURL := range rawURLs {
		g.Go(func() error {
			result, err := p.Resolve(ctx, rawURL)
			if err != nil {
				results[i] = BatchResult{URL: rawURL, Error: err.Error()}
				return nil
			}
			results[i] = BatchResult{URL: rawURL, Result: result}
			return nil
		})
	}

	// Workers never return errors; they record per-item failures instead.
	_ = g.Wait()

	return results
}
