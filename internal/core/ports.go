package core

import (
	"context"
	"time"
)

// EmailAnalyzer runs the heuristic sub-scorers over one email record and
// returns the fused result.
type EmailAnalyzer interface {
	Analyze(ctx context.Context, email *EmailRecord) (*AnalysisResult, error)
}

// LLMClient defines the interface for the external judgment model.
type LLMClient interface {
	// JudgeEmail asks the model for a structured phishing verdict. A malformed
	// model response degrades to a low-confidence verdict rather than an error;
	// errors are reserved for transport and timeout failures.
	JudgeEmail(ctx context.Context, email *EmailRecord) (*AIVerdict, error)
}

// CacheRepository stores AI verdicts per sender so repeat senders are not
// re-judged within the TTL.
type CacheRepository interface {
	// Get retrieves a live cached verdict for a sender
	Get(senderEmail string) (*AIVerdict, bool)

	// Set stores a verdict for a sender
	Set(senderEmail string, verdict *AIVerdict, ttl time.Duration)

	// Delete removes a cached verdict
	Delete(ctx context.Context, senderEmail string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
