package ports

import (
	"context"

	"github.com/phishlook/phishlook/internal/core"
)

// Frontend is an email-facing entry point (HTTP API or SMTP proxy).
type Frontend interface {
	// ProcessEmail analyzes one email directly, bypassing the wire protocol
	ProcessEmail(ctx context.Context, email *core.EmailRecord) (*core.AnalysisResult, error)

	// Start starts serving
	Start() error

	// Stop shuts the frontend down
	Stop() error
}
