package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker answers whether a sender address belongs to a whitelisted domain.
// Whitelisted senders skip both heuristic and AI analysis.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new whitelist checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, len(domains))
	for i, domain := range domains {
		normalized[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized whitelist checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsWhitelisted checks if the sender's domain is in the whitelist
func (c *Checker) IsWhitelisted(senderEmail string) bool {
	if len(c.domains) == 0 {
		return false
	}

	parts := strings.Split(senderEmail, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(parts[1])

	for _, whitelisted := range c.domains {
		if whitelisted == domain {
			if c.logger != nil {
				c.logger.Debug("Sender domain is whitelisted",
					zap.String("domain", domain),
					zap.String("email", senderEmail))
			}
			return true
		}
	}

	return false
}
