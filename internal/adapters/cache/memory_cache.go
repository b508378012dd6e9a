package cache

import (
	"context"
	"sync"
	"time"

	"github.com/phishlook/phishlook/internal/core"
	"go.uber.org/zap"
)

// MemoryCache is an in-memory implementation of the CacheRepository interface
type MemoryCache struct {
	entries     map[string]*core.CacheEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryCache creates a new in-memory verdict cache
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     make(map[string]*core.CacheEntry),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache
}

// Get retrieves a live cached verdict for a sender
func (c *MemoryCache) Get(senderEmail string) (*core.AIVerdict, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[senderEmail]
	if !ok {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}

	return verdictFromEntry(entry), true
}

// Set stores a verdict for a sender
func (c *MemoryCache) Set(senderEmail string, verdict *core.AIVerdict, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[senderEmail] = &core.CacheEntry{
		SenderEmail: senderEmail,
		RiskLevel:   verdict.RiskLevel,
		Confidence:  verdict.Confidence,
		Explanation: verdict.Explanation,
		LastSeen:    verdict.AnalyzedAt,
		ExpiresAt:   time.Now().Add(ttl),
	}
}

// Delete removes a cached verdict
func (c *MemoryCache) Delete(ctx context.Context, senderEmail string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, senderEmail)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	close(c.stopCh)
}

// verdictFromEntry reconstructs a cached verdict. Patterns and recommendation
// are not persisted; a cache hit carries the summary fields only.
func verdictFromEntry(entry *core.CacheEntry) *core.AIVerdict {
	return &core.AIVerdict{
		RiskLevel:   entry.RiskLevel,
		Confidence:  entry.Confidence,
		Explanation: entry.Explanation,
		ModelUsed:   "cache",
		AnalyzedAt:  entry.LastSeen,
	}
}
