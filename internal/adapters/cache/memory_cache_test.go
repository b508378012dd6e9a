package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/phishlook/phishlook/internal/adapters/cache"
	"github.com/phishlook/phishlook/internal/core"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) *cache.MemoryCache {
	t.Helper()
	c := cache.NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func TestMemoryCacheSetAndGet(t *testing.T) {
	c := newTestCache(t)

	verdict := &core.AIVerdict{
		RiskLevel:   core.RiskHigh,
		Confidence:  85,
		Explanation: "credential harvesting attempt",
		ModelUsed:   "gpt-4",
		AnalyzedAt:  time.Now(),
	}
	c.Set("attacker@example.com", verdict, time.Minute)

	got, ok := c.Get("attacker@example.com")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.RiskLevel != core.RiskHigh {
		t.Errorf("RiskLevel = %s, want %s", got.RiskLevel, core.RiskHigh)
	}
	if got.Confidence != 85 {
		t.Errorf("Confidence = %d, want 85", got.Confidence)
	}
	if got.Explanation != "credential harvesting attempt" {
		t.Errorf("Explanation = %q", got.Explanation)
	}
	if got.ModelUsed != "cache" {
		t.Errorf("ModelUsed = %q, want cache", got.ModelUsed)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestCache(t)

	if _, ok := c.Get("nobody@example.com"); ok {
		t.Error("expected cache miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t)

	c.Set("sender@example.com", &core.AIVerdict{RiskLevel: core.RiskMedium}, -time.Second)

	if _, ok := c.Get("sender@example.com"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t)

	c.Set("sender@example.com", &core.AIVerdict{RiskLevel: core.RiskLow}, time.Minute)
	if err := c.Delete(context.Background(), "sender@example.com"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := c.Get("sender@example.com"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := newTestCache(t)

	c.Set("stale@example.com", &core.AIVerdict{RiskLevel: core.RiskLow}, -time.Second)
	c.Set("fresh@example.com", &core.AIVerdict{RiskLevel: core.RiskLow}, time.Minute)

	if err := c.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}

	if _, ok := c.Get("fresh@example.com"); !ok {
		t.Error("fresh entry evicted by cleanup")
	}
}
