package phishdb

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stats describes the state of the current in-memory index.
type Stats struct {
	Records    int       `json:"records"`
	Keys       int       `json:"keys"`
	LoadedAt   time.Time `json:"loaded_at"`
	SourcePath string    `json:"source_path,omitempty"`
}

// Store owns the process-wide URL index. Rebuilds construct a fresh index off
// to the side and swap it in under the lock, so concurrent lookups read either
// the old snapshot or the new one, never a partially built map.
type Store struct {
	mu     sync.RWMutex
	index  *Index
	stats  Stats
	logger *zap.Logger
}

// NewStore creates an empty store. Lookups against it miss until the first
// rebuild.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		index:  BuildIndex(nil),
		logger: logger,
	}
}

// Rebuild replaces the index with one built from records. Atomic from the
// caller's perspective.
func (s *Store) Rebuild(records []Record) {
	idx := BuildIndex(records)

	s.mu.Lock()
	s.index = idx
	s.stats = Stats{
		Records:    idx.Records(),
		Keys:       idx.Keys(),
		LoadedAt:   time.Now(),
		SourcePath: s.stats.SourcePath,
	}
	s.mu.Unlock()

	s.logger.Info("Phishing URL index rebuilt",
		zap.Int("records", idx.Records()),
		zap.Int("keys", idx.Keys()))
}

// LoadFile reads a JSON array of records and rebuilds the index from it.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read phishing database: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse phishing database: %w", err)
	}

	s.mu.Lock()
	s.stats.SourcePath = path
	s.mu.Unlock()

	s.Rebuild(records)
	return nil
}

// Snapshot returns the current immutable index.
func (s *Store) Snapshot() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Lookup checks one URL against the current snapshot.
func (s *Store) Lookup(rawURL string) (*Record, bool) {
	return s.Snapshot().Lookup(rawURL)
}

// Check derives the verdict for one URL against the current snapshot.
func (s *Store) Check(rawURL string) URLVerdict {
	return s.Snapshot().Check(rawURL)
}

// CheckAll derives verdicts for a batch of URLs against one snapshot, so a
// concurrent rebuild cannot split the batch across two index generations.
func (s *Store) CheckAll(rawURLs []string) []URLVerdict {
	idx := s.Snapshot()
	verdicts := make([]URLVerdict, 0, len(rawURLs))
	for _, u := range rawURLs {
		verdicts = append(verdicts, idx.Check(u))
	}
	return verdicts
}

// Stats reports the current index statistics.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
