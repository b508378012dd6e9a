package phishdb

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func writeDatabaseFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phishing_database.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestStoreLoadFile(t *testing.T) {
	path := writeDatabaseFile(t, `[
		{"phish_id": "1", "url": "http://evil.example.com/login", "verified": "yes", "online": "yes"},
		{"phish_id": "2", "url": "http://bad.example.net/claim"}
	]`)

	store := NewStore(zap.NewNop())
	if err := store.LoadFile(path); err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	stats := store.Stats()
	if stats.Records != 2 {
		t.Errorf("Records = %d, want 2", stats.Records)
	}
	if stats.Keys == 0 {
		t.Error("Keys = 0, want > 0")
	}
	if stats.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
	if stats.SourcePath != path {
		t.Errorf("SourcePath = %q, want %q", stats.SourcePath, path)
	}

	if _, ok := store.Lookup("evil.example.com/login"); !ok {
		t.Error("expected a hit after load")
	}
}

func TestStoreLoadFileMissing(t *testing.T) {
	store := NewStore(zap.NewNop())
	if err := store.LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStoreLoadFileMalformed(t *testing.T) {
	path := writeDatabaseFile(t, `{"not": "an array"}`)

	store := NewStore(zap.NewNop())
	if err := store.LoadFile(path); err == nil {
		t.Error("expected error for malformed database")
	}
}

func TestStoreRebuildSwapsAtomically(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.Rebuild([]Record{{PhishID: "1", URL: "http://old.example.com/a"}})

	if _, ok := store.Lookup("old.example.com/a"); !ok {
		t.Fatal("expected hit before rebuild")
	}

	store.Rebuild([]Record{{PhishID: "2", URL: "http://new.example.com/b"}})

	if _, ok := store.Lookup("old.example.com/a"); ok {
		t.Error("old record still visible after rebuild")
	}
	if _, ok := store.Lookup("new.example.com/b"); !ok {
		t.Error("new record not visible after rebuild")
	}
}

func TestStoreCheckAllUsesOneSnapshot(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.Rebuild([]Record{
		{PhishID: "1", URL: "http://evil.example.com/login", Online: "yes"},
	})

	verdicts := store.CheckAll([]string{
		"evil.example.com/login",
		"http://clean.example.org/",
	})

	if len(verdicts) != 2 {
		t.Fatalf("got %d verdicts, want 2", len(verdicts))
	}
	if !verdicts[0].IsPhish {
		t.Error("verdicts[0].IsPhish = false, want true")
	}
	if verdicts[1].IsPhish {
		t.Error("verdicts[1].IsPhish = true, want false")
	}
}

func TestStoreConcurrentLookupDuringRebuild(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.Rebuild([]Record{{PhishID: "1", URL: "http://evil.example.com/login"}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Check("evil.example.com/login")
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				store.Rebuild([]Record{{PhishID: "1", URL: "http://evil.example.com/login"}})
			}
		}()
	}
	wg.Wait()
}
