package phishdb

import "testing"

func sampleRecords() []Record {
	return []Record{
		{
			PhishID:        "100",
			URL:            "http://evil.example.com/login",
			PhishDetailURL: "http://db.example.org/detail/100",
			Verified:       "yes",
			Online:         "yes",
			Target:         "Example Bank",
		},
		{
			PhishID: "200",
			URL:     "https://bad.example.net/claim?id=7",
			Online:  "no",
		},
	}
}

func TestIndexLookupAcrossNormalizedForms(t *testing.T) {
	idx := BuildIndex(sampleRecords())

	lookups := []string{
		"http://evil.example.com/login",
		"http://evil.example.com/login/",
		"evil.example.com/login",
		"HTTP://EVIL.EXAMPLE.COM/login",
		"https://evil.example.com/login",
	}
	for _, raw := range lookups {
		rec, ok := idx.Lookup(raw)
		if !ok {
			t.Errorf("Lookup(%q) missed", raw)
			continue
		}
		if rec.PhishID != "100" {
			t.Errorf("Lookup(%q) = record %s, want 100", raw, rec.PhishID)
		}
	}
}

func TestIndexLookupMiss(t *testing.T) {
	idx := BuildIndex(sampleRecords())

	misses := []string{
		"http://evil.example.com/other",
		"http://good.example.com/login",
		"",
	}
	for _, raw := range misses {
		if _, ok := idx.Lookup(raw); ok {
			t.Errorf("Lookup(%q) unexpectedly hit", raw)
		}
	}
}

func TestIndexCheckSurfacesRecordFields(t *testing.T) {
	idx := BuildIndex(sampleRecords())

	verdict := idx.Check("evil.example.com/login")
	if !verdict.IsPhish {
		t.Fatal("expected IsPhish = true")
	}
	if verdict.URL != "evil.example.com/login" {
		t.Errorf("URL = %q, want the queried form", verdict.URL)
	}
	if verdict.PhishID != "100" {
		t.Errorf("PhishID = %q, want 100", verdict.PhishID)
	}
	if verdict.Verified != "yes" || verdict.Online != "yes" {
		t.Errorf("Verified = %q, Online = %q, want both yes", verdict.Verified, verdict.Online)
	}
	if verdict.Target != "Example Bank" {
		t.Errorf("Target = %q", verdict.Target)
	}
}

func TestIndexCheckUnverifiedRecordStillPhish(t *testing.T) {
	idx := BuildIndex(sampleRecords())

	verdict := idx.Check("https://bad.example.net/claim?id=7")
	if !verdict.IsPhish {
		t.Fatal("presence in the index must imply a phishing verdict")
	}
	if verdict.Verified != "" {
		t.Errorf("Verified = %q, want empty", verdict.Verified)
	}
	if verdict.Online != "no" {
		t.Errorf("Online = %q, want no", verdict.Online)
	}
}

func TestBuildIndexFirstWriterWins(t *testing.T) {
	records := []Record{
		{PhishID: "1", URL: "http://dup.example.com/a"},
		{PhishID: "2", URL: "http://DUP.example.com/a/"},
	}

	idx := BuildIndex(records)

	rec, ok := idx.Lookup("dup.example.com/a")
	if !ok {
		t.Fatal("expected a hit")
	}
	if rec.PhishID != "1" {
		t.Errorf("PhishID = %s, want first-listed record 1", rec.PhishID)
	}
}

func TestIndexCounts(t *testing.T) {
	idx := BuildIndex(sampleRecords())
	if idx.Records() != 2 {
		t.Errorf("Records() = %d, want 2", idx.Records())
	}
	if idx.Keys() == 0 {
		t.Error("Keys() = 0, want > 0")
	}
}
