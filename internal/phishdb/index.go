package phishdb

// Record is one phishing-database reference entry, matching the JSON produced
// from the upstream CSV feed.
type Record struct {
	PhishID          string `json:"phish_id"`
	URL              string `json:"url"`
	PhishDetailURL   string `json:"phish_detail_url"`
	SubmissionTime   string `json:"submission_time"`
	Verified         string `json:"verified"`
	VerificationTime string `json:"verification_time"`
	Online           string `json:"online"`
	Target           string `json:"target"`
}

// URLVerdict is the outcome of checking one URL against the reference set.
// Presence in the index alone implies a phishing verdict; the verified and
// online flags are surfaced untouched so a stricter policy can gate on them.
type URLVerdict struct {
	URL       string `json:"url"`
	IsPhish   bool   `json:"is_phish"`
	PhishID   string `json:"phish_id,omitempty"`
	DetailURL string `json:"detail_url,omitempty"`
	Verified  string `json:"verified,omitempty"`
	Online    string `json:"online,omitempty"`
	Target    string `json:"target,omitempty"`
}

// Index is an exact-match lookup table from normalized key to record.
// Immutable once built; rebuilds construct a fresh Index.
type Index struct {
	byKey   map[string]*Record
	records int
}

// BuildIndex processes the reference records once, inserting every generated
// key that is not already taken. First writer wins on collision, so
// earlier-listed records are authoritative over later ones with a colliding
// normalized form.
func BuildIndex(records []Record) *Index {
	idx := &Index{
		byKey:   make(map[string]*Record, len(records)*4),
		records: len(records),
	}

	for i := range records {
		rec := &records[i]
		for _, key := range BuildIndexKeys(rec.URL) {
			if _, taken := idx.byKey[key]; !taken {
				idx.byKey[key] = rec
			}
		}
	}

	return idx
}

// Lookup generates the candidate's key set and returns the record for the
// first key, in generation order, found in the index.
func (idx *Index) Lookup(rawURL string) (*Record, bool) {
	for _, key := range BuildIndexKeys(rawURL) {
		if rec, ok := idx.byKey[key]; ok {
			return rec, true
		}
	}
	return nil, false
}

// Check derives the per-URL verdict for a candidate URL.
func (idx *Index) Check(rawURL string) URLVerdict {
	verdict := URLVerdict{URL: rawURL}

	rec, ok := idx.Lookup(rawURL)
	if !ok {
		return verdict
	}

	verdict.IsPhish = true
	verdict.PhishID = rec.PhishID
	verdict.DetailURL = rec.PhishDetailURL
	verdict.Verified = rec.Verified
	verdict.Online = rec.Online
	verdict.Target = rec.Target
	return verdict
}

// Records returns the number of reference records behind the index.
func (idx *Index) Records() int {
	return idx.records
}

// Keys returns the number of normalized keys in the index.
func (idx *Index) Keys() int {
	return len(idx.byKey)
}
