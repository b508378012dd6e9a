package core

import (
	"time"
)

// RiskLevel is the coarse 3-tier bucket derived from the internal 0-1 score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Rank orders risk levels so upgrades are monotonic.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// Upgrade returns the higher of the two levels. A level is never downgraded.
func (r RiskLevel) Upgrade(other RiskLevel) RiskLevel {
	if other.Rank() > r.Rank() {
		return other
	}
	return r
}

// EmailRecord is the plain email data record the analyzers consume. All fields
// are optional; the caller validates that subject and body are not both empty.
type EmailRecord struct {
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	HTMLBody    string       `json:"html_body"`
	Sender      string       `json:"sender"`
	SenderEmail string       `json:"sender_email"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is per-call metadata about one attached file.
type Attachment struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// PatternMatches holds per-category keyword hit counts.
type PatternMatches struct {
	Urgency     int `json:"urgency"`
	Authority   int `json:"authority"`
	Threats     int `json:"threats"`
	Credentials int `json:"credentials"`
	Rewards     int `json:"rewards"`
	Total       int `json:"total"`
}

// SentimentResult is the polarity signal mapped to a 0-1 suspicion value.
type SentimentResult struct {
	RawScore  float64 `json:"raw_score"`
	Suspicion float64 `json:"suspicion"`
}

// PunctuationResult captures shouting and excessive punctuation.
type PunctuationResult struct {
	Exclamations int     `json:"exclamations"`
	Questions    int     `json:"questions"`
	CapsWords    int     `json:"caps_words"`
	Suspicion    float64 `json:"suspicion"`
}

// Reasons a link can be flagged for.
const (
	LinkReasonTextMismatch        = "text_mismatch"
	LinkReasonShortener           = "url_shortener"
	LinkReasonSuspiciousExtension = "suspicious_extension"
)

// LinkVerdict is the per-link outcome of the link analyzer.
type LinkVerdict struct {
	URL          string   `json:"url"`
	AnchorText   string   `json:"anchor_text"`
	IsSuspicious bool     `json:"is_suspicious"`
	Reasons      []string `json:"reasons,omitempty"`
}

// LinkAnalysis aggregates all link verdicts for one email.
type LinkAnalysis struct {
	Links           []LinkVerdict `json:"links,omitempty"`
	SuspiciousCount int           `json:"suspicious_count"`
	TotalCount      int           `json:"total_count"`
	Suspicion       float64       `json:"suspicion"`
}

// Reasons an attachment can be flagged for.
const (
	AttachReasonDangerousExtension = "dangerous_extension"
	AttachReasonArchiveFile        = "archive_file"
	AttachReasonScriptFile         = "script_file"
	AttachReasonSuspiciousName     = "suspicious_name"
	AttachReasonDoubleExtension    = "double_extension"
	AttachReasonSuspiciousSize     = "suspicious_size"
)

// AttachmentVerdict is the per-file outcome of the attachment analyzer.
type AttachmentVerdict struct {
	Filename     string    `json:"filename"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	IsSuspicious bool      `json:"is_suspicious"`
	Reasons      []string  `json:"reasons,omitempty"`
	RiskLevel    RiskLevel `json:"risk_level"`
}

// AttachmentAnalysis aggregates all attachment verdicts for one email.
type AttachmentAnalysis struct {
	Attachments     []AttachmentVerdict `json:"attachments,omitempty"`
	SuspiciousCount int                 `json:"suspicious_count"`
	TotalCount      int                 `json:"total_count"`
	Suspicion       float64             `json:"suspicion"`
}

// AnalysisDetails carries the five sub-scorer results behind a composite score.
type AnalysisDetails struct {
	Patterns    PatternMatches     `json:"pattern_matches"`
	Sentiment   SentimentResult    `json:"sentiment"`
	Punctuation PunctuationResult  `json:"punctuation"`
	Links       LinkAnalysis       `json:"link_analysis"`
	Attachments AttachmentAnalysis `json:"attachment_analysis"`
}

// AnalysisResult is the composite heuristic verdict for one email. It is
// created fresh per call and never mutated afterwards.
type AnalysisResult struct {
	SuspicionScore int             `json:"suspicion_score"`
	RiskLevel      RiskLevel       `json:"risk_level"`
	Explanation    string          `json:"explanation"`
	Details        AnalysisDetails `json:"details"`
	AnalyzedAt     time.Time       `json:"analyzed_at"`
}

// AIVerdict is the structured second opinion from an external judgment model.
// It is returned alongside, never fused into, the heuristic result.
type AIVerdict struct {
	RiskLevel          RiskLevel `json:"risk_level"`
	Confidence         int       `json:"confidence"`
	SuspiciousPatterns []string  `json:"suspicious_patterns,omitempty"`
	Explanation        string    `json:"explanation"`
	Recommendation     string    `json:"recommendation"`
	ModelUsed          string    `json:"model_used"`
	Degraded           bool      `json:"degraded"`
	AnalyzedAt         time.Time `json:"analyzed_at"`
	ProcessingID       string    `json:"processing_id,omitempty"`
}

// CacheEntry is a stored AI verdict keyed by sender address.
type CacheEntry struct {
	SenderEmail string
	RiskLevel   RiskLevel
	Confidence  int
	Explanation string
	LastSeen    time.Time
	ExpiresAt   time.Time
}
