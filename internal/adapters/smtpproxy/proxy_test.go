package smtpproxy

import (
	"bytes"
	"strings"
	"testing"

	"github.com/phishlook/phishlook/internal/core"
)

func TestAppendOriginalBody(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "crlf separator",
			raw:  "Subject: hi\r\nFrom: a@example.com\r\n\r\nhello world\r\n",
			want: "hello world\r\n",
		},
		{
			name: "bare lf separator",
			raw:  "Subject: hi\nFrom: a@example.com\n\nhello world\n",
			want: "hello world\n",
		},
		{
			name: "no separator keeps everything",
			raw:  "this blob has no header block at all",
			want: "this blob has no header block at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			appendOriginalBody(&buf, []byte(tt.raw))
			if got := buf.String(); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteHeadersTagsHighRiskSubject(t *testing.T) {
	p := &Proxy{
		riskHeader:    "X-Phish-Risk",
		scoreHeader:   "X-Phish-Score",
		reasonHeader:  "X-Phish-Reason",
		modifySubject: true,
		subjectPrefix: "[**PHISHING?**] ",
	}
	result := &core.AnalysisResult{
		SuspicionScore: 85,
		RiskLevel:      core.RiskHigh,
		Explanation:    "Suspicious indicators: 3 urgency keyword(s).",
	}
	headers := map[string][]string{
		"Subject": {"Final notice"},
		"From":    {"a@example.com"},
	}

	var buf bytes.Buffer
	p.rewriteHeaders(&buf, headers, "Final notice", result, nil)
	out := buf.String()

	if !strings.Contains(out, "X-Phish-Risk: high\r\n") {
		t.Errorf("missing risk header in %q", out)
	}
	if !strings.Contains(out, "X-Phish-Score: 85\r\n") {
		t.Errorf("missing score header in %q", out)
	}
	if !strings.Contains(out, "Subject: [**PHISHING?**] Final notice\r\n") {
		t.Errorf("missing tagged subject in %q", out)
	}
	if strings.Contains(out, "Subject: Final notice\r\n") {
		t.Errorf("original subject not dropped in %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\n") {
		t.Errorf("header block not terminated in %q", out)
	}
}

func TestRewriteHeadersLeavesLowRiskSubjectAlone(t *testing.T) {
	p := &Proxy{
		riskHeader:    "X-Phish-Risk",
		scoreHeader:   "X-Phish-Score",
		reasonHeader:  "X-Phish-Reason",
		modifySubject: true,
		subjectPrefix: "[**PHISHING?**] ",
	}
	result := &core.AnalysisResult{
		SuspicionScore: 5,
		RiskLevel:      core.RiskLow,
		Explanation:    "No significant suspicious indicators detected.",
	}
	headers := map[string][]string{"Subject": {"Lunch tomorrow"}}

	var buf bytes.Buffer
	p.rewriteHeaders(&buf, headers, "Lunch tomorrow", result, nil)
	out := buf.String()

	if !strings.Contains(out, "Subject: Lunch tomorrow\r\n") {
		t.Errorf("subject rewritten for low-risk message: %q", out)
	}
	if strings.Contains(out, "[**PHISHING?**]") {
		t.Errorf("unexpected subject tag in %q", out)
	}
}
