package heuristic_test

import (
	"testing"

	"github.com/phishlook/phishlook/internal/core"
	"github.com/phishlook/phishlook/internal/heuristic"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{"both parts", "Hello", "World", "hello world"},
		{"empty subject", "", "Body Text", "body text"},
		{"empty body", "Subject", "", "subject"},
		{"both empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := heuristic.NormalizeText(tt.subject, tt.body)
			if got != tt.want {
				t.Errorf("NormalizeText(%q, %q) = %q, want %q", tt.subject, tt.body, got, tt.want)
			}
		})
	}
}

func TestCountSuspiciousPatterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want core.PatternMatches
	}{
		{
			name: "empty text",
			text: "",
			want: core.PatternMatches{},
		},
		{
			name: "clean text",
			text: "see you at lunch tomorrow",
			want: core.PatternMatches{},
		},
		{
			name: "single urgency hit",
			text: "this is urgent",
			want: core.PatternMatches{Urgency: 1, Total: 1},
		},
		{
			name: "word boundary respected",
			text: "she spoke urgently about bankers",
			want: core.PatternMatches{},
		},
		{
			name: "multiple categories",
			text: "urgent: act now and verify your account before it is suspended",
			want: core.PatternMatches{Urgency: 2, Credentials: 2, Threats: 1, Total: 5},
		},
		{
			name: "suspension notice wording",
			text: "notice of account suspension",
			want: core.PatternMatches{Threats: 2, Credentials: 1, Total: 3},
		},
		{
			name: "repeated phrase counted per occurrence",
			text: "urgent urgent urgent",
			want: core.PatternMatches{Urgency: 3, Total: 3},
		},
		{
			name: "authority and rewards",
			text: "congratulations from your bank, claim your prize",
			want: core.PatternMatches{Authority: 1, Rewards: 3, Total: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := heuristic.CountSuspiciousPatterns(tt.text)
			if got != tt.want {
				t.Errorf("CountSuspiciousPatterns(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}
