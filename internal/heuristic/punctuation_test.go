package heuristic_test

import (
	"math"
	"testing"

	"github.com/phishlook/phishlook/internal/heuristic"
)

func TestScorePunctuation(t *testing.T) {
	tests := []struct {
		name          string
		subject       string
		body          string
		wantSuspicion float64
	}{
		{
			name:          "clean text",
			subject:       "Meeting notes",
			body:          "See attached notes from today.",
			wantSuspicion: 0,
		},
		{
			name:          "exactly at exclamation threshold",
			subject:       "Hi!",
			body:          "Nice! Really!",
			wantSuspicion: 0,
		},
		{
			name:          "excessive exclamations",
			subject:       "Wow!!",
			body:          "Amazing!!",
			wantSuspicion: 0.2,
		},
		{
			name:          "excessive questions",
			subject:       "Why??",
			body:          "Really?? Are you sure",
			wantSuspicion: 0.1,
		},
		{
			name:          "shouting",
			subject:       "FINAL WARNING NOTICE",
			body:          "respond today",
			wantSuspicion: 0.3,
		},
		{
			name:          "short caps tokens ignored",
			subject:       "FBI IRS CIA NSA",
			body:          "",
			wantSuspicion: 0,
		},
		{
			name:          "everything at once",
			subject:       "URGENT ACTION REQUIRED!!!!",
			body:          "WHAT???? are you WAITING for",
			wantSuspicion: 0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := heuristic.ScorePunctuation(tt.subject, tt.body)
			if math.Abs(got.Suspicion-tt.wantSuspicion) > 1e-9 {
				t.Errorf("ScorePunctuation(%q, %q).Suspicion = %v, want %v",
					tt.subject, tt.body, got.Suspicion, tt.wantSuspicion)
			}
		})
	}
}

func TestScorePunctuationCounts(t *testing.T) {
	got := heuristic.ScorePunctuation("ACT FAST now!", "DELETE EVERYTHING today! ok?")
	if got.Exclamations != 2 {
		t.Errorf("Exclamations = %d, want 2", got.Exclamations)
	}
	if got.Questions != 1 {
		t.Errorf("Questions = %d, want 1", got.Questions)
	}
	if got.CapsWords != 3 {
		t.Errorf("CapsWords = %d, want 3", got.CapsWords)
	}
}
