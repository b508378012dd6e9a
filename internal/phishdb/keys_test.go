package phishdb

import (
	"reflect"
	"testing"
)

func TestBuildIndexKeys(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			raw:  "   ",
			want: nil,
		},
		{
			name: "simple url with path",
			raw:  "http://example.com/login",
			want: []string{
				"http://example.com/login",
				"example.com/login",
				"http://example.com/login/",
				"example.com/login/",
			},
		},
		{
			name: "uppercase host and scheme normalized",
			raw:  "HTTP://Example.COM/Login",
			want: []string{
				"HTTP://Example.COM/Login",
				"http://example.com/Login",
				"example.com/Login",
				"http://example.com/Login/",
				"example.com/Login/",
			},
		},
		{
			name: "schemeless input gets http",
			raw:  "example.com/a",
			want: []string{
				"example.com/a",
				"http://example.com/a",
				"http://example.com/a/",
				"example.com/a/",
			},
		},
		{
			name: "bare root path skips slash toggle",
			raw:  "http://example.com/",
			want: []string{
				"http://example.com/",
				"example.com/",
			},
		},
		{
			name: "query string preserved",
			raw:  "http://example.com/p?id=1",
			want: []string{
				"http://example.com/p?id=1",
				"example.com/p?id=1",
				"http://example.com/p/?id=1",
				"example.com/p/?id=1",
			},
		},
		{
			name: "html entities decoded as extra candidate",
			raw:  "http://example.com/p?a=1&amp;b=2",
			want: []string{
				"http://example.com/p?a=1&amp;b=2",
				"example.com/p?a=1&amp;b=2",
				"http://example.com/p/?a=1&amp;b=2",
				"example.com/p/?a=1&amp;b=2",
				"http://example.com/p?a=1&b=2",
				"example.com/p?a=1&b=2",
				"http://example.com/p/?a=1&b=2",
				"example.com/p/?a=1&b=2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildIndexKeys(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildIndexKeys(%q) =\n  %v\nwant\n  %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalForm(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "   ", ""},
		{"already canonical keeps scheme", "http://example.com/login", "http://example.com/login"},
		{"scheme and host lowered", "HTTP://Evil.Example.COM/Login", "http://evil.example.com/Login"},
		{"schemeless gains http", "example.com/a", "http://example.com/a"},
		{"query preserved", "https://example.com/p?a=1&b=2", "https://example.com/p?a=1&b=2"},
		{"entities decoded", "https://example.com/p?a=1&amp;b=2", "https://example.com/p?a=1&b=2"},
		{"trailing slash kept as given", "http://example.com/a/", "http://example.com/a/"},
		{"unparseable falls back to trimmed input", " not a url ", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalForm(tt.raw); got != tt.want {
				t.Errorf("CanonicalForm(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBuildIndexKeysDeterministic(t *testing.T) {
	raw := "https://Sub.Example.com/Path/?q=1"
	first := BuildIndexKeys(raw)
	second := BuildIndexKeys(raw)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("key generation not deterministic: %v vs %v", first, second)
	}
}

func TestBuildIndexKeysSlashToggleRoundTrip(t *testing.T) {
	withSlash := BuildIndexKeys("http://example.com/a/")
	withoutSlash := BuildIndexKeys("http://example.com/a")

	shared := make(map[string]bool)
	for _, k := range withSlash {
		shared[k] = true
	}

	overlap := 0
	for _, k := range withoutSlash {
		if shared[k] {
			overlap++
		}
	}
	if overlap == 0 {
		t.Errorf("expected overlapping keys between %v and %v", withSlash, withoutSlash)
	}
}
