package reputation_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phishlook/phishlook/internal/adapters/reputation"
	"go.uber.org/zap"
)

type fakeResolver struct {
	name   string
	result *reputation.Result
	err    error
	calls  int
}

func (f *fakeResolver) Resolve(ctx context.Context, rawURL string) (*reputation.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.URL = rawURL
	return &res, nil
}

func (f *fakeResolver) Name() string { return f.name }

func TestPipelineConclusivePrimarySkipsFallback(t *testing.T) {
	primary := &fakeResolver{
		name:   "primary",
		result: &reputation.Result{Listed: true, Conclusive: true, Source: "primary"},
	}
	fallback := &fakeResolver{
		name:   "fallback",
		result: &reputation.Result{Listed: false, Conclusive: true, Source: "fallback"},
	}
	p := reputation.NewPipeline(primary, fallback, 4, zap.NewNop())

	result, err := p.Resolve(context.Background(), "http://evil.example.com/a")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Source != "primary" || !result.Listed {
		t.Errorf("result = %+v, want listed primary result", result)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback calls = %d, want 0", fallback.calls)
	}
}

func TestPipelineInconclusivePrimaryConsultsFallback(t *testing.T) {
	primary := &fakeResolver{
		name:   "primary",
		result: &reputation.Result{Listed: false, Conclusive: false, Source: "primary"},
	}
	fallback := &fakeResolver{
		name:   "fallback",
		result: &reputation.Result{Listed: true, Conclusive: true, Source: "fallback"},
	}
	p := reputation.NewPipeline(primary, fallback, 4, zap.NewNop())

	result, err := p.Resolve(context.Background(), "http://evil.example.com/a")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Source != "fallback" || !result.Listed {
		t.Errorf("result = %+v, want listed fallback result", result)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d, want 1", fallback.calls)
	}
}

func TestPipelinePrimaryErrorConsultsFallback(t *testing.T) {
	primary := &fakeResolver{name: "primary", err: errors.New("connection refused")}
	fallback := &fakeResolver{
		name:   "fallback",
		result: &reputation.Result{Listed: false, Conclusive: true, Source: "fallback"},
	}
	p := reputation.NewPipeline(primary, fallback, 4, zap.NewNop())

	result, err := p.Resolve(context.Background(), "http://evil.example.com/a")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Source != "fallback" {
		t.Errorf("Source = %q, want fallback", result.Source)
	}
}

func TestPipelineNoFallbackReturnsInconclusive(t *testing.T) {
	primary := &fakeResolver{
		name:   "primary",
		result: &reputation.Result{Listed: false, Conclusive: false, Source: "primary"},
	}
	p := reputation.NewPipeline(primary, nil, 4, zap.NewNop())

	result, err := p.Resolve(context.Background(), "http://unknown.example.com/")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Conclusive {
		t.Error("expected inconclusive result to pass through")
	}
}

func TestPipelineBothFailingSurfacesError(t *testing.T) {
	primary := &fakeResolver{name: "primary", err: errors.New("primary down")}
	fallback := &fakeResolver{name: "fallback", err: errors.New("fallback down")}
	p := reputation.NewPipeline(primary, fallback, 4, zap.NewNop())

	if _, err := p.Resolve(context.Background(), "http://x.example.com/"); err == nil {
		t.Error("expected error when both sources fail")
	}
}

func TestPipelineFallbackErrorPrefersPrimaryResult(t *testing.T) {
	primary := &fakeResolver{
		name:   "primary",
		result: &reputation.Result{Listed: false, Conclusive: false, Source: "primary"},
	}
	fallback := &fakeResolver{name: "fallback", err: errors.New("fallback down")}
	p := reputation.NewPipeline(primary, fallback, 4, zap.NewNop())

	result, err := p.Resolve(context.Background(), "http://x.example.com/")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Source != "primary" {
		t.Errorf("Source = %q, want primary", result.Source)
	}
}

func TestResolveBatchIsolatesFailures(t *testing.T) {
	primary := &fakeResolver{name: "primary", err: errors.New("always failing")}
	p := reputation.NewPipeline(primary, nil, 2, zap.NewNop())

	urls := []string{"http://a.example.com/", "http://b.example.com/", "http://c.example.com/"}
	results := p.ResolveBatch(context.Background(), urls)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, br := range results {
		if br.URL != urls[i] {
			t.Errorf("results[%d].URL = %q, want %q (order must be preserved)", i, br.URL, urls[i])
		}
		if br.Error == "" {
			t.Errorf("results[%d].Error empty, want per-item failure", i)
		}
	}
}

func TestCheckURLResolverAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostFormValue("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}
		if got := r.PostFormValue("url"); got != "http://evil.example.com/login" {
			t.Errorf("url = %q, want canonical form", got)
		}
		fmt.Fprint(w, `{"meta":{"status":"success"},"results":{"in_database":true,"verified":true,"phish_detail_page":"http://db.example.org/100"}}`)
	}))
	defer server.Close()

	resolver := reputation.NewCheckURLResolver(server.URL, time.Second, zap.NewNop())
	result, err := resolver.Resolve(context.Background(), "HTTP://Evil.Example.COM/login")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !result.Listed || !result.Conclusive {
		t.Errorf("result = %+v, want listed and conclusive", result)
	}
	if result.Verified != "yes" {
		t.Errorf("Verified = %q, want yes", result.Verified)
	}
	if result.Detail != "http://db.example.org/100" {
		t.Errorf("Detail = %q", result.Detail)
	}
}

func TestCheckURLResolverKeepsSchemeForCanonicalInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		// An input that is already in canonical form must be submitted
		// unchanged, not stripped to its schemeless variant.
		if got := r.PostFormValue("url"); got != "http://evil.example.com/login" {
			t.Errorf("url = %q, want http://evil.example.com/login", got)
		}
		fmt.Fprint(w, `{"meta":{"status":"success"},"results":{"in_database":true,"verified":true}}`)
	}))
	defer server.Close()

	resolver := reputation.NewCheckURLResolver(server.URL, time.Second, zap.NewNop())
	if _, err := resolver.Resolve(context.Background(), "http://evil.example.com/login"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
}

func TestCheckURLResolverNotInDatabaseIsInconclusive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meta":{"status":"success"},"results":{"in_database":false,"verified":false}}`)
	}))
	defer server.Close()

	resolver := reputation.NewCheckURLResolver(server.URL, time.Second, zap.NewNop())
	result, err := resolver.Resolve(context.Background(), "http://unknown.example.com/")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Listed || result.Conclusive {
		t.Errorf("result = %+v, want unlisted and inconclusive", result)
	}
}

func TestLookupResolverAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got == "" {
			t.Error("missing url query parameter")
		}
		fmt.Fprint(w, `{"listed":true,"verified":"yes","reference":"http://db.example.org/ref"}`)
	}))
	defer server.Close()

	resolver := reputation.NewLookupResolver(server.URL, time.Second, zap.NewNop())
	result, err := resolver.Resolve(context.Background(), "http://evil.example.com/a")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !result.Listed || !result.Conclusive {
		t.Errorf("result = %+v, want listed and conclusive", result)
	}
}

func TestCheckURLResolverServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	resolver := reputation.NewCheckURLResolver(server.URL, time.Second, zap.NewNop())
	if _, err := resolver.Resolve(context.Background(), "http://x.example.com/"); err == nil {
		t.Error("expected error for 500 response")
	}
}
