package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phishlook/phishlook/internal/core"
	"github.com/phishlook/phishlook/internal/heuristic"
	"github.com/phishlook/phishlook/internal/phishdb"
	"github.com/phishlook/phishlook/internal/whitelist"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()

	service := core.NewAnalyzerService(
		heuristic.NewDetector(logger),
		nil,
		nil,
		logger,
		whitelist.NewChecker(nil, logger),
		false,
		time.Hour,
		time.Second,
	)

	store := phishdb.NewStore(logger)
	store.Rebuild([]phishdb.Record{
		{PhishID: "1", URL: "http://evil.example.com/login", Verified: "yes", Online: "yes"},
	})

	return NewServer(service, store, nil, logger, "127.0.0.1:0", false, "")
}

func TestHandleAnalyze(t *testing.T) {
	s := newTestServer(t)

	body := `{"subject": "URGENT: verify your account", "body": "Your account has been suspended. Act now!", "sender_email": "a@evil.example"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var result core.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.SuspicionScore <= 0 {
		t.Errorf("SuspicionScore = %d, want > 0", result.SuspicionScore)
	}
	if result.Details.Patterns.Total == 0 {
		t.Error("expected pattern matches in details")
	}
}

func TestHandleAnalyzeEmptyEmail(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"subject": "", "body": "  "}`))
	rec := httptest.NewRecorder()

	s.handleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleAnalyzeMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	s.handleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleAnalyzeAIWithoutClient(t *testing.T) {
	s := newTestServer(t)

	body := `{"subject": "hello", "body": "just a note", "sender_email": "a@b.example"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/ai", strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleAnalyzeAI(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (heuristic result must survive AI outage)", rec.Code)
	}

	var resp aiAnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Heuristic == nil {
		t.Fatal("missing heuristic result")
	}
	if resp.AI != nil {
		t.Error("AI verdict present without a configured client")
	}
	if resp.AIError != "AI analysis unavailable" {
		t.Errorf("AIError = %q", resp.AIError)
	}
}

func TestHandleURLCheck(t *testing.T) {
	s := newTestServer(t)

	body := `{"urls": ["evil.example.com/login", "http://clean.example.org/"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/urls/check", strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleURLCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Results []phishdb.URLVerdict `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if !resp.Results[0].IsPhish {
		t.Error("results[0].IsPhish = false, want true")
	}
	if resp.Results[0].Verified != "yes" {
		t.Errorf("results[0].Verified = %q, want yes", resp.Results[0].Verified)
	}
	if resp.Results[1].IsPhish {
		t.Error("results[1].IsPhish = true, want false")
	}
}

func TestHandleURLCheckEmptyList(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/urls/check", strings.NewReader(`{"urls": []}`))
	rec := httptest.NewRecorder()

	s.handleURLCheck(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleURLReputationDisabled(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/urls/reputation", strings.NewReader(`{"urls": ["http://x.example.com/"]}`))
	rec := httptest.NewRecorder()

	s.handleURLReputation(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleDBStats(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/db/stats", nil)
	rec := httptest.NewRecorder()

	s.handleDBStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stats phishdb.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.Records != 1 {
		t.Errorf("Records = %d, want 1", stats.Records)
	}
}

func TestHandleDBReloadWithoutPath(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/db/reload", nil)
	rec := httptest.NewRecorder()

	s.handleDBReload(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	s.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequireMethod(t *testing.T) {
	s := newTestServer(t)

	handler := s.requireMethod(http.MethodPost, s.handleAnalyze)
	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
