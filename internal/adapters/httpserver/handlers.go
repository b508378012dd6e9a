package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/phishlook/phishlook/internal/core"
	"go.uber.org/zap"
)

const maxRequestBytes = 10 * 1024 * 1024 // 10MB

type errorResponse struct {
	Error string `json:"error"`
}

type aiAnalysisResponse struct {
	Heuristic *core.AnalysisResult `json:"heuristic"`
	AI        *core.AIVerdict      `json:"ai,omitempty"`
	AIError   string               `json:"ai_error,omitempty"`
}

type urlListRequest struct {
	URLs []string `json:"urls"`
}

type reloadResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Keys    int    `json:"keys"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) decodeEmail(w http.ResponseWriter, r *http.Request) (*core.EmailRecord, bool) {
	var email core.EmailRecord
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&email); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}

	if strings.TrimSpace(email.Subject) == "" && strings.TrimSpace(email.Body) == "" &&
		strings.TrimSpace(email.HTMLBody) == "" {
		s.writeError(w, http.StatusBadRequest, "subject and body are both empty")
		return nil, false
	}

	return &email, true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	email, ok := s.decodeEmail(w, r)
	if !ok {
		return
	}

	result, err := s.service.Analyze(r.Context(), email)
	if err != nil {
		s.logger.Error("Analysis failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyzeAI(w http.ResponseWriter, r *http.Request) {
	email, ok := s.decodeEmail(w, r)
	if !ok {
		return
	}

	result, err := s.service.Analyze(r.Context(), email)
	if err != nil {
		s.logger.Error("Analysis failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	resp := aiAnalysisResponse{Heuristic: result}

	verdict, err := s.service.Judge(r.Context(), email)
	switch {
	case errors.Is(err, core.ErrAIUnavailable):
		resp.AIError = "AI analysis unavailable"
	case err != nil:
		s.logger.Error("AI judgment failed", zap.String("sender", email.SenderEmail), zap.Error(err))
		resp.AIError = "AI analysis failed"
	default:
		resp.AI = verdict
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleURLCheck(w http.ResponseWriter, r *http.Request) {
	var req urlListRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if len(req.URLs) == 0 {
		s.writeError(w, http.StatusBadRequest, "no urls provided")
		return
	}

	verdicts := s.store.CheckAll(req.URLs)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"results": verdicts})
}

func (s *Server) handleURLReputation(w http.ResponseWriter, r *http.Request) {
	if s.reputation == nil {
		s.writeError(w, http.StatusServiceUnavailable, "reputation lookups disabled")
		return
	}

	var req urlListRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if len(req.URLs) == 0 {
		s.writeError(w, http.StatusBadRequest, "no urls provided")
		return
	}

	results := s.reputation.ResolveBatch(r.Context(), req.URLs)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleDBReload(w http.ResponseWriter, r *http.Request) {
	if s.dbPath == "" {
		s.writeError(w, http.StatusServiceUnavailable, "no database path configured")
		return
	}

	if err := s.store.LoadFile(s.dbPath); err != nil {
		s.logger.Error("Database reload failed", zap.String("path", s.dbPath), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "reload failed: "+err.Error())
		return
	}

	stats := s.store.Stats()
	s.logger.Info("Database reloaded",
		zap.String("path", s.dbPath),
		zap.Int("records", stats.Records),
		zap.Int("keys", stats.Keys))

	s.writeJSON(w, http.StatusOK, reloadResponse{
		Status:  "ok",
		Records: stats.Records,
		Keys:    stats.Keys,
	})
}

func (s *Server) handleDBStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
