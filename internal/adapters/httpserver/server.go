package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/phishlook/phishlook/internal/adapters/reputation"
	"github.com/phishlook/phishlook/internal/core"
	"github.com/phishlook/phishlook/internal/phishdb"
	"go.uber.org/zap"
)

// Server exposes the analyzer and the URL database over a JSON HTTP API.
type Server struct {
	service    *core.AnalyzerService
	store      *phishdb.Store
	reputation *reputation.Pipeline
	logger     *zap.Logger
	listenAddr string
	enableCORS bool
	dbPath     string
	httpServer *http.Server
}

// NewServer creates a new HTTP API frontend. The reputation pipeline may be
// nil when online lookups are disabled.
func NewServer(
	service *core.AnalyzerService,
	store *phishdb.Store,
	reputationPipeline *reputation.Pipeline,
	logger *zap.Logger,
	listenAddr string,
	enableCORS bool,
	dbPath string,
) *Server {
	return &Server{
		service:    service,
		store:      store,
		reputation: reputationPipeline,
		logger:     logger,
		listenAddr: listenAddr,
		enableCORS: enableCORS,
		dbPath:     dbPath,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/analyze", s.requireMethod(http.MethodPost, s.handleAnalyze))
	mux.HandleFunc("/api/analyze/ai", s.requireMethod(http.MethodPost, s.handleAnalyzeAI))
	mux.HandleFunc("/api/urls/check", s.requireMethod(http.MethodPost, s.handleURLCheck))
	mux.HandleFunc("/api/urls/reputation", s.requireMethod(http.MethodPost, s.handleURLReputation))
	mux.HandleFunc("/api/db/reload", s.requireMethod(http.MethodPost, s.handleDBReload))
	mux.HandleFunc("/api/db/stats", s.requireMethod(http.MethodGet, s.handleDBStats))
	mux.HandleFunc("/api/health", s.requireMethod(http.MethodGet, s.handleHealth))

	var handler http.Handler = mux
	if s.enableCORS {
		handler = s.corsMiddleware(handler)
	}

	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("HTTP server starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// ProcessEmail analyzes an email directly, bypassing HTTP.
func (s *Server) ProcessEmail(ctx context.Context, email *core.EmailRecord) (*core.AnalysisResult, error) {
	return s.service.Analyze(ctx, email)
}

func (s *Server) requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
