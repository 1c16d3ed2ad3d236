package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/regdiff/internal/config"
	"github.com/dgallion1/regdiff/internal/parser"
	"github.com/dgallion1/regdiff/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for regdiff.
type Server struct {
	router       chi.Router
	comparator   *pipeline.Comparator
	orchestrator *pipeline.Orchestrator
	metrics      http.Handler
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. metrics may be nil, in
// which case /metrics is not mounted.
func NewServer(c *pipeline.Comparator, orch *pipeline.Orchestrator, metrics http.Handler, log *slog.Logger, cfg config.Config) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		comparator:   c,
		orchestrator: orch,
		metrics:      metrics,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/compare/sections", s.handleCompareSections)
		r.Post("/compare/paragraphs", s.handleCompareParagraphs)

		r.Post("/analyze/added", s.handleAnalyzeAdded)
		r.Post("/analyze/modified", s.handleAnalyzeModified)
		r.Post("/analyze/jobs", s.handleSubmitJob)
		r.Get("/analyze/jobs/{jobID}", s.handleJobStatus)

		r.Delete("/cache", s.handleClearCache)
		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"cache_size": s.comparator.Cache().Len(),
	})
}

func (s *Server) parserOptions() parser.Options {
	return parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
