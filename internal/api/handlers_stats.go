package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	a := s.comparator.Analyzer()
	if a == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"model":       a.Model(),
		"stats":       a.Stats(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	n := s.comparator.Cache().Clear()
	s.log.Info("cache cleared", "entries", n)
	writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}
