package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/regdiff/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleAnalyzeAdded(w http.ResponseWriter, r *http.Request) {
	if !s.analysisEnabled(w) {
		return
	}
	up, ok := s.readPair(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	res, err := s.comparator.AnalyzeAdded(r.Context(), up.input)
	if err != nil {
		s.analysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyzeModified(w http.ResponseWriter, r *http.Request) {
	if !s.analysisEnabled(w) {
		return
	}
	up, ok := s.readPair(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	batchSize, err := formBatchSize(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.comparator.AnalyzeModified(r.Context(), up.input, batchSize)
	if err != nil {
		s.analysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if !s.analysisEnabled(w) {
		return
	}
	up, ok := s.readPair(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	kind, err := pipeline.ParseJobKind(r.FormValue("kind"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	batchSize, err := formBatchSize(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(kind, up.oldName, up.newName, up.input)
	job.BatchSize = batchSize
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"kind":     job.Kind,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/analyze/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// analysisEnabled rejects the request before the upload is read when no
// analyzer is configured.
func (s *Server) analysisEnabled(w http.ResponseWriter) bool {
	if s.comparator.Analyzer() == nil {
		jsonError(w, pipeline.ErrAnalysisDisabled.Error(), http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (s *Server) analysisError(w http.ResponseWriter, err error) {
	if !errors.Is(err, pipeline.ErrAnalysisDisabled) {
		s.log.Warn("analysis aborted", "error", err)
	}
	jsonError(w, err.Error(), http.StatusServiceUnavailable)
}

// formBatchSize reads the optional batch_size field; 0 means the default.
func formBatchSize(r *http.Request) (int, error) {
	v := r.FormValue("batch_size")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("batch_size must be a positive integer, got %q", v)
	}
	return n, nil
}
