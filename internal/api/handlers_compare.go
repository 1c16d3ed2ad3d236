package api

import (
	"net/http"
)

func (s *Server) handleCompareSections(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readPair(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	cmp := s.comparator.Sections(up.input)
	writeJSON(w, http.StatusOK, cmp.Result)
}

func (s *Server) handleCompareParagraphs(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readPair(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	filter := r.MultipartForm.Value["section_filter"]
	res, err := s.comparator.Paragraphs(r.Context(), up.input, filter)
	if err != nil {
		s.log.Warn("paragraph comparison aborted", "error", err)
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
