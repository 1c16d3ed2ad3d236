package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/regdiff/internal/diff"
	"github.com/dgallion1/regdiff/internal/doctree"
	"github.com/dgallion1/regdiff/internal/parser"
	"github.com/dgallion1/regdiff/internal/pipeline"
)

const (
	oldField = "old_version"
	newField = "new_version"
)

// uploadError carries the status code a failed upload maps to.
type uploadError struct {
	code int
	msg  string
}

func (e *uploadError) Error() string { return e.msg }

func badUpload(code int, format string, args ...any) error {
	return &uploadError{code: code, msg: fmt.Sprintf(format, args...)}
}

// upload is a parsed document pair plus the names the client sent.
type upload struct {
	input   pipeline.Input
	oldName string
	newName string
}

// readPair parses the multipart form and loads both document versions.
// On failure it writes the error response and returns false.
func (s *Server) readPair(w http.ResponseWriter, r *http.Request) (upload, bool) {
	// Both files plus 1MB of form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("upload exceeds max size (%d bytes per file)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return upload{}, false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}

	var up upload
	var err error
	if up.input.Old, up.oldName, err = s.loadField(r, oldField); err == nil {
		up.input.New, up.newName, err = s.loadField(r, newField)
	}
	if err != nil {
		code := http.StatusBadRequest
		var ue *uploadError
		if errors.As(err, &ue) {
			code = ue.code
		}
		_ = r.MultipartForm.RemoveAll()
		s.log.Warn("rejected upload", "error", err)
		jsonError(w, err.Error(), code)
		return upload{}, false
	}
	return up, true
}

func (s *Server) loadField(r *http.Request, field string) (*doctree.Document, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", badUpload(http.StatusBadRequest, "%s is required: %v", field, err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return nil, "", badUpload(http.StatusBadRequest, "unsupported file type: %s", filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, "", badUpload(http.StatusInternalServerError, "failed to read %s", field)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, "", badUpload(http.StatusRequestEntityTooLarge, "%s exceeds max size (%d bytes)", field, s.cfg.MaxUploadBytes)
	}

	doc, err := parser.Load(filename, data, s.parserOptions())
	if err != nil {
		// Decoding errors already name the file.
		var decErr *diff.DecodingError
		if errors.As(err, &decErr) {
			return nil, "", badUpload(http.StatusBadRequest, "%v", decErr)
		}
		return nil, "", badUpload(http.StatusBadRequest, "%s: %v", field, err)
	}
	return doc, filename, nil
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
