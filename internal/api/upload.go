package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/researchlight/internal/parser"
	"github.com/dgallion1/researchlight/internal/pipeline"
	"github.com/dgallion1/researchlight/internal/retrieval"
)

var errNoFile = errors.New("file is required")

// httpError carries the status code a request failure should produce.
type httpError struct {
	msg  string
	code int
}

func (e *httpError) Error() string { return e.msg }

// readUpload pulls the "file" and "mode" fields out of a multipart form.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (pipeline.Upload, error) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrNotMultipart), r.ContentLength == 0:
			// Nothing was submitted.
			return pipeline.Upload{}, errNoFile
		case errors.As(err, &tooBig):
			return pipeline.Upload{}, &httpError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
		}
		return pipeline.Upload{}, &httpError{"invalid multipart form: " + err.Error(), http.StatusBadRequest}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return pipeline.Upload{}, errNoFile
	}
	if err != nil {
		return pipeline.Upload{}, &httpError{"file is required: " + err.Error(), http.StatusBadRequest}
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsPDF(filename) {
		return pipeline.Upload{}, &httpError{fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest}
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return pipeline.Upload{}, &httpError{"failed to read file", http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return pipeline.Upload{}, &httpError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
	}

	return pipeline.Upload{
		Filename: filename,
		Data:     data,
		Mode:     r.FormValue("mode"),
	}, nil
}

// statusFor maps pipeline failures to HTTP status codes.
func statusFor(err error) int {
	var he *httpError
	switch {
	case errors.As(err, &he):
		return he.code
	case errors.Is(err, errNoFile), errors.Is(err, parser.ErrNotPDF), errors.Is(err, retrieval.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrUnreadable), errors.Is(err, retrieval.ErrNoPages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrNoAnswers):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
