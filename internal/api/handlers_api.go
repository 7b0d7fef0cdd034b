package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleSummarize is the JSON twin of the upload form.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	sess, err := s.pipe.Summarize(r.Context(), up)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.pipe.Session(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found or expired", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type answerRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 64*1024))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.Question = strings.TrimSpace(req.Question)

	m, err := s.pipe.Answer(r.Context(), chi.URLParam(r, "sessionID"), req.Question)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question": req.Question,
		"match":    m,
	})
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	name, snap, ok := s.pipe.ModelStats()
	if !ok {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model": name,
		"stats": snap,
	})
}
