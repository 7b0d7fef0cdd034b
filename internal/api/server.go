package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/researchlight/internal/config"
	"github.com/dgallion1/researchlight/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP front end for researchlight.
type Server struct {
	router chi.Router
	pipe   *pipeline.Pipeline
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(pipe *pipeline.Pipeline, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		pipe: pipe,
		log:  log,
		cfg:  cfg,
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
	r.Handle("/metrics", promhttp.Handler())

	// Browser pages.
	r.Get("/", s.handleIndex)
	r.Post("/", s.handleUpload)
	r.Route("/s/{sessionID}", func(r chi.Router) {
		r.Get("/", s.handleSessionPage)
		r.Post("/ask", s.handleAsk)
		r.Get("/summary.pdf", s.handleSummaryPDF)
		r.Get("/summary.docx", s.handleSummaryDOCX)
	})

	// JSON API.
	r.Route("/api", func(r chi.Router) {
		r.Post("/summarize", s.handleSummarize)
		r.Get("/sessions/{sessionID}", s.handleGetSession)
		r.Post("/sessions/{sessionID}/answer", s.handleAnswer)
		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
