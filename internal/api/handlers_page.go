package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sort"

	"github.com/dgallion1/researchlight/internal/document"
	"github.com/dgallion1/researchlight/internal/render"
	"github.com/dgallion1/researchlight/internal/retrieval"
	"github.com/dgallion1/researchlight/internal/session"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type sectionView struct {
	Name  string
	Pages []int
}

type pageData struct {
	SessionID string
	Filename  string
	Mode      string
	Summary   template.HTML
	Sections  []sectionView
	Question  string
	Answer    *retrieval.Match
	Error     string
}

func newPageData(sess *session.Session) pageData {
	if sess == nil {
		return pageData{Mode: string(session.ModeExtractive)}
	}
	d := pageData{
		SessionID: sess.ID,
		Filename:  sess.Filename,
		Mode:      string(sess.Mode),
	}
	if text := sess.Summary.Text(); text != "" {
		d.Summary = render.Markdown(text)
	}
	for _, name := range document.SectionKeywords {
		if pages := sess.Sections[name]; len(pages) > 0 {
			d.Sections = append(d.Sections, sectionView{Name: name, Pages: pages})
		}
	}
	sort.SliceStable(d.Sections, func(i, j int) bool {
		return d.Sections[i].Pages[0] < d.Sections[j].Pages[0]
	})
	return d
}

func (s *Server) renderPage(w http.ResponseWriter, code int, d pageData) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, d); err != nil {
		s.log.Error("render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, newPageData(nil))
}

// handleUpload summarizes a submitted PDF. Submitting without a file just
// shows the form again.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if errors.Is(err, errNoFile) {
		s.renderPage(w, http.StatusOK, newPageData(nil))
		return
	}
	if err != nil {
		d := newPageData(nil)
		d.Error = err.Error()
		s.renderPage(w, statusFor(err), d)
		return
	}

	sess, err := s.pipe.Summarize(r.Context(), up)
	if err != nil {
		d := newPageData(nil)
		d.Error = err.Error()
		s.renderPage(w, statusFor(err), d)
		return
	}
	s.renderPage(w, http.StatusOK, newPageData(sess))
}

func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	sess := s.pipe.Session(chi.URLParam(r, "sessionID"))
	if sess == nil {
		d := newPageData(nil)
		d.Error = "session not found or expired; upload the paper again"
		s.renderPage(w, http.StatusNotFound, d)
		return
	}
	s.renderPage(w, http.StatusOK, newPageData(sess))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess := s.pipe.Session(id)
	if sess == nil {
		d := newPageData(nil)
		d.Error = "session not found or expired; upload the paper again"
		s.renderPage(w, http.StatusNotFound, d)
		return
	}

	d := newPageData(sess)
	d.Question = r.FormValue("question")
	m, err := s.pipe.Answer(r.Context(), id, d.Question)
	if err != nil {
		d.Error = err.Error()
		s.renderPage(w, statusFor(err), d)
		return
	}
	d.Answer = &m
	s.renderPage(w, http.StatusOK, d)
}

func (s *Server) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	sess := s.pipe.Session(chi.URLParam(r, "sessionID"))
	if sess == nil {
		http.Error(w, "session not found or expired", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := render.PDF(&buf, sess.Summary.Paragraphs()); err != nil {
		s.log.Error("render summary pdf", "session_id", sess.ID, "error", err)
		http.Error(w, "failed to render pdf", http.StatusInternalServerError)
		return
	}
	writeAttachment(w, render.PDFFilename, render.PDFContentType, buf.Bytes())
}

func (s *Server) handleSummaryDOCX(w http.ResponseWriter, r *http.Request) {
	sess := s.pipe.Session(chi.URLParam(r, "sessionID"))
	if sess == nil {
		http.Error(w, "session not found or expired", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := render.DOCX(&buf, "Summary of "+sess.Filename, sess.Summary.Paragraphs()); err != nil {
		s.log.Error("render summary docx", "session_id", sess.ID, "error", err)
		http.Error(w, "failed to render docx", http.StatusInternalServerError)
		return
	}
	writeAttachment(w, render.DOCXFilename, render.DOCXContentType, buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
