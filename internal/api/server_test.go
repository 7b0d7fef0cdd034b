package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgallion1/researchlight/internal/config"
	"github.com/dgallion1/researchlight/internal/embed"
	"github.com/dgallion1/researchlight/internal/pipeline"
	"github.com/dgallion1/researchlight/internal/session"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/net/html"
)

var paperPages = []string{
	"Abstract: we measure how quickly glaciers retreat in warming summers.",
	"Satellite radar shows the glacier front retreating forty meters every single year.",
	"In conclusion the retreat accelerates when the summers grow longer.",
}

func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		pdf.AddPage()
		pdf.MultiCell(0, 10, text, "", "L", false)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	return buf.Bytes()
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Defaults()
	cfg.PDFFallbackPdftotext = false
	cfg.MaxUploadBytes = 1 << 20
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipe := pipeline.New(cfg, log, pipeline.WithModel(nil), pipeline.WithEmbedder(embed.HashEmbedder{}))
	return NewServer(pipe, log, cfg)
}

// multipartUpload builds a form with an optional file part.
func multipartUpload(t *testing.T, filename string, data []byte, mode string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(data)
	}
	if mode != "" {
		mw.WriteField("mode", mode)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func do(t *testing.T, srv http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, srv http.Handler, path, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartUpload(t, filename, data, "")
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	return do(t, srv, req)
}

// findByID returns the element with the given id attribute, or nil.
func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func parsePage(t *testing.T, rec *httptest.ResponseRecorder) *html.Node {
	t.Helper()
	doc, err := html.Parse(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestServer_Health(t *testing.T) {
	rec := do(t, newTestServer(t), httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestServer_IndexShowsUploadForm(t *testing.T) {
	rec := do(t, newTestServer(t), httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc := parsePage(t, rec)
	if findByID(doc, "upload") == nil {
		t.Error("expected upload form")
	}
	if findByID(doc, "summary") != nil {
		t.Error("expected no summary before upload")
	}
}

func TestServer_UploadWithoutFileRerendersForm(t *testing.T) {
	rec := upload(t, newTestServer(t), "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc := parsePage(t, rec)
	if findByID(doc, "error") != nil {
		t.Error("expected no error message")
	}
	if findByID(doc, "upload") == nil {
		t.Error("expected upload form")
	}
}

func TestServer_EmptySubmissionRerendersForm(t *testing.T) {
	srv := newTestServer(t)
	requests := map[string]*http.Request{
		"no body":         httptest.NewRequest(http.MethodPost, "/", nil),
		"url encoded":     httptest.NewRequest(http.MethodPost, "/", strings.NewReader("mode=extractive")),
		"empty multipart": httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")),
	}
	requests["url encoded"].Header.Set("Content-Type", "application/x-www-form-urlencoded")
	requests["empty multipart"].Header.Set("Content-Type", "multipart/form-data; boundary=xyz")

	for name, req := range requests {
		rec := do(t, srv, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", name, rec.Code)
			continue
		}
		doc := parsePage(t, rec)
		if findByID(doc, "error") != nil {
			t.Errorf("%s: expected no error message", name)
		}
		if findByID(doc, "upload") == nil {
			t.Errorf("%s: expected upload form", name)
		}
	}
}

func TestServer_SummarizeJSONWithoutBody(t *testing.T) {
	rec := do(t, newTestServer(t), httptest.NewRequest(http.MethodPost, "/api/summarize", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServer_UploadRejectsNonPDF(t *testing.T) {
	rec := upload(t, newTestServer(t), "/", "notes.txt", []byte("plain text"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if findByID(parsePage(t, rec), "error") == nil {
		t.Error("expected error message")
	}
}

func TestServer_UploadRejectsUnreadablePDF(t *testing.T) {
	rec := upload(t, newTestServer(t), "/", "broken.pdf", []byte("not really a pdf"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestServer_UploadShowsSummaryAndSections(t *testing.T) {
	srv := newTestServer(t)
	rec := upload(t, srv, "/", "glaciers.pdf", buildPDF(t, paperPages...))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	doc := parsePage(t, rec)

	summary := findByID(doc, "summary")
	if summary == nil {
		t.Fatal("expected summary section")
	}
	if !strings.Contains(textOf(summary), "Satellite radar shows the glacier front") {
		t.Errorf("expected longest sentence in summary, got %q", textOf(summary))
	}

	link := findByID(doc, "download-pdf")
	if link == nil {
		t.Fatal("expected pdf download link")
	}
	href := attr(link, "href")
	if !strings.HasPrefix(href, "/s/") || !strings.HasSuffix(href, "/summary.pdf") {
		t.Errorf("unexpected download link %q", href)
	}

	sections := findByID(doc, "sections")
	if sections == nil {
		t.Fatal("expected sections list")
	}
	got := textOf(sections)
	if !strings.Contains(got, "abstract: page 1") || !strings.Contains(got, "conclusion: page 3") {
		t.Errorf("unexpected sections %q", got)
	}
}

func TestServer_DownloadSummaryPDF(t *testing.T) {
	srv := newTestServer(t)
	rec := upload(t, srv, "/api/summarize", "glaciers.pdf", buildPDF(t, paperPages...))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var snap session.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/s/"+snap.ID+"/summary.pdf", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="summary.pdf"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("expected a PDF body")
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/s/"+snap.ID+"/summary.docx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected a zip container for docx")
	}
}

func TestServer_DownloadUnknownSession(t *testing.T) {
	rec := do(t, newTestServer(t), httptest.NewRequest(http.MethodGet, "/s/nope/summary.pdf", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServer_SummarizeJSON(t *testing.T) {
	srv := newTestServer(t)
	rec := upload(t, srv, "/api/summarize", "glaciers.pdf", buildPDF(t, paperPages...))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var snap session.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", snap.Pages)
	}
	if snap.Mode != session.ModeExtractive {
		t.Errorf("expected extractive, got %q", snap.Mode)
	}
	if len(snap.Sentences) == 0 || len(snap.Sentences) > 5 {
		t.Errorf("expected 1..5 sentences, got %d", len(snap.Sentences))
	}
	if snap.Summary != strings.Join(snap.Sentences, "\n\n") {
		t.Error("expected summary to be sentences joined by blank lines")
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+snap.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServer_SummarizeJSONRequiresFile(t *testing.T) {
	rec := upload(t, newTestServer(t), "/api/summarize", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServer_AnswerJSON(t *testing.T) {
	srv := newTestServer(t)
	rec := upload(t, srv, "/api/summarize", "glaciers.pdf", buildPDF(t, paperPages...))
	var snap session.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+snap.ID+"/answer",
		strings.NewReader(`{"question":"What does satellite radar show?"}`))
	rec = do(t, srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Match struct {
			Page int `json:"page"`
		} `json:"match"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Match.Page != 2 {
		t.Errorf("expected page 2, got %d", resp.Match.Page)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/sessions/"+snap.ID+"/answer", strings.NewReader(`{"question":"  "}`))
	if rec := do(t, srv, req); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty question, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/sessions/missing/answer", strings.NewReader(`{"question":"radar?"}`))
	if rec := do(t, srv, req); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown session, got %d", rec.Code)
	}
}

func TestServer_AskPageShowsAnswer(t *testing.T) {
	srv := newTestServer(t)
	rec := upload(t, srv, "/api/summarize", "glaciers.pdf", buildPDF(t, paperPages...))
	var snap session.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/s/"+snap.ID+"/ask", strings.NewReader("question=satellite+radar+glacier+front"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	answer := findByID(parsePage(t, rec), "answer")
	if answer == nil {
		t.Fatal("expected answer block")
	}
	if !strings.Contains(textOf(answer), "page: 2") {
		t.Errorf("expected page 2, got %q", textOf(answer))
	}
}

func TestServer_LLMStatsUnavailableWithoutModel(t *testing.T) {
	rec := do(t, newTestServer(t), httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	rec := do(t, newTestServer(t), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "researchlight_") {
		t.Error("expected researchlight metrics")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"paper.pdf":          "paper.pdf",
		"../../etc/passwd":   "passwd",
		`C:\Users\me\a.pdf`:  "a.pdf",
		"":                   "unnamed",
		"..":                 "_",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
