package parser

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/researchlight/internal/document"
	"github.com/dgallion1/researchlight/internal/metrics"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It reads the text layer with the Go library
// and, if the file cannot be opened at all, falls back to pdftotext.
type PDFParser struct {
	FallbackPdftotext bool
	Log               *slog.Logger
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	pages, err := extractPDFPages(data, p.logger())
	if err != nil && p.FallbackPdftotext {
		p.logger().Warn("pdf library failed, trying pdftotext", "error", err)
		pages, err = extractPdftotext(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	doc := &document.Document{
		Title:       strings.TrimSuffix(filename, ".pdf"),
		ContentHash: document.ContentHashHex(data),
	}
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			metrics.PagesSkippedTotal.Inc()
			continue
		}
		doc.Pages = append(doc.Pages, document.Page{Number: i + 1, Text: text})
	}
	return doc, nil
}

func (p *PDFParser) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

// extractPDFPages returns one entry per physical page. Pages that are null
// or fail to decode are returned as empty strings.
func extractPDFPages(data []byte, log *slog.Logger) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	fonts := make(map[string]*pdflib.Font)
	pages = make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		text, pageErr := pageText(reader, i, fonts)
		if pageErr != nil {
			log.Warn("skipping unreadable page", "page", i, "error", pageErr)
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

func pageText(reader *pdflib.Reader, n int, fonts map[string]*pdflib.Font) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", n, r)
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	for _, name := range page.Fonts() {
		if _, ok := fonts[name]; !ok {
			f := page.Font(name)
			fonts[name] = &f
		}
	}
	return page.GetPlainText(fonts)
}

func extractPdftotext(data []byte) ([]string, error) {
	// pdftotext reads from a path, so write to a temp file.
	tmp, err := os.CreateTemp("", "researchlight-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command("pdftotext", "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}

// splitPages cuts pdftotext output on form feeds.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	// pdftotext terminates the last page with a form feed too.
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages
}
