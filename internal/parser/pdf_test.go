package parser

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// buildPDF renders one page per entry; an empty entry yields a blank page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		pdf.AddPage()
		if text != "" {
			pdf.MultiCell(0, 10, text, "", "L", false)
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	return buf.Bytes()
}

func quietParser() *PDFParser {
	return &PDFParser{Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestPDFParser_ExtractsPagesInOrder(t *testing.T) {
	data := buildPDF(t, "Hello first page", "", "Third page text")
	doc, err := quietParser().Parse(bytes.NewReader(data), "paper.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "paper" {
		t.Errorf("expected title %q, got %q", "paper", doc.Title)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages with text, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 || doc.Pages[1].Number != 3 {
		t.Errorf("expected page numbers 1 and 3, got %d and %d", doc.Pages[0].Number, doc.Pages[1].Number)
	}
	if !strings.Contains(doc.Pages[0].Text, "Hello first page") {
		t.Errorf("unexpected page 1 text %q", doc.Pages[0].Text)
	}
	if !strings.Contains(doc.Pages[1].Text, "Third page text") {
		t.Errorf("unexpected page 3 text %q", doc.Pages[1].Text)
	}
	if doc.ContentHash == "" {
		t.Error("expected content hash")
	}
}

func TestPDFParser_BlankDocumentHasNoPages(t *testing.T) {
	data := buildPDF(t, "", "")
	doc, err := quietParser().Parse(bytes.NewReader(data), "scan.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.Empty() {
		t.Errorf("expected no pages, got %d", len(doc.Pages))
	}
}

func TestPDFParser_GarbageInput(t *testing.T) {
	_, err := quietParser().Parse(strings.NewReader("not a pdf at all"), "x.pdf")
	if err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestForFile(t *testing.T) {
	if _, err := ForFile("paper.PDF", false); err != nil {
		t.Errorf("expected upper-case extension to be accepted, got %v", err)
	}
	if _, err := ForFile("notes.docx", false); !errors.Is(err, ErrNotPDF) {
		t.Errorf("expected ErrNotPDF, got %v", err)
	}
}

func TestSplitPages(t *testing.T) {
	got := splitPages("one\ftwo\f\fthree\f")
	want := []string{"one", "two", "", "three"}
	if len(got) != len(want) {
		t.Fatalf("expected %d pages, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
