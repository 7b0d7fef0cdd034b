package parser

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/researchlight/internal/document"
)

// ErrNotPDF is returned for uploads that are not PDF files.
var ErrNotPDF = errors.New("only PDF files are accepted")

// Parser converts raw upload bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// ForFile returns the parser for filename, or ErrNotPDF.
func ForFile(filename string, fallbackPdftotext bool) (Parser, error) {
	if !IsPDF(filename) {
		return nil, ErrNotPDF
	}
	return &PDFParser{FallbackPdftotext: fallbackPdftotext}, nil
}

// IsPDF checks the file extension.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
