package render

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDFFilename and PDFContentType describe the summary download.
const (
	PDFFilename    = "summary.pdf"
	PDFContentType = "application/pdf"
)

// PDF writes paragraphs as an A4 document, one multi-line cell per paragraph.
// Characters the core font cannot encode are replaced, never rejected.
func PDF(w io.Writer, paragraphs []string) error {
	return writePDF(w, paragraphs, true)
}

func writePDF(w io.Writer, paragraphs []string, compress bool) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	for i, para := range paragraphs {
		line, err := cp1252(para)
		if err != nil {
			return fmt.Errorf("encode paragraph %d: %w", i, err)
		}
		pdf.MultiCell(0, 10, line, "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
