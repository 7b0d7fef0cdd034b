package render

import (
	"fmt"
	"io"

	"github.com/fumiama/go-docx"
)

const (
	DOCXFilename    = "summary.docx"
	DOCXContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DOCX writes an optional bold title followed by one paragraph per block.
func DOCX(w io.Writer, title string, paragraphs []string) error {
	doc := docx.New().WithDefaultTheme()
	if title != "" {
		doc.AddParagraph().AddText(title).Bold().Size("32")
	}
	for _, para := range paragraphs {
		doc.AddParagraph().AddText(para)
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}
