package render

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Placeholder replaces characters the PDF core fonts cannot show.
const Placeholder = '?'

// Latin replaces every rune outside Windows-1252, the single-byte encoding of
// the PDF core fonts, with Placeholder. The result is still UTF-8.
func Latin(s string) string {
	return strings.Map(func(r rune) rune {
		if _, ok := charmap.Windows1252.EncodeRune(r); ok {
			return r
		}
		return Placeholder
	}, s)
}

// cp1252 converts s to the byte string gofpdf expects for core fonts.
func cp1252(s string) (string, error) {
	return charmap.Windows1252.NewEncoder().String(Latin(s))
}
