// Package export renders session artifacts into documents and writes them to
// local or cloud storage.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// asciiFallbacks replaces common typographic characters the core PDF fonts
// cannot encode.
var asciiFallbacks = strings.NewReplacer(
	"‘", "'", "’", "'", "“", `"`, "”", `"`,
	"–", "-", "—", "-", "…", "...", "•", "-",
	"→", "->", "←", "<-", "✓", "v", "✔", "v", "✗", "x", "❌", "x",
)

// PDF renders a single report with a centered bold title and the body
// wrapped below it. The body is treated as Markdown and flattened first.
// Characters outside Latin-1 are replaced.
func PDF(title, body string) ([]byte, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("report title is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(title, true)
	pdf.SetCreator("jarvis", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(Latin1(title)), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, tr(Latin1(PlainText(body))), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Latin1 maps s onto the Latin-1 repertoire: typographic punctuation gets an
// ASCII stand-in and anything else outside the range becomes '?'.
func Latin1(s string) string {
	s = asciiFallbacks.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > 0xFF {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
