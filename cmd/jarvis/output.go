package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

// printOutcome writes a stage header followed by the outcome's display text.
//
//nolint:errcheck // display-only writes
func printOutcome(w io.Writer, title string, o models.Outcome) {
	headerColor.Fprintf(w, "━━ %s ━━\n", title)
	if o.OK() {
		fmt.Fprintln(w, strings.TrimRight(o.Content, "\n"))
	} else {
		failColor.Fprintln(w, o.Display())
	}
	fmt.Fprintln(w)
}

// printTable renders rows as aligned columns. Widths are measured in
// terminal cells so CJK and emoji content lines up. Cells wider than
// maxWidth are truncated.
//
//nolint:errcheck // display-only writes
func printTable(w io.Writer, headers []string, rows [][]string, maxWidth int) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			cw := runewidth.StringWidth(cell)
			if maxWidth > 0 && cw > maxWidth {
				cw = maxWidth
			}
			if cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if maxWidth > 0 {
				cell = runewidth.Truncate(cell, maxWidth, "…")
			}
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	headerColor.Fprintln(w, line(headers))
	total := 0
	for _, wd := range widths {
		total += wd
	}
	total += 2 * (len(widths) - 1)
	fmt.Fprintln(w, strings.Repeat("─", total))
	for _, row := range rows {
		fmt.Fprintln(w, line(row))
	}
}
