package export

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// PlainText flattens GitHub-flavoured Markdown into plain text: emphasis and
// link markup are dropped, list items become "- " lines, code blocks keep
// their lines and table rows become cells joined by " | " with a rule under
// the header.
func PlainText(md string) string {
	source := []byte(md)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	headerStart := 0

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(source))
				if node.HardLineBreak() || node.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.ListItem:
			if entering {
				buf.WriteString("- ")
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			if entering {
				writeLines(&buf, n, source)
				buf.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			if entering {
				buf.Write(node.URL(source))
			}
		case *extast.TaskCheckBox:
			if entering {
				if node.IsChecked {
					buf.WriteString("[x] ")
				} else {
					buf.WriteString("[ ] ")
				}
			}
		case *extast.TableHeader:
			if entering {
				headerStart = buf.Len()
			} else {
				width := utf8.RuneCount(buf.Bytes()[headerStart:])
				buf.WriteByte('\n')
				buf.WriteString(strings.Repeat("-", width))
				buf.WriteByte('\n')
			}
		case *extast.TableRow:
			if !entering {
				buf.WriteByte('\n')
			}
		case *extast.TableCell:
			if entering && n.PreviousSibling() != nil {
				buf.WriteString(" | ")
			}
		case *extast.Table:
			if !entering {
				buf.WriteByte('\n')
			}
		case *ast.ThematicBreak:
			if entering {
				buf.WriteString("----\n\n")
			}
		case *ast.Paragraph, *ast.Heading:
			if !entering {
				buf.WriteString("\n\n")
			}
		case *ast.TextBlock:
			if !entering {
				buf.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(buf.String())
}

func writeLines(buf *bytes.Buffer, n ast.Node, source []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
}
