package requirements

import (
	"encoding/json"
	"strings"
)

// adfNode is the subset of the Atlassian Document Format we read: nested
// nodes with optional text leaves.
type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []adfNode `json:"content,omitempty"`
}

// blockTypes end with a newline when flattened.
var blockTypes = map[string]bool{
	"paragraph":   true,
	"heading":     true,
	"listItem":    true,
	"codeBlock":   true,
	"blockquote":  true,
	"tableRow":    true,
	"mediaSingle": true,
}

// descriptionText turns a raw description field into plain text. Plain
// strings are returned as-is, ADF documents are flattened to their text
// nodes and null/absent values become "".
func descriptionText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var doc adfNode
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Unknown shape; keep the raw JSON rather than dropping content.
		return string(raw)
	}

	var b strings.Builder
	flattenADF(&b, doc)
	return strings.TrimRight(b.String(), "\n")
}

func flattenADF(b *strings.Builder, n adfNode) {
	switch n.Type {
	case "text":
		b.WriteString(n.Text)
	case "hardBreak":
		b.WriteString("\n")
	}

	for _, c := range n.Content {
		flattenADF(b, c)
	}

	if blockTypes[n.Type] {
		b.WriteString("\n")
	}
}
