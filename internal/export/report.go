package export

import (
	"fmt"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
)

// ReportBody joins artifacts into one Markdown document, one section per
// artifact in the order given.
func ReportBody(requirement string, artifacts []models.Artifact) string {
	var b strings.Builder
	if strings.TrimSpace(requirement) != "" {
		b.WriteString("## Requirement\n\n")
		b.WriteString(strings.TrimSpace(requirement))
		b.WriteString("\n\n")
	}
	for _, a := range artifacts {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", sectionTitle(a.Kind), strings.TrimSpace(a.Content))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FileName builds a timestamp-free export name such as
// "jarvis-report-1a2b3c4d.pdf".
func FileName(prefix, sessionID, ext string) string {
	id := sessionID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return prefix + "." + ext
	}
	return fmt.Sprintf("%s-%s.%s", prefix, id, ext)
}

func sectionTitle(k models.ArtifactKind) string {
	words := strings.Split(string(k), "-")
	for i, w := range words {
		switch w {
		case "bdd", "csv":
			words[i] = strings.ToUpper(w)
		default:
			if w != "" {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
	}
	return strings.Join(words, " ")
}
