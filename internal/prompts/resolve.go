package prompts

import (
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
)

// ArtifactReader is the read side of the session artifact store.
type ArtifactReader interface {
	Get(kind models.ArtifactKind) (models.Artifact, bool)
	LastFailure(kind models.ArtifactKind) (models.Outcome, bool)
}

// SubjectSource says where a stage's input text came from.
type SubjectSource string

const (
	FromInput       SubjectSource = "input"
	FromArtifact    SubjectSource = "artifact"
	FromRequirement SubjectSource = "requirement"
)

// Subject is the resolved input of a stage.
type Subject struct {
	Text   string
	Source SubjectSource
	// Artifact is set when Source is FromArtifact.
	Artifact models.ArtifactKind
	// PredecessorFailed is true when the preferred artifact's most recent
	// generation failed. Text then holds the last good artifact, if any, or
	// the requirement.
	PredecessorFailed bool
}

// ResolveSubject picks the input for stage: an explicit input wins, then the
// stage's preferred artifact, then the requirement text.
func ResolveSubject(stage Stage, requirement, input string, store ArtifactReader) Subject {
	var failed bool
	if stage.Prefers != "" && store != nil {
		_, failed = store.LastFailure(stage.Prefers)
	}

	if strings.TrimSpace(input) != "" {
		return Subject{Text: input, Source: FromInput, PredecessorFailed: failed}
	}

	if stage.Prefers != "" && store != nil {
		if a, ok := store.Get(stage.Prefers); ok && strings.TrimSpace(a.Content) != "" {
			return Subject{
				Text:              a.Content,
				Source:            FromArtifact,
				Artifact:          a.Kind,
				PredecessorFailed: failed,
			}
		}
	}

	return Subject{Text: requirement, Source: FromRequirement, PredecessorFailed: failed}
}
