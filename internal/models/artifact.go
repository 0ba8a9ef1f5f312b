package models

import (
	"fmt"
	"time"
)

// ArtifactKind names one slot of the session artifact store.
type ArtifactKind string

const (
	ArtifactEvaluation      ArtifactKind = "evaluation"
	ArtifactScore           ArtifactKind = "score"
	ArtifactBDD             ArtifactKind = "bdd"
	ArtifactTestCases       ArtifactKind = "test-cases"
	ArtifactEdgeCases       ArtifactKind = "edge-cases"
	ArtifactAutomation      ArtifactKind = "automation"
	ArtifactFailureAnalysis ArtifactKind = "failure-analysis"
	ArtifactCSV             ArtifactKind = "csv"
	ArtifactStrategy        ArtifactKind = "strategy"
	ArtifactPlan            ArtifactKind = "plan"
	ArtifactCategories      ArtifactKind = "categories"
)

// ArtifactKinds returns all artifact kinds in pipeline order.
func ArtifactKinds() []ArtifactKind {
	return []ArtifactKind{
		ArtifactEvaluation,
		ArtifactScore,
		ArtifactBDD,
		ArtifactTestCases,
		ArtifactEdgeCases,
		ArtifactAutomation,
		ArtifactFailureAnalysis,
		ArtifactCSV,
		ArtifactStrategy,
		ArtifactPlan,
		ArtifactCategories,
	}
}

// ParseArtifactKind validates s as an artifact kind.
func ParseArtifactKind(s string) (ArtifactKind, error) {
	for _, k := range ArtifactKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown artifact %q", s)
}

// Artifact is the stored output of one pipeline stage.
type Artifact struct {
	Kind    ArtifactKind `json:"kind"`
	Content string       `json:"content"`
	// Seq is the logical order of generation within the session, starting at 1.
	Seq        int       `json:"seq"`
	ProducedAt time.Time `json:"produced_at"`
}
