package webapi

import (
	"time"

	"github.com/DominicRaj03/Gen-AI---QA/internal/datafactory"
	"github.com/DominicRaj03/Gen-AI---QA/internal/evaluation"
)

// StageInfo describes one row of the stage table.
type StageInfo struct {
	Kind          string `json:"kind"`
	Title         string `json:"title"`
	Role          string `json:"role"`
	Output        string `json:"output"`
	Prefers       string `json:"prefers,omitempty"`
	Input         string `json:"input"`
	JSON          bool   `json:"json"`
	UsesFramework bool   `json:"usesFramework"`
}

// RequirementRequest sets the requirement text manually.
type RequirementRequest struct {
	Text string `json:"text"`
}

// RequirementResponse is the current requirement text.
type RequirementResponse struct {
	Text string `json:"text"`
	Set  bool   `json:"set"`
}

// FetchRequest loads a requirement from a tracker.
type FetchRequest struct {
	Source string `json:"source"`
	ItemID string `json:"itemId"`
}

// RunRequest carries optional stage overrides.
type RunRequest struct {
	Role   string         `json:"role,omitempty"`
	Params map[string]any `json:"params,omitempty"`
	Input  string         `json:"input,omitempty"`
}

// OutcomeResponse is the result of a fetch or stage run.
type OutcomeResponse struct {
	Stage      string                 `json:"stage,omitempty"`
	OK         bool                   `json:"ok"`
	Content    string                 `json:"content,omitempty"`
	ErrorKind  string                 `json:"errorKind,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Display    string                 `json:"display"`
	Evaluation *evaluation.Evaluation `json:"evaluation,omitempty"`
}

// ArtifactResponse is one stored artifact, plus its last failure if the most
// recent attempt failed.
type ArtifactResponse struct {
	Kind        string    `json:"kind"`
	Content     string    `json:"content,omitempty"`
	Seq         int       `json:"seq,omitempty"`
	ProducedAt  time.Time `json:"producedAt,omitzero"`
	LastFailure string    `json:"lastFailure,omitempty"`
}

// DataRequest asks the data factory for synthetic records.
type DataRequest struct {
	Fields []string `json:"fields"`
	Rows   int      `json:"rows"`
	Seed   uint64   `json:"seed,omitempty"`
}

// DataResponse holds generated records in field order.
type DataResponse struct {
	Fields  []string             `json:"fields"`
	Records []datafactory.Record `json:"records"`
}

// PDFRequest selects what goes into an exported report. With no kinds, every
// stored artifact is included.
type PDFRequest struct {
	Title string   `json:"title"`
	Kinds []string `json:"kinds,omitempty"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Session string `json:"session"`
	Model   string `json:"model"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
