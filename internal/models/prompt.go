package models

// PromptRequest is a fully built prompt, ready for a completion call.
// It is built fresh for every stage invocation and never persisted.
type PromptRequest struct {
	Stage         string `json:"stage"`
	Role          Role   `json:"role"`
	SystemMessage string `json:"system_message"`
	Instruction   string `json:"instruction"`
	SubjectText   string `json:"subject_text"`
	// JSON asks the completion API for a strict JSON object response.
	JSON bool `json:"json,omitempty"`
}
