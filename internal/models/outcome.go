package models

// ErrorMarker prefixes every failure when it is rendered as text.
const ErrorMarker = "❌ Error: "

// ErrorKind classifies a failed Outcome.
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindFetch      ErrorKind = "fetch"
	ErrorKindCompletion ErrorKind = "completion"
	ErrorKindParse      ErrorKind = "parse"
	// ErrorKindInput covers failures detected before any network call, such as
	// an empty subject or an unknown stage.
	ErrorKindInput ErrorKind = "input"
)

// Outcome is the result of one user-triggered operation: either content, or
// a classified error message. It is never both.
type Outcome struct {
	Content string    `json:"content,omitempty"`
	ErrKind ErrorKind `json:"error_kind,omitempty"`
	ErrMsg  string    `json:"error,omitempty"`
}

// Ok returns a successful Outcome carrying content.
func Ok(content string) Outcome {
	return Outcome{Content: content}
}

// Failed returns a failed Outcome. An empty kind is treated as ErrorKindInput.
func Failed(kind ErrorKind, msg string) Outcome {
	if kind == ErrorKindNone {
		kind = ErrorKindInput
	}
	return Outcome{ErrKind: kind, ErrMsg: msg}
}

// OK reports whether the outcome succeeded.
func (o Outcome) OK() bool {
	return o.ErrKind == ErrorKindNone
}

// Display renders the outcome for a text surface. Failures carry ErrorMarker.
func (o Outcome) Display() string {
	if o.OK() {
		return o.Content
	}
	return ErrorMarker + o.ErrMsg
}
