package session

import "time"

// EventType identifies the kind of session event.
type EventType string

const (
	EventSessionStart  EventType = "session_start"
	EventSessionEnd    EventType = "session_complete"
	EventFetchComplete EventType = "fetch_complete"
	EventStageStart    EventType = "stage_start"
	EventStageComplete EventType = "stage_complete"
	EventStageFailed   EventType = "stage_failed"
	EventExport        EventType = "export"
	EventError         EventType = "error"
)

// Event is a single timestamped entry in a session log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// SessionStartData returns event data for a session start.
func SessionStartData(sessionID, model, backend string) map[string]any {
	return map[string]any{
		"session_id": sessionID,
		"model":      model,
		"backend":    backend,
	}
}

// SessionCompleteData returns event data for a session end.
func SessionCompleteData(stagesRun, failed int, durationMs int64) map[string]any {
	return map[string]any{
		"stages_run":  stagesRun,
		"failed":      failed,
		"duration_ms": durationMs,
	}
}

// FetchCompleteData returns event data for a requirement fetch.
func FetchCompleteData(source, itemID string, chars int) map[string]any {
	return map[string]any{
		"source":  source,
		"item_id": itemID,
		"chars":   chars,
	}
}

// StageStartData returns event data for a stage start.
func StageStartData(stage, role, input string, inputChars int) map[string]any {
	return map[string]any{
		"stage":       stage,
		"role":        role,
		"input":       input,
		"input_chars": inputChars,
	}
}

// StageCompleteData returns event data for a successful stage.
func StageCompleteData(stage, artifact string, seq, chars int, durationMs int64) map[string]any {
	return map[string]any{
		"stage":       stage,
		"artifact":    artifact,
		"seq":         seq,
		"chars":       chars,
		"duration_ms": durationMs,
	}
}

// StageFailedData returns event data for a failed stage.
func StageFailedData(stage, errorKind, message string, durationMs int64) map[string]any {
	return map[string]any{
		"stage":       stage,
		"error_kind":  errorKind,
		"message":     message,
		"duration_ms": durationMs,
	}
}

// ExportData returns event data for an export.
func ExportData(format, destination string, size int) map[string]any {
	return map[string]any{
		"format":      format,
		"destination": destination,
		"bytes":       size,
	}
}

// ErrorData returns event data for an error.
func ErrorData(message string, details map[string]any) map[string]any {
	d := map[string]any{
		"message": message,
	}
	for k, v := range details {
		d[k] = v
	}
	return d
}
