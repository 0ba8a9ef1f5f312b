// Package completion sends built prompts to a chat-completion backend.
package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
)

// DefaultTemperature is the sampling temperature used for every stage.
const DefaultTemperature = 0.1

const (
	// ModelLlama70B is the default model.
	ModelLlama70B = "llama-3.3-70b-versatile"
	// ModelLlama8B is the smaller, faster model.
	ModelLlama8B = "llama-3.1-8b-instant"
)

// Models lists the models offered for selection.
var Models = []string{ModelLlama70B, ModelLlama8B}

// Client is the interface for sending completion requests
type Client interface {
	// Complete sends one [system, user] exchange and returns the reply.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Shutdown releases any resources held by the client.
	Shutdown(ctx context.Context) error
}

// Request is a single chat-completion call.
type Request struct {
	SystemMessage string
	Prompt        string
	Model         string
	Temperature   float32
	// JSON asks for a strict JSON object reply.
	JSON bool
}

// NewRequest converts a built prompt into a Request for model.
func NewRequest(p *models.PromptRequest, model string) *Request {
	return &Request{
		SystemMessage: p.SystemMessage,
		Prompt:        p.Instruction,
		Model:         model,
		Temperature:   DefaultTemperature,
		JSON:          p.JSON,
	}
}

// Response is the reply to a Request.
type Response struct {
	Content  string
	Model    string
	Duration time.Duration
}

// CompletionError is returned for any failed completion call.
type CompletionError struct {
	Backend string
	Model   string
	// StatusCode is the HTTP status of the failed call, or 0 if none was received.
	StatusCode int
	Err        error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s completion with model %q failed: %v", e.Backend, e.Model, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the call may succeed if retried.
func (e *CompletionError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
