package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotClient sends completions through the GitHub Copilot SDK.
type CopilotClient struct {
	defaultModel string

	client copilotClient

	startOnce sync.Once
	startErr  error
}

// CopilotClientOptions configures a CopilotClient.
type CopilotClientOptions struct {
	// DefaultModel is used when a Request has no model. Can be blank, which
	// means the copilot CLI will choose its own fallback model.
	DefaultModel string

	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotClient creates a CopilotClient. The underlying client is started
// on the first call to Complete.
func NewCopilotClient(options *CopilotClientOptions) *CopilotClient {
	copilotOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	c := &CopilotClient{}

	if options == nil || options.NewCopilotClient == nil {
		c.client = newCopilotClient(copilotOptions)
	} else {
		c.client = options.NewCopilotClient(copilotOptions)
	}

	if options != nil {
		c.defaultModel = options.DefaultModel
	}

	return c
}

// Complete implements [Client].
func (c *CopilotClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to CopilotClient.Complete")
	}

	c.startOnce.Do(func() {
		// autostart runs into issues when it is triggered from separate goroutines
		c.startErr = c.client.Start(ctx)
	})

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	if c.startErr != nil {
		return nil, &CompletionError{Backend: "copilot", Model: model, Err: fmt.Errorf("copilot failed to start: %w", c.startErr)}
	}

	start := time.Now()

	session, err := c.client.CreateSession(ctx, sessionConfig(model, req))

	if err != nil {
		return nil, &CompletionError{Backend: "copilot", Model: model, Err: fmt.Errorf("failed to create session: %w", err)}
	}

	defer func() {
		if err := session.Disconnect(); err != nil {
			slog.Debug("failed to disconnect copilot session", "error", err)
		}
	}()

	unsubscribe := session.On(sessionToSlog)
	defer unsubscribe()

	resp, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: copilotPrompt(req),
	})

	if err != nil {
		return nil, &CompletionError{Backend: "copilot", Model: model, Err: err}
	}

	if resp == nil || resp.Data.Content == nil {
		return nil, &CompletionError{Backend: "copilot", Model: model, Err: errors.New("no response content")}
	}

	return &Response{
		Content:  *resp.Data.Content,
		Model:    model,
		Duration: time.Since(start),
	}, nil
}

// Shutdown implements [Client].
func (c *CopilotClient) Shutdown(ctx context.Context) error {
	if err := c.client.Stop(); err != nil {
		slog.Info("failed to stop client", "error", err)
	}
	return nil
}

// sessionConfig opens a single-use session. The stage role is appended to
// the agent's own instructions. Prompts never ask for tools, so any
// permission request is approved rather than left to block the reply.
func sessionConfig(model string, req *Request) *copilot.SessionConfig {
	cfg := &copilot.SessionConfig{
		Model:               model,
		OnPermissionRequest: copilot.PermissionHandler.ApproveAll,
	}
	if req.SystemMessage != "" {
		cfg.SystemMessage = &copilot.SystemMessageConfig{
			Mode:    "append",
			Content: req.SystemMessage,
		}
	}
	return cfg
}

// copilotPrompt is the user message. Copilot has no strict JSON mode, so
// JSON stages are asked for it in words.
func copilotPrompt(req *Request) string {
	if req.JSON {
		return req.Prompt + "\n\nReply with a single JSON object and nothing else."
	}
	return req.Prompt
}

func sessionToSlog(event copilot.SessionEvent) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"type", event.Type,
	}

	attrs = addIf(attrs, "content", event.Data.Content)
	attrs = addIf(attrs, "deltaContent", event.Data.DeltaContent)
	attrs = addIf(attrs, "reasoningText", event.Data.ReasoningText)

	slog.Debug("Event received", attrs...)
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name, *v)
	}
	return attrs
}
