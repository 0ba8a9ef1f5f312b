package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// GroqBaseURL is the default OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIClientOptions configures an OpenAIClient.
type OpenAIClientOptions struct {
	APIKey string
	// BaseURL defaults to GroqBaseURL.
	BaseURL string
	// DefaultModel is used when a Request has no model. Defaults to ModelLlama70B.
	DefaultModel string
	HTTPClient   *http.Client
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client       *openai.Client
	defaultModel string
}

// NewOpenAIClient creates an OpenAIClient. The API key is required.
func NewOpenAIClient(opts OpenAIClientOptions) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("an API key is required for the OpenAI-compatible client")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = GroqBaseURL

	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	model := opts.DefaultModel
	if model == "" {
		model = ModelLlama70B
	}

	return &OpenAIClient{
		client:       openai.NewClientWithConfig(cfg),
		defaultModel: model,
	}, nil
}

// Complete implements [Client].
func (c *OpenAIClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to OpenAIClient.Complete")
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	ccr := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
	}

	if req.JSON {
		ccr.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, ccr)

	if err != nil {
		slog.Warn("Completion request failed", "model", model, "error", err)
		return nil, &CompletionError{
			Backend:    "openai",
			Model:      model,
			StatusCode: statusCode(err),
			Err:        err,
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &CompletionError{
			Backend: "openai",
			Model:   model,
			Err:     errors.New("response contained no choices"),
		}
	}

	slog.Debug("Completion received",
		"model", resp.Model,
		"promptTokens", resp.Usage.PromptTokens,
		"completionTokens", resp.Usage.CompletionTokens)

	return &Response{
		Content:  resp.Choices[0].Message.Content,
		Model:    model,
		Duration: time.Since(start),
	}, nil
}

// Shutdown implements [Client]. The HTTP client holds no session state.
func (c *OpenAIClient) Shutdown(ctx context.Context) error {
	return nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}

	return 0
}
