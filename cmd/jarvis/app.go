package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/DominicRaj03/Gen-AI---QA/internal/attempts"
	"github.com/DominicRaj03/Gen-AI---QA/internal/completion"
	"github.com/DominicRaj03/Gen-AI---QA/internal/export"
	"github.com/DominicRaj03/Gen-AI---QA/internal/pipeline"
	"github.com/DominicRaj03/Gen-AI---QA/internal/projectconfig"
	"github.com/DominicRaj03/Gen-AI---QA/internal/requirements"
	"github.com/DominicRaj03/Gen-AI---QA/internal/session"
)

// offlineScore is the canned reply of the mock backend to the score stage.
const offlineScore = `{
  "score": 70,
  "rating": "Good",
  "parameters": [
    {"name": "Clarity", "score": "15/20", "findings": "Offline mock evaluation."},
    {"name": "Completeness", "score": "14/20", "findings": "Offline mock evaluation."},
    {"name": "Testability", "score": "14/20", "findings": "Offline mock evaluation."},
    {"name": "Consistency", "score": "14/20", "findings": "Offline mock evaluation."},
    {"name": "Feasibility", "score": "13/20", "findings": "Offline mock evaluation."}
  ],
  "recommendations": ["Configure a real completion backend for a meaningful score."]
}`

// loadConfig reads .jarvis.yaml from the working directory upwards and
// applies global flag overrides.
func loadConfig(flags *globalFlags) (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := projectconfig.Load(wd)
	if err != nil {
		return nil, err
	}

	if flags != nil {
		if flags.backend != "" {
			cfg.Completion.Backend = flags.backend
		}
		if flags.model != "" {
			cfg.Completion.Model = flags.model
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func policyFor(cfg *projectconfig.ProjectConfig) attempts.Policy {
	return attempts.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     cfg.Backoff(),
	}
}

// newCompletionClient builds the client for the configured backend.
func newCompletionClient(cfg *projectconfig.ProjectConfig) (completion.Client, error) {
	switch cfg.Completion.Backend {
	case "openai":
		key := projectconfig.Env(cfg.Completion.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("no API key: set %s or choose another backend with --backend", cfg.Completion.APIKeyEnv)
		}
		client, err := completion.NewOpenAIClient(completion.OpenAIClientOptions{
			APIKey:       key,
			BaseURL:      cfg.Completion.BaseURL,
			DefaultModel: cfg.Completion.Model,
			HTTPClient:   &http.Client{Timeout: cfg.CompletionTimeout()},
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "copilot":
		return completion.NewCopilotClient(&completion.CopilotClientOptions{
			DefaultModel: cfg.Completion.Model,
		}), nil
	case "mock":
		return completion.NewMockClient().Respond("testability", offlineScore), nil
	default:
		return nil, fmt.Errorf("unknown completion backend %q", cfg.Completion.Backend)
	}
}

// newFetcher builds a requirement fetcher for every tracker configured.
// Secrets come from the environment variables named in the config.
func newFetcher(cfg *projectconfig.ProjectConfig) *requirements.Fetcher {
	opts := requirements.Options{Policy: policyFor(cfg)}

	if cfg.Jira.Domain != "" || cfg.Jira.BaseURL != "" {
		opts.Jira = &requirements.JiraCredentials{
			Domain:  cfg.Jira.Domain,
			Email:   cfg.Jira.Email,
			Token:   projectconfig.Env(cfg.Jira.TokenEnv),
			BaseURL: cfg.Jira.BaseURL,
		}
	}
	if cfg.AzureDevOps.Organization != "" {
		opts.AzureDevOps = &requirements.AzureDevOpsCredentials{
			Organization:        cfg.AzureDevOps.Organization,
			Project:             cfg.AzureDevOps.Project,
			PersonalAccessToken: projectconfig.Env(cfg.AzureDevOps.TokenEnv),
			UseEntraID:          cfg.AzureDevOps.UseEntraID != nil && *cfg.AzureDevOps.UseEntraID,
			BaseURL:             cfg.AzureDevOps.BaseURL,
		}
	}
	return requirements.NewFetcher(opts)
}

// newRunner wires one session. logPath overrides the configured session log;
// "" falls back to the config, which may disable logging.
func newRunner(cfg *projectconfig.ProjectConfig, logPath string) (*pipeline.Runner, error) {
	client, err := newCompletionClient(cfg)
	if err != nil {
		return nil, err
	}

	store := session.NewStore()

	var logger session.Logger = session.NopLogger{}
	if logPath == "" && cfg.SessionLogEnabled() {
		logPath = session.DefaultLogPath(cfg.Session.Dir, store.ID())
	}
	if logPath != "" {
		jl, err := session.NewJSONLogger(logPath)
		if err != nil {
			return nil, fmt.Errorf("opening session log: %w", err)
		}
		slog.Debug("Writing session log", "path", jl.Path())
		logger = jl
	}

	return pipeline.New(pipeline.Options{
		Store:   store,
		Client:  client,
		Fetcher: newFetcher(cfg),
		Policy:  policyFor(cfg),
		Model:   cfg.Completion.Model,
		Backend: cfg.Completion.Backend,
		Logger:  logger,
	}), nil
}

// newSink returns the export destination: Azure Blob Storage when blob is
// set, otherwise dir (or the configured export directory).
func newSink(cfg *projectconfig.ProjectConfig, blob bool, dir string) (export.Sink, error) {
	if blob {
		sink, err := export.NewBlobSink(export.BlobOptions{
			ConnectionString: projectconfig.Env(cfg.Export.ConnectionStringEnv),
			AccountURL:       cfg.Export.AccountURL,
			Container:        cfg.Export.Container,
			CreateContainer:  true,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
	if dir == "" {
		dir = cfg.Export.Dir
	}
	return export.FileSink{Dir: dir}, nil
}

// closeRunner ends the session, logging rather than failing on errors.
func closeRunner(r *pipeline.Runner) {
	if err := r.Close(context.Background()); err != nil {
		slog.Warn("Failed to close session", "error", err)
	}
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
