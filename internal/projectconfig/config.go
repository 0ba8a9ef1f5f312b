// Package projectconfig provides the ProjectConfig struct and loader for
// .jarvis.yaml project-level configuration files.
//
// Secrets never live in the file. The file names the environment variables
// that hold them.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file name.
const FileName = ".jarvis.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultBackend   = "openai"
	DefaultModel     = "llama-3.3-70b-versatile"
	DefaultBaseURL   = "https://api.groq.com/openai/v1"
	DefaultAPIKeyEnv = "GROQ_API_KEY"
	DefaultTimeout   = 120

	DefaultJiraTokenEnv        = "JIRA_API_TOKEN"
	DefaultAzureDevOpsTokenEnv = "AZURE_DEVOPS_PAT"

	DefaultMaxAttempts = 1
	DefaultBackoffMs   = 0

	DefaultExportDir           = "exports"
	DefaultExportContainer     = "jarvis-exports"
	DefaultConnectionStringEnv = "AZURE_STORAGE_CONNECTION_STRING"

	DefaultSessionDir = ".jarvis/sessions"

	DefaultServerPort = 8080

	DefaultFramework = "Playwright"
)

// Backends lists the accepted completion backends.
var Backends = []string{"openai", "copilot", "mock"}

// CompletionConfig selects and configures the completion backend.
type CompletionConfig struct {
	Backend   string `yaml:"backend,omitempty"`
	Model     string `yaml:"model,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	Timeout   int    `yaml:"timeout,omitempty"`
}

// JiraConfig holds the non-secret Jira connection settings.
type JiraConfig struct {
	Domain   string `yaml:"domain,omitempty"`
	Email    string `yaml:"email,omitempty"`
	TokenEnv string `yaml:"token_env,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// AzureDevOpsConfig holds the non-secret Azure DevOps connection settings.
type AzureDevOpsConfig struct {
	Organization string `yaml:"organization,omitempty"`
	Project      string `yaml:"project,omitempty"`
	TokenEnv     string `yaml:"token_env,omitempty"`
	UseEntraID   *bool  `yaml:"use_entra_id,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
}

// RetryConfig is the attempt policy for outbound calls.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts,omitempty"`
	BackoffMs   int `yaml:"backoff_ms,omitempty"`
}

// ExportConfig holds export destinations.
type ExportConfig struct {
	Dir                 string `yaml:"dir,omitempty"`
	Container           string `yaml:"container,omitempty"`
	ConnectionStringEnv string `yaml:"connection_string_env,omitempty"`
	AccountURL          string `yaml:"account_url,omitempty"`
}

// SessionConfig controls the NDJSON session event log.
type SessionConfig struct {
	Log *bool  `yaml:"log,omitempty"`
	Dir string `yaml:"dir,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// DefaultsConfig holds default stage parameters.
type DefaultsConfig struct {
	Framework string `yaml:"framework,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .jarvis.yaml.
type ProjectConfig struct {
	Completion  CompletionConfig  `yaml:"completion,omitempty"`
	Jira        JiraConfig        `yaml:"jira,omitempty"`
	AzureDevOps AzureDevOpsConfig `yaml:"azure_devops,omitempty"`
	Retry       RetryConfig       `yaml:"retry,omitempty"`
	Export      ExportConfig      `yaml:"export,omitempty"`
	Session     SessionConfig     `yaml:"session,omitempty"`
	Server      ServerConfig      `yaml:"server,omitempty"`
	Defaults    DefaultsConfig    `yaml:"defaults,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Completion: CompletionConfig{
			Backend:   DefaultBackend,
			Model:     DefaultModel,
			BaseURL:   DefaultBaseURL,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   DefaultTimeout,
		},
		Jira: JiraConfig{
			TokenEnv: DefaultJiraTokenEnv,
		},
		AzureDevOps: AzureDevOpsConfig{
			TokenEnv:   DefaultAzureDevOpsTokenEnv,
			UseEntraID: boolPtr(false),
		},
		Retry: RetryConfig{
			MaxAttempts: DefaultMaxAttempts,
			BackoffMs:   DefaultBackoffMs,
		},
		Export: ExportConfig{
			Dir:                 DefaultExportDir,
			Container:           DefaultExportContainer,
			ConnectionStringEnv: DefaultConnectionStringEnv,
		},
		Session: SessionConfig{
			Log: boolPtr(false),
			Dir: DefaultSessionDir,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
		Defaults: DefaultsConfig{
			Framework: DefaultFramework,
		},
	}
}

// Load finds .jarvis.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	_, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

// Find returns the path of the nearest .jarvis.yaml above startDir, or
// os.ErrNotExist.
func Find(startDir string) (string, error) {
	p, _, err := findConfigFile(startDir)
	return p, err
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", FileName, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Validate checks values that have a fixed set of options.
func (c *ProjectConfig) Validate() error {
	valid := false
	for _, b := range Backends {
		if c.Completion.Backend == b {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("completion.backend %q is not one of %v", c.Completion.Backend, Backends)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BackoffMs < 0 {
		return fmt.Errorf("retry.backoff_ms must not be negative, got %d", c.Retry.BackoffMs)
	}
	return nil
}

// Backoff returns the retry backoff as a duration.
func (c *ProjectConfig) Backoff() time.Duration {
	return time.Duration(c.Retry.BackoffMs) * time.Millisecond
}

// CompletionTimeout returns the per-call completion timeout.
func (c *ProjectConfig) CompletionTimeout() time.Duration {
	return time.Duration(c.Completion.Timeout) * time.Second
}

// SessionLogEnabled reports whether session events are written to disk.
func (c *ProjectConfig) SessionLogEnabled() bool {
	return c.Session.Log != nil && *c.Session.Log
}

// Env reads the secret held in the environment variable name.
func Env(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

// findConfigFile walks up from dir looking for .jarvis.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Completion
	setString(&dst.Completion.Backend, src.Completion.Backend)
	setString(&dst.Completion.Model, src.Completion.Model)
	setString(&dst.Completion.BaseURL, src.Completion.BaseURL)
	setString(&dst.Completion.APIKeyEnv, src.Completion.APIKeyEnv)
	if src.Completion.Timeout != 0 {
		dst.Completion.Timeout = src.Completion.Timeout
	}

	// Jira
	setString(&dst.Jira.Domain, src.Jira.Domain)
	setString(&dst.Jira.Email, src.Jira.Email)
	setString(&dst.Jira.TokenEnv, src.Jira.TokenEnv)
	setString(&dst.Jira.BaseURL, src.Jira.BaseURL)

	// Azure DevOps
	setString(&dst.AzureDevOps.Organization, src.AzureDevOps.Organization)
	setString(&dst.AzureDevOps.Project, src.AzureDevOps.Project)
	setString(&dst.AzureDevOps.TokenEnv, src.AzureDevOps.TokenEnv)
	setString(&dst.AzureDevOps.BaseURL, src.AzureDevOps.BaseURL)
	if src.AzureDevOps.UseEntraID != nil {
		dst.AzureDevOps.UseEntraID = src.AzureDevOps.UseEntraID
	}

	// Retry
	if src.Retry.MaxAttempts != 0 {
		dst.Retry.MaxAttempts = src.Retry.MaxAttempts
	}
	if src.Retry.BackoffMs != 0 {
		dst.Retry.BackoffMs = src.Retry.BackoffMs
	}

	// Export
	setString(&dst.Export.Dir, src.Export.Dir)
	setString(&dst.Export.Container, src.Export.Container)
	setString(&dst.Export.ConnectionStringEnv, src.Export.ConnectionStringEnv)
	setString(&dst.Export.AccountURL, src.Export.AccountURL)

	// Session
	if src.Session.Log != nil {
		dst.Session.Log = src.Session.Log
	}
	setString(&dst.Session.Dir, src.Session.Dir)

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}

	// Defaults
	setString(&dst.Defaults.Framework, src.Defaults.Framework)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func boolPtr(b bool) *bool {
	return &b
}
