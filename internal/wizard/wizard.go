// Package wizard holds the huh forms behind `jarvis configure` and
// `jarvis interactive`.
package wizard

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/completion"
	"github.com/DominicRaj03/Gen-AI---QA/internal/projectconfig"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Answers holds the fields collected by the configuration wizard. Secrets are
// not collected; only the names of the environment variables that hold them.
type Answers struct {
	Backend          string
	Model            string
	JiraDomain       string
	JiraEmail        string
	AzureOrg         string
	AzureProject     string
	UseEntraID       bool
	Framework        string
	EnableSessionLog bool
}

// AnswersFrom seeds the wizard with the values already in cfg.
func AnswersFrom(cfg *projectconfig.ProjectConfig) Answers {
	return Answers{
		Backend:          cfg.Completion.Backend,
		Model:            cfg.Completion.Model,
		JiraDomain:       cfg.Jira.Domain,
		JiraEmail:        cfg.Jira.Email,
		AzureOrg:         cfg.AzureDevOps.Organization,
		AzureProject:     cfg.AzureDevOps.Project,
		UseEntraID:       cfg.AzureDevOps.UseEntraID != nil && *cfg.AzureDevOps.UseEntraID,
		Framework:        cfg.Defaults.Framework,
		EnableSessionLog: cfg.SessionLogEnabled(),
	}
}

// Apply writes the answers onto cfg, trimming whitespace.
func (a Answers) Apply(cfg *projectconfig.ProjectConfig) {
	cfg.Completion.Backend = strings.TrimSpace(a.Backend)
	cfg.Completion.Model = strings.TrimSpace(a.Model)
	cfg.Jira.Domain = strings.TrimSpace(a.JiraDomain)
	cfg.Jira.Email = strings.TrimSpace(a.JiraEmail)
	cfg.AzureDevOps.Organization = strings.TrimSpace(a.AzureOrg)
	cfg.AzureDevOps.Project = strings.TrimSpace(a.AzureProject)
	entra := a.UseEntraID
	cfg.AzureDevOps.UseEntraID = &entra
	cfg.Defaults.Framework = strings.TrimSpace(a.Framework)
	logs := a.EnableSessionLog
	cfg.Session.Log = &logs
}

// RunConfigWizard runs an interactive huh form seeded from cfg and returns
// the updated configuration. cfg itself is not modified.
func RunConfigWizard(in io.Reader, out io.Writer, cfg *projectconfig.ProjectConfig) (*projectconfig.ProjectConfig, error) {
	a := AnswersFrom(cfg)

	backendOpts := make([]huh.Option[string], 0, len(projectconfig.Backends))
	for _, b := range projectconfig.Backends {
		backendOpts = append(backendOpts, huh.NewOption(b, b))
	}
	frameworkOpts := FrameworkOptions(a.Framework)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Completion backend").
				Options(backendOpts...).
				Value(&a.Backend),
			huh.NewInput().
				Title("Model").
				Description(fmt.Sprintf("e.g. %s", strings.Join(completion.Models, ", "))).
				Value(&a.Model).
				Validate(required("model")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Jira domain").
				Description("The part before .atlassian.net. Leave empty to skip Jira").
				Placeholder("acme").
				Value(&a.JiraDomain).
				Validate(ValidateJiraDomain),
			huh.NewInput().
				Title("Jira email").
				Value(&a.JiraEmail).
				Validate(ValidateEmail),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Azure DevOps organization").
				Value(&a.AzureOrg),
			huh.NewInput().
				Title("Azure DevOps project").
				Value(&a.AzureProject),
			huh.NewConfirm().
				Title("Authenticate to Azure DevOps with Entra ID?").
				Value(&a.UseEntraID),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default automation framework").
				Options(frameworkOpts...).
				Value(&a.Framework),
			huh.NewConfirm().
				Title("Write session event logs?").
				Value(&a.EnableSessionLog),
		),
	).
		WithInput(in).
		WithOutput(out)

	if !isTerminal(in) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	updated := *cfg
	a.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	return &updated, nil
}

var (
	domainRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateJiraDomain accepts an empty domain (Jira disabled) or a bare
// Atlassian site name.
func ValidateJiraDomain(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ".") {
		return fmt.Errorf("enter only the site name, without .atlassian.net")
	}
	if !domainRe.MatchString(s) {
		return fmt.Errorf("invalid Jira domain %q", s)
	}
	return nil
}

// ValidateEmail accepts an empty value or something shaped like an address.
func ValidateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || emailRe.MatchString(s) {
		return nil
	}
	return fmt.Errorf("invalid email %q", s)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// isTerminal reports whether in is an interactive terminal. Non-TTY input
// (tests, pipes) switches forms to accessible mode.
func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
