package requirements

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
)

// JiraCredentials authenticate against Jira Cloud with an API token.
type JiraCredentials struct {
	// Domain is the site name, e.g. "acme" for acme.atlassian.net.
	Domain string
	Email  string
	Token  string
	// BaseURL overrides https://{Domain}.atlassian.net.
	BaseURL string
}

type jiraIssue struct {
	Fields struct {
		Summary     string          `json:"summary"`
		Description json.RawMessage `json:"description"`
	} `json:"fields"`
}

func (c *JiraCredentials) issueURL(key string) string {
	base := c.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.atlassian.net", c.Domain)
	}
	return strings.TrimRight(base, "/") + "/rest/api/3/issue/" + url.PathEscape(key)
}

func (f *Fetcher) fetchJira(ctx context.Context, key string) (string, error) {
	creds := f.opts.Jira
	if creds == nil || (creds.Domain == "" && creds.BaseURL == "") || creds.Email == "" || creds.Token == "" {
		return "", fmt.Errorf("jira: %w (domain, email and token are required)", ErrMissingCredentials)
	}

	var issue jiraIssue
	err := f.get(ctx, f.pipeline, models.SourceJira, key, creds.issueURL(key), func(r *http.Request) {
		r.SetBasicAuth(creds.Email, creds.Token)
	}, &issue)
	if err != nil {
		return "", err
	}

	return models.FormatRequirement(issue.Fields.Summary, descriptionText(issue.Fields.Description)), nil
}
