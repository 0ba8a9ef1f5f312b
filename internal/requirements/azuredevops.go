package requirements

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
)

const (
	azureDevOpsHost       = "https://dev.azure.com"
	azureDevOpsAPIVersion = "7.1"
	// azureDevOpsScope is the Entra ID resource for Azure DevOps.
	azureDevOpsScope = "499b84ac-1321-427f-aa17-267ca6975798/.default"
)

// AzureDevOpsCredentials authenticate against Azure DevOps Services.
type AzureDevOpsCredentials struct {
	Organization        string
	Project             string
	PersonalAccessToken string
	// UseEntraID swaps PAT basic auth for an Entra ID bearer token.
	UseEntraID bool
	// BaseURL overrides https://dev.azure.com.
	BaseURL string
}

type workItem struct {
	Fields struct {
		Title       string `json:"System.Title"`
		Description string `json:"System.Description"`
	} `json:"fields"`
}

func (c *AzureDevOpsCredentials) workItemURL(id string) string {
	base := c.BaseURL
	if base == "" {
		base = azureDevOpsHost
	}
	return fmt.Sprintf("%s/%s/%s/_apis/wit/workitems/%s?api-version=%s",
		strings.TrimRight(base, "/"),
		url.PathEscape(c.Organization),
		url.PathEscape(c.Project),
		url.PathEscape(id),
		azureDevOpsAPIVersion)
}

func (f *Fetcher) fetchAzureDevOps(ctx context.Context, id string) (string, error) {
	creds := f.opts.AzureDevOps
	if creds == nil || creds.Organization == "" || creds.Project == "" {
		return "", fmt.Errorf("azure devops: %w (organization and project are required)", ErrMissingCredentials)
	}

	pl := f.pipeline
	var authorize func(*http.Request)

	if creds.UseEntraID {
		var err error
		pl, err = f.entraPipeline(creds)
		if err != nil {
			return "", err
		}
	} else {
		if creds.PersonalAccessToken == "" {
			return "", fmt.Errorf("azure devops: %w (personal access token is required)", ErrMissingCredentials)
		}
		authorize = func(r *http.Request) {
			r.SetBasicAuth("", creds.PersonalAccessToken)
		}
	}

	var item workItem
	if err := f.get(ctx, pl, models.SourceAzureDevOps, id, creds.workItemURL(id), authorize, &item); err != nil {
		return "", err
	}

	return models.FormatRequirement(item.Fields.Title, item.Fields.Description), nil
}

// entraPipeline builds a pipeline that attaches a bearer token for Azure DevOps.
func (f *Fetcher) entraPipeline(creds *AzureDevOpsCredentials) (runtime.Pipeline, error) {
	cred := f.opts.Credential
	if cred == nil {
		defaultCred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return runtime.Pipeline{}, fmt.Errorf("azure devops: creating Entra ID credential: %w", err)
		}
		cred = defaultCred
		f.opts.Credential = cred
	}

	httpClient := f.opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return newPipeline(httpClient, []policy.Policy{bearerPolicy(cred, creds.BaseURL)}), nil
}

func bearerPolicy(cred azcore.TokenCredential, baseURL string) policy.Policy {
	return runtime.NewBearerTokenPolicy(cred, []string{azureDevOpsScope}, &policy.BearerTokenOptions{
		// only local test servers are plain http
		InsecureAllowCredentialWithHTTP: strings.HasPrefix(baseURL, "http://"),
	})
}
