// Package requirements fetches requirement text from ticketing systems.
//
// Supported sources are Jira Cloud and Azure DevOps work items. A fetch issues
// one authenticated GET per attempt and normalizes the title and description
// fields into a single text block (see [models.FormatRequirement]).
package requirements

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/DominicRaj03/Gen-AI---QA/internal/attempts"
	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
)

const moduleName = "jarvis/requirements"

// Version is reported in the User-Agent of outbound requests.
var Version = "dev"

// Options configures a Fetcher. Sources without credentials are rejected at
// fetch time with ErrMissingCredentials.
type Options struct {
	Jira        *JiraCredentials
	AzureDevOps *AzureDevOpsCredentials

	// HTTPClient sends the requests. nil uses a zero-value http.Client, whose
	// default has no explicit timeout.
	HTTPClient *http.Client

	// Policy bounds attempts per fetch. The zero value is a single attempt.
	Policy attempts.Policy

	// Credential is used for Azure DevOps when UseEntraID is set. nil falls
	// back to azidentity.DefaultAzureCredential.
	Credential azcore.TokenCredential
}

// Fetcher retrieves requirement text from the configured sources.
type Fetcher struct {
	opts     Options
	pipeline runtime.Pipeline
}

// NewFetcher builds a Fetcher. The azcore retry policy is disabled; retries
// are controlled only by opts.Policy.
func NewFetcher(opts Options) *Fetcher {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	opts.Policy.Retryable = retryable

	return &Fetcher{
		opts:     opts,
		pipeline: newPipeline(httpClient, nil),
	}
}

func newPipeline(transport policy.Transporter, perRetry []policy.Policy) runtime.Pipeline {
	return runtime.NewPipeline(moduleName, Version, runtime.PipelineOptions{
		PerRetry: perRetry,
	}, &policy.ClientOptions{
		Transport: transport,
		Retry: policy.RetryOptions{
			// a negative value means one try and no retries
			MaxRetries: -1,
		},
	})
}

// Fetch returns the normalized requirement text for itemID from source.
// Non-200 responses are reported as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, source models.Source, itemID string) (string, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return "", ErrMissingItemID
	}

	var text string
	err := f.opts.Policy.Do(ctx, "fetch "+string(source), func(ctx context.Context) error {
		var err error
		switch source {
		case models.SourceJira:
			text, err = f.fetchJira(ctx, itemID)
		case models.SourceAzureDevOps:
			text, err = f.fetchAzureDevOps(ctx, itemID)
		default:
			return fmt.Errorf("%w %q", ErrUnknownSource, source)
		}
		return err
	})
	if err != nil {
		return "", err
	}

	return text, nil
}

// get sends one GET through pl and decodes a 200 JSON body into v.
func (f *Fetcher) get(ctx context.Context, pl runtime.Pipeline, source models.Source, itemID, endpoint string, authorize func(*http.Request), v any) error {
	req, err := runtime.NewRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return fmt.Errorf("building %s request: %w", source, err)
	}
	req.Raw().Header.Set("Accept", "application/json")
	if authorize != nil {
		authorize(req.Raw())
	}

	slog.Debug("Fetching requirement", "source", source, "item", itemID, "url", endpoint)

	resp, err := pl.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", source, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Requirement source returned non-200", "source", source, "item", itemID, "status", resp.StatusCode)
		return &FetchError{Source: source, ItemID: itemID, StatusCode: resp.StatusCode}
	}

	body, err := runtime.Payload(resp)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", source, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s response: %w", source, err)
	}
	return nil
}
