package requirements

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/DominicRaj03/Gen-AI---QA/internal/attempts"
	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestFetch_JiraSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/api/3/issue/QA-1", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "me@example.com", user)
		assert.Equal(t, "secret", pass)

		writeJSON(t, w, map[string]any{
			"fields": map[string]any{"summary": "S", "description": "D"},
		})
	}))
	defer srv.Close()

	f := NewFetcher(Options{
		Jira:       &JiraCredentials{Domain: "acme", Email: "me@example.com", Token: "secret", BaseURL: srv.URL},
		HTTPClient: srv.Client(),
	})

	text, err := f.Fetch(context.Background(), models.SourceJira, "QA-1")
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY: S\nDESC: D", text)
}

func TestFetch_JiraADFDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fields":{"summary":"Reset password","description":{"type":"doc","version":1,"content":[
			{"type":"paragraph","content":[{"type":"text","text":"As a user"},{"type":"hardBreak"},{"type":"text","text":"I want a reset link"}]},
			{"type":"paragraph","content":[{"type":"text","text":"AC: link expires"}]}
		]}}}`))
	}))
	defer srv.Close()

	f := NewFetcher(Options{
		Jira:       &JiraCredentials{Email: "me@example.com", Token: "secret", BaseURL: srv.URL},
		HTTPClient: srv.Client(),
	})

	text, err := f.Fetch(context.Background(), models.SourceJira, "QA-2")
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY: Reset password\nDESC: As a user\nI want a reset link\nAC: link expires", text)
}

func TestFetch_JiraNullDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fields":{"summary":"Only a title","description":null}}`))
	}))
	defer srv.Close()

	f := NewFetcher(Options{
		Jira:       &JiraCredentials{Email: "e", Token: "t", BaseURL: srv.URL},
		HTTPClient: srv.Client(),
	})

	text, err := f.Fetch(context.Background(), models.SourceJira, "QA-3")
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY: Only a title\nDESC: ", text)
}

func TestFetch_Non200ReturnsFetchError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(Options{
		Jira:       &JiraCredentials{Email: "e", Token: "t", BaseURL: srv.URL},
		HTTPClient: srv.Client(),
	})

	var text string
	var err error
	require.NotPanics(t, func() {
		text, err = f.Fetch(context.Background(), models.SourceJira, "QA-404")
	})
	require.Error(t, err)
	assert.Empty(t, text)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 1, calls)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, models.SourceJira, fe.Source)
}

func TestFetch_AzureDevOpsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contoso/web/_apis/wit/workitems/42", r.URL.Path)
		assert.Equal(t, "7.1", r.URL.Query().Get("api-version"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Empty(t, user)
		assert.Equal(t, "pat-token", pass)

		writeJSON(t, w, map[string]any{
			"fields": map[string]any{
				"System.Title":       "Checkout flow",
				"System.Description": "<div>Pay with card</div>",
			},
		})
	}))
	defer srv.Close()

	f := NewFetcher(Options{
		AzureDevOps: &AzureDevOpsCredentials{
			Organization:        "contoso",
			Project:             "web",
			PersonalAccessToken: "pat-token",
			BaseURL:             srv.URL,
		},
		HTTPClient: srv.Client(),
	})

	text, err := f.Fetch(context.Background(), models.SourceAzureDevOps, "42")
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY: Checkout flow\nDESC: <div>Pay with card</div>", text)
}

type fakeCredential struct {
	scopes []string
}

func (c *fakeCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	c.scopes = opts.Scopes
	return azcore.AccessToken{Token: "entra-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func TestFetch_AzureDevOpsEntraID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer entra-token", r.Header.Get("Authorization"))
		writeJSON(t, w, map[string]any{
			"fields": map[string]any{"System.Title": "T", "System.Description": "D"},
		})
	}))
	defer srv.Close()

	cred := &fakeCredential{}
	f := NewFetcher(Options{
		AzureDevOps: &AzureDevOpsCredentials{
			Organization: "contoso",
			Project:      "web",
			UseEntraID:   true,
			BaseURL:      srv.URL,
		},
		HTTPClient: srv.Client(),
		Credential: cred,
	})

	text, err := f.Fetch(context.Background(), models.SourceAzureDevOps, "7")
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY: T\nDESC: D", text)
	assert.Equal(t, []string{azureDevOpsScope}, cred.scopes)
}

func TestFetch_RetriesTemporaryStatusWhenConfigured(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, map[string]any{"fields": map[string]any{"summary": "S", "description": "D"}})
	}))
	defer srv.Close()

	f := NewFetcher(Options{
		Jira:       &JiraCredentials{Email: "e", Token: "t", BaseURL: srv.URL},
		HTTPClient: srv.Client(),
		Policy:     attempts.Policy{MaxAttempts: 2, Backoff: time.Millisecond},
	})

	text, err := f.Fetch(context.Background(), models.SourceJira, "QA-9")
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY: S\nDESC: D", text)
	assert.Equal(t, 2, calls)
}

func TestFetch_DoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := NewFetcher(Options{
		Jira:       &JiraCredentials{Email: "e", Token: "t", BaseURL: srv.URL},
		HTTPClient: srv.Client(),
		Policy:     attempts.Policy{MaxAttempts: 3},
	})

	_, err := f.Fetch(context.Background(), models.SourceJira, "QA-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 1, calls)
}

func TestFetch_InputValidation(t *testing.T) {
	tests := []struct {
		name    string
		jira    *JiraCredentials
		source  models.Source
		id      string
		wantErr string
	}{
		{name: "empty id", source: models.SourceJira, id: "  ", wantErr: "item id is required"},
		{name: "jira not configured", source: models.SourceJira, id: "QA-1", wantErr: "missing credentials"},
		{name: "jira without email", jira: &JiraCredentials{Domain: "acme", Token: "tok"}, source: models.SourceJira, id: "QA-1", wantErr: "missing credentials"},
		{name: "ado not configured", source: models.SourceAzureDevOps, id: "1", wantErr: "missing credentials"},
		{name: "unknown source", source: models.Source("github"), id: "1", wantErr: "unknown requirement source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(Options{Jira: tt.jira})
			_, err := f.Fetch(context.Background(), tt.source, tt.id)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, IsInputError(err))
		})
	}
}

func TestWorkItemURL_Default(t *testing.T) {
	c := &AzureDevOpsCredentials{Organization: "org", Project: "My Project"}
	got := c.workItemURL("12")
	assert.Equal(t, "https://dev.azure.com/org/My%20Project/_apis/wit/workitems/12?api-version=7.1", got)
}

func TestIssueURL_Default(t *testing.T) {
	c := &JiraCredentials{Domain: "acme"}
	assert.Equal(t, "https://acme.atlassian.net/rest/api/3/issue/QA-1", c.issueURL("QA-1"))
}

func TestDescriptionText_UnknownShapeKeepsRaw(t *testing.T) {
	raw := json.RawMessage(`[1,2,3]`)
	assert.True(t, strings.Contains(descriptionText(raw), "1,2,3"))
}
