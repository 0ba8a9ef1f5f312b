package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DominicRaj03/Gen-AI---QA/internal/attempts"
	"github.com/DominicRaj03/Gen-AI---QA/internal/completion"
	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/DominicRaj03/Gen-AI---QA/internal/prompts"
	"github.com/DominicRaj03/Gen-AI---QA/internal/requirements"
	"github.com/DominicRaj03/Gen-AI---QA/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	text  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, source models.Source, itemID string) (string, error) {
	f.calls++
	return f.text, f.err
}

// flakyClient fails the first n calls with a temporary error.
type flakyClient struct {
	failures int
	calls    int
}

func (c *flakyClient) Complete(ctx context.Context, req *completion.Request) (*completion.Response, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, &completion.CompletionError{Backend: "flaky", StatusCode: 503, Err: errors.New("unavailable")}
	}
	return &completion.Response{Content: "recovered"}, nil
}

func (c *flakyClient) Shutdown(ctx context.Context) error { return nil }

const requirement = "As a user I want to reset my password"

func newRunner(t *testing.T, client completion.Client) (*Runner, *bytes.Buffer) {
	t.Helper()
	var log bytes.Buffer
	r := New(Options{
		Client:  client,
		Model:   completion.ModelLlama70B,
		Backend: "mock",
		Logger:  session.NewStreamLogger(&log),
	})
	return r, &log
}

func TestRun_GherkinEndToEnd(t *testing.T) {
	mock := completion.NewMockClient().Respond("Given/When/Then", "Feature: Password reset\n  Scenario: ...")
	r, log := newRunner(t, mock)

	require.True(t, r.SetRequirement(requirement).OK())

	out := r.Run(context.Background(), prompts.KindGenerateGherkin, RunOptions{})
	require.True(t, out.OK(), out.Display())
	assert.Equal(t, "Feature: Password reset\n  Scenario: ...", out.Content)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Prompt, "Given/When/Then")
	assert.Contains(t, reqs[0].Prompt, requirement)
	assert.Equal(t, "You are a professional BDD Specialist.", reqs[0].SystemMessage)
	assert.Equal(t, completion.ModelLlama70B, reqs[0].Model)
	assert.InDelta(t, 0.1, reqs[0].Temperature, 0.0001)

	a, ok := r.Store().Get(models.ArtifactBDD)
	require.True(t, ok)
	assert.Equal(t, 1, a.Seq)

	assert.Contains(t, log.String(), `"type":"stage_complete"`)
}

func TestRun_LongRequirementNotTruncated(t *testing.T) {
	mock := completion.NewMockClient()
	r, _ := newRunner(t, mock)

	long := strings.Repeat("password reset ", 700)
	r.SetRequirement(long)

	out := r.Run(context.Background(), prompts.KindEvaluate, RunOptions{})
	require.True(t, out.OK())
	assert.Contains(t, mock.Requests()[0].Prompt, long)
}

func TestRun_PrefersPredecessorArtifact(t *testing.T) {
	mock := completion.NewMockClient()
	r, _ := newRunner(t, mock)
	r.SetRequirement(requirement)

	out := r.Run(context.Background(), prompts.KindGenerateTestSuite, RunOptions{})
	require.True(t, out.OK())
	assert.Contains(t, mock.Requests()[0].Prompt, requirement, "no bdd artifact: falls back to requirement")

	_, err := r.Store().Put(models.ArtifactBDD, "Given a user When they reset Then it works")
	require.NoError(t, err)

	out = r.Run(context.Background(), prompts.KindGenerateTestSuite, RunOptions{})
	require.True(t, out.OK())
	prompt := mock.Requests()[1].Prompt
	assert.Contains(t, prompt, "Given a user When they reset Then it works")
	assert.NotContains(t, prompt, requirement)
}

func TestRun_FailedStageDoesNotPoisonLaterStages(t *testing.T) {
	mock := completion.NewMockClient().Fail("Given/When/Then", errors.New("rate limit exceeded"))
	r, _ := newRunner(t, mock)
	r.SetRequirement(requirement)

	out := r.Run(context.Background(), prompts.KindGenerateGherkin, RunOptions{})
	require.False(t, out.OK())
	assert.Equal(t, models.ErrorKindCompletion, out.ErrKind)
	assert.True(t, strings.HasPrefix(out.Display(), models.ErrorMarker))
	assert.Contains(t, out.ErrMsg, "rate limit exceeded")

	_, ok := r.Store().Get(models.ArtifactBDD)
	assert.False(t, ok, "a failure is never stored as content")

	out = r.Run(context.Background(), prompts.KindGenerateTestSuite, RunOptions{})
	require.True(t, out.OK())
	prompt := mock.Requests()[1].Prompt
	assert.Contains(t, prompt, requirement)
	assert.NotContains(t, prompt, "rate limit exceeded")
}

func TestRun_FailureKeepsPreviousArtifact(t *testing.T) {
	mock := completion.NewMockClient()
	r, _ := newRunner(t, mock)
	r.SetRequirement(requirement)

	require.True(t, r.Run(context.Background(), prompts.KindGenerateStrategy, RunOptions{}).OK())
	good, _ := r.Store().Get(models.ArtifactStrategy)

	mock.Err = errors.New("connection reset")
	out := r.Run(context.Background(), prompts.KindGenerateStrategy, RunOptions{})
	require.False(t, out.OK())

	kept, ok := r.Store().Get(models.ArtifactStrategy)
	require.True(t, ok)
	assert.Equal(t, good, kept)

	f, ok := r.Store().LastFailure(models.ArtifactStrategy)
	require.True(t, ok)
	assert.Contains(t, f.ErrMsg, "connection reset")
}

func TestRun_EmptySubjectFailsLocally(t *testing.T) {
	mock := completion.NewMockClient()
	r, _ := newRunner(t, mock)

	out := r.Run(context.Background(), prompts.KindEvaluate, RunOptions{})
	require.False(t, out.OK())
	assert.Equal(t, models.ErrorKindInput, out.ErrKind)
	assert.Empty(t, mock.Requests(), "no completion call for an empty subject")
}

func TestRun_InputOverride(t *testing.T) {
	mock := completion.NewMockClient()
	r, _ := newRunner(t, mock)

	out := r.Run(context.Background(), prompts.KindAnalyzeFailureLog, RunOptions{Input: "TimeoutError: locator('#submit')"})
	require.True(t, out.OK())
	assert.Contains(t, mock.Requests()[0].Prompt, "TimeoutError: locator('#submit')")
	assert.Equal(t, "You are a professional Test Automation Consultant.", mock.Requests()[0].SystemMessage)
}

func TestRun_Automation(t *testing.T) {
	mock := completion.NewMockClient()
	r, _ := newRunner(t, mock)
	r.SetRequirement(requirement)

	out := r.Run(context.Background(), prompts.KindGenerateAutomation, RunOptions{Params: map[string]any{"framework": "cypress"}})
	require.True(t, out.OK())
	assert.Contains(t, mock.Requests()[0].Prompt, "Cypress")

	out = r.Run(context.Background(), prompts.KindGenerateAutomation, RunOptions{Params: map[string]any{"framework": "Watir"}})
	require.False(t, out.OK())
	assert.Equal(t, models.ErrorKindInput, out.ErrKind)
}

func TestRun_UnknownStage(t *testing.T) {
	r, _ := newRunner(t, completion.NewMockClient())
	out := r.Run(context.Background(), "nope", RunOptions{})
	assert.Equal(t, models.ErrorKindInput, out.ErrKind)
}

func TestScore(t *testing.T) {
	canned := "```json\n" + `{"score":84,"rating":"Good","parameters":[{"name":"Clarity","score":"18/20","findings":"ok"}],"recommendations":["add examples"]}` + "\n```"
	mock := completion.NewMockClient().Respond("testability", canned)
	r, _ := newRunner(t, mock)
	r.SetRequirement(requirement)

	ev, out := r.Score(context.Background(), RunOptions{})
	require.True(t, out.OK(), out.Display())
	require.NotNil(t, ev)
	assert.Equal(t, 84, ev.Score)
	assert.Equal(t, "Good", string(ev.Rating))
	assert.Len(t, ev.Parameters, 1)
	assert.Equal(t, []string{"add examples"}, ev.Recommendations)
	assert.True(t, mock.Requests()[0].JSON)

	stored, _ := r.Store().Get(models.ArtifactScore)
	assert.True(t, strings.HasPrefix(stored.Content, "{"), "code fence is stripped before storing")
}

func TestScore_ParseFailureKeepsPreviousScore(t *testing.T) {
	mock := completion.NewMockClient().Respond("testability", `{"score":70,"rating":"Good","parameters":[],"recommendations":[]}`)
	r, _ := newRunner(t, mock)
	r.SetRequirement(requirement)

	_, out := r.Score(context.Background(), RunOptions{})
	require.True(t, out.OK())

	bad := completion.NewMockClient().Respond("testability", "I think it is pretty good.")
	r.client = bad

	ev, out := r.Score(context.Background(), RunOptions{})
	assert.Nil(t, ev)
	require.False(t, out.OK())
	assert.Equal(t, models.ErrorKindParse, out.ErrKind)

	stored, ok := r.Store().Get(models.ArtifactScore)
	require.True(t, ok)
	assert.Contains(t, stored.Content, `"score":70`)
}

func TestRun_TransportFailureNeverPanics(t *testing.T) {
	mock := completion.NewMockClient()
	mock.Err = errors.New("dial tcp: connection refused")
	r, _ := newRunner(t, mock)
	r.SetRequirement(requirement)

	for _, s := range r.Registry().Stages() {
		require.NotPanics(t, func() {
			out := r.Run(context.Background(), s.Kind, RunOptions{})
			assert.False(t, out.OK())
		})
	}
}

func TestRun_RetriesTemporaryFailures(t *testing.T) {
	client := &flakyClient{failures: 1}
	r := New(Options{
		Client: client,
		Policy: attempts.Policy{MaxAttempts: 2, Backoff: time.Millisecond},
	})
	r.SetRequirement(requirement)

	out := r.Run(context.Background(), prompts.KindEvaluate, RunOptions{})
	require.True(t, out.OK(), out.Display())
	assert.Equal(t, "recovered", out.Content)
	assert.Equal(t, 2, client.calls)
}

func TestRun_SingleAttemptByDefault(t *testing.T) {
	client := &flakyClient{failures: 1}
	r := New(Options{Client: client})
	r.SetRequirement(requirement)

	out := r.Run(context.Background(), prompts.KindEvaluate, RunOptions{})
	require.False(t, out.OK())
	assert.Equal(t, 1, client.calls)
}

func TestFetch(t *testing.T) {
	f := &fakeFetcher{text: models.FormatRequirement("S", "D")}
	var log bytes.Buffer
	r := New(Options{Client: completion.NewMockClient(), Fetcher: f, Logger: session.NewStreamLogger(&log)})

	out := r.Fetch(context.Background(), models.SourceJira, "PROJ-1")
	require.True(t, out.OK())
	assert.Equal(t, "SUMMARY: S\nDESC: D", r.Store().Requirement())
	assert.Contains(t, log.String(), `"type":"fetch_complete"`)

	f.err = errors.New(`jira request for "PROJ-2" failed with status 404 (Not Found)`)
	out = r.Fetch(context.Background(), models.SourceJira, "PROJ-2")
	require.False(t, out.OK())
	assert.Equal(t, models.ErrorKindFetch, out.ErrKind)
	assert.Contains(t, out.Display(), "404")
	assert.Equal(t, "SUMMARY: S\nDESC: D", r.Store().Requirement(), "failed fetch keeps the previous requirement")
}

func TestFetch_NoFetcher(t *testing.T) {
	r := New(Options{Client: completion.NewMockClient()})
	out := r.Fetch(context.Background(), models.SourceJira, "PROJ-1")
	assert.Equal(t, models.ErrorKindInput, out.ErrKind)
}

func TestFetch_LocalErrorsAreInputKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.ErrorKind
	}{
		{"missing credentials", fmt.Errorf("jira: %w (domain, email and token are required)", requirements.ErrMissingCredentials), models.ErrorKindInput},
		{"blank item id", requirements.ErrMissingItemID, models.ErrorKindInput},
		{"unknown source", fmt.Errorf("%w %q", requirements.ErrUnknownSource, "github"), models.ErrorKindInput},
		{"remote status", &requirements.FetchError{Source: models.SourceJira, ItemID: "QA-1", StatusCode: 500}, models.ErrorKindFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(Options{Client: completion.NewMockClient(), Fetcher: &fakeFetcher{err: tt.err}})
			out := r.Fetch(context.Background(), models.SourceJira, "QA-1")
			assert.Equal(t, tt.want, out.ErrKind)
		})
	}
}

func TestSetRequirement_Empty(t *testing.T) {
	r := New(Options{})
	out := r.SetRequirement("  ")
	assert.Equal(t, models.ErrorKindInput, out.ErrKind)
}

func TestClose_LogsSessionEnd(t *testing.T) {
	r, log := newRunner(t, completion.NewMockClient())
	r.SetRequirement(requirement)
	r.Run(context.Background(), prompts.KindEvaluate, RunOptions{})
	r.LogExport("pdf", "report.pdf", 10)

	require.NoError(t, r.Close(context.Background()))

	lines := strings.Split(strings.TrimSpace(log.String()), "\n")
	assert.Contains(t, lines[0], `"type":"session_start"`)
	assert.Contains(t, log.String(), `"type":"export"`)
	assert.Contains(t, lines[len(lines)-1], `"type":"session_complete"`)
	assert.Contains(t, lines[len(lines)-1], `"stages_run":1`)
}
