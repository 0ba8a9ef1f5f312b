// Package pipeline runs QA stages against one session's artifact store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DominicRaj03/Gen-AI---QA/internal/attempts"
	"github.com/DominicRaj03/Gen-AI---QA/internal/completion"
	"github.com/DominicRaj03/Gen-AI---QA/internal/evaluation"
	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/DominicRaj03/Gen-AI---QA/internal/prompts"
	"github.com/DominicRaj03/Gen-AI---QA/internal/requirements"
	"github.com/DominicRaj03/Gen-AI---QA/internal/session"
)

// RequirementFetcher loads a requirement from an external tracker.
type RequirementFetcher interface {
	Fetch(ctx context.Context, source models.Source, itemID string) (string, error)
}

// Options configures a Runner.
type Options struct {
	// Store defaults to a new empty store.
	Store *session.Store
	// Registry defaults to [prompts.Default].
	Registry *prompts.Registry
	Client   completion.Client
	// Fetcher is optional. Without one, Fetch fails.
	Fetcher RequirementFetcher
	// Policy governs completion attempts. Zero value is a single attempt.
	Policy  attempts.Policy
	Model   string
	Backend string
	// Logger defaults to [session.NopLogger].
	Logger session.Logger
}

// RunOptions adjusts one stage invocation.
type RunOptions struct {
	Role   models.Role
	Params map[string]any
	// Input overrides the resolved subject, for example a pasted failure log.
	Input string
}

// Runner executes stages for a single session. Like its Store, it is not safe
// for concurrent use.
type Runner struct {
	store    *session.Store
	registry *prompts.Registry
	client   completion.Client
	fetcher  RequirementFetcher
	policy   attempts.Policy
	model    string
	logger   session.Logger

	started   time.Time
	stagesRun int
	failed    int
}

// New creates a Runner and logs the session start.
func New(opts Options) *Runner {
	r := &Runner{
		store:    opts.Store,
		registry: opts.Registry,
		client:   opts.Client,
		fetcher:  opts.Fetcher,
		policy:   opts.Policy,
		model:    opts.Model,
		logger:   opts.Logger,
		started:  time.Now(),
	}

	if r.store == nil {
		r.store = session.NewStore()
	}
	if r.registry == nil {
		r.registry = prompts.Default()
	}
	if r.logger == nil {
		r.logger = session.NopLogger{}
	}
	if r.policy.Retryable == nil {
		r.policy.Retryable = temporary
	}

	r.log(session.EventSessionStart, session.SessionStartData(r.store.ID(), r.model, opts.Backend))
	return r
}

// Store returns the session store.
func (r *Runner) Store() *session.Store {
	return r.store
}

// Registry returns the stage table in use.
func (r *Runner) Registry() *prompts.Registry {
	return r.registry
}

// Model returns the default completion model.
func (r *Runner) Model() string {
	return r.model
}

// Fetch loads a requirement and, on success, makes it the session's
// requirement text.
func (r *Runner) Fetch(ctx context.Context, source models.Source, itemID string) models.Outcome {
	if r.fetcher == nil {
		return models.Failed(models.ErrorKindInput, "no requirement source is configured")
	}

	text, err := r.fetcher.Fetch(ctx, source, itemID)
	if err != nil {
		r.log(session.EventError, session.ErrorData(err.Error(), map[string]any{"source": string(source), "item_id": itemID}))
		kind := models.ErrorKindFetch
		if requirements.IsInputError(err) {
			kind = models.ErrorKindInput
		}
		return models.Failed(kind, err.Error())
	}

	r.store.SetRequirement(text)
	r.log(session.EventFetchComplete, session.FetchCompleteData(string(source), itemID, len(text)))
	return models.Ok(text)
}

// SetRequirement replaces the requirement text with manually entered text.
func (r *Runner) SetRequirement(text string) models.Outcome {
	if strings.TrimSpace(text) == "" {
		return models.Failed(models.ErrorKindInput, "requirement text is empty")
	}
	r.store.SetRequirement(text)
	return models.Ok(text)
}

// Run executes one stage: it resolves the subject, builds the prompt, calls
// the completion client under the attempt policy and records the outcome.
func (r *Runner) Run(ctx context.Context, kind prompts.Kind, opts RunOptions) models.Outcome {
	stage, ok := r.registry.Stage(kind)
	if !ok {
		return models.Failed(models.ErrorKindInput, fmt.Sprintf("unknown stage %q", kind))
	}

	subject := prompts.ResolveSubject(stage, r.store.Requirement(), opts.Input, r.store)
	if subject.PredecessorFailed {
		slog.Warn("Preferred input failed on its last run", "stage", kind, "artifact", stage.Prefers, "using", subject.Source)
	}

	req, err := r.registry.Build(kind, subject.Text, prompts.BuildOptions{Role: opts.Role, Params: opts.Params})
	if err != nil {
		msg := err.Error()
		if errors.Is(err, prompts.ErrEmptySubject) {
			msg = "no requirement text: fetch or enter a requirement first"
		}
		return r.fail(stage, models.Failed(models.ErrorKindInput, msg), 0)
	}

	r.log(session.EventStageStart, session.StageStartData(string(kind), string(req.Role), inputLabel(subject), len(subject.Text)))

	start := time.Now()
	content, err := r.complete(ctx, kind, completion.NewRequest(req, r.model))
	elapsed := time.Since(start)

	if err != nil {
		return r.fail(stage, models.Failed(models.ErrorKindCompletion, err.Error()), elapsed)
	}

	if stage.JSON {
		if _, err := evaluation.Parse(content); err != nil {
			return r.fail(stage, models.Failed(models.ErrorKindParse, err.Error()), elapsed)
		}
		content = evaluation.StripCodeFence(content)
	}

	outcome := models.Ok(content)
	if err := r.store.Record(stage.Output, outcome); err != nil {
		return r.fail(stage, models.Failed(models.ErrorKindInput, err.Error()), elapsed)
	}

	r.stagesRun++
	a, _ := r.store.Get(stage.Output)
	r.log(session.EventStageComplete, session.StageCompleteData(string(kind), string(stage.Output), a.Seq, len(content), elapsed.Milliseconds()))
	return outcome
}

// Score runs the score stage and returns the parsed evaluation.
func (r *Runner) Score(ctx context.Context, opts RunOptions) (*evaluation.Evaluation, models.Outcome) {
	outcome := r.Run(ctx, prompts.KindScore, opts)
	if !outcome.OK() {
		return nil, outcome
	}

	ev, err := evaluation.Parse(outcome.Content)
	if err != nil {
		return nil, models.Failed(models.ErrorKindParse, err.Error())
	}
	return ev, outcome
}

// LogExport records an export in the session log.
func (r *Runner) LogExport(format, destination string, size int) {
	r.log(session.EventExport, session.ExportData(format, destination, size))
}

// Close logs the session end, releases the completion client and closes the
// event logger.
func (r *Runner) Close(ctx context.Context) error {
	r.log(session.EventSessionEnd, session.SessionCompleteData(r.stagesRun, r.failed, time.Since(r.started).Milliseconds()))
	slog.Debug("Closing session", "summary", r.store.Summary())

	var errs []error
	if r.client != nil {
		errs = append(errs, r.client.Shutdown(ctx))
	}
	errs = append(errs, r.logger.Close())
	return errors.Join(errs...)
}

func (r *Runner) complete(ctx context.Context, kind prompts.Kind, req *completion.Request) (string, error) {
	if r.client == nil {
		return "", errors.New("no completion client is configured")
	}

	var content string
	err := r.policy.Do(ctx, "completion "+string(kind), func(ctx context.Context) error {
		resp, err := r.client.Complete(ctx, req)
		if err != nil {
			return err
		}
		if strings.TrimSpace(resp.Content) == "" {
			return &completion.CompletionError{Model: resp.Model, Backend: "completion", Err: errors.New("empty response")}
		}
		content = resp.Content
		return nil
	})
	return content, err
}

func (r *Runner) fail(stage prompts.Stage, o models.Outcome, elapsed time.Duration) models.Outcome {
	r.stagesRun++
	r.failed++

	if err := r.store.Record(stage.Output, o); err != nil {
		slog.Warn("Failed to record stage failure", "stage", stage.Kind, "error", err)
	}

	r.log(session.EventStageFailed, session.StageFailedData(string(stage.Kind), string(o.ErrKind), o.ErrMsg, elapsed.Milliseconds()))
	return o
}

func (r *Runner) log(t session.EventType, data map[string]any) {
	if err := r.logger.Log(session.NewEvent(t, data)); err != nil {
		slog.Warn("Failed to write session event", "type", t, "error", err)
	}
}

func inputLabel(s prompts.Subject) string {
	if s.Source == prompts.FromArtifact {
		return string(s.Artifact)
	}
	return string(s.Source)
}

func temporary(err error) bool {
	var ce *completion.CompletionError
	return errors.As(err, &ce) && ce.Temporary()
}
