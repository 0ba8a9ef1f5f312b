package prompts

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/DominicRaj03/Gen-AI---QA/internal/template"
	"github.com/go-viper/mapstructure/v2"
)

// Frameworks lists the automation frameworks the automation stage accepts.
var Frameworks = []string{"Cypress", "Playwright", "Selenium"}

// DefaultFramework is used when no framework parameter is given.
const DefaultFramework = "Playwright"

// Registry is an immutable stage table.
type Registry struct {
	stages []Stage
	byKind map[Kind]int
}

// NewRegistry validates stages and returns a Registry over them.
func NewRegistry(stages []Stage) (*Registry, error) {
	r := &Registry{
		stages: slices.Clone(stages),
		byKind: make(map[Kind]int, len(stages)),
	}

	outputs := map[models.ArtifactKind]Kind{}
	for i, s := range r.stages {
		if s.Kind == "" {
			return nil, fmt.Errorf("stage %d has no kind", i)
		}
		if _, dup := r.byKind[s.Kind]; dup {
			return nil, fmt.Errorf("duplicate stage %q", s.Kind)
		}
		if !strings.Contains(s.Template, "{{.Subject}}") {
			return nil, fmt.Errorf("stage %q template has no {{.Subject}} slot", s.Kind)
		}
		if other, dup := outputs[s.Output]; dup {
			return nil, fmt.Errorf("stages %q and %q both write %q", other, s.Kind, s.Output)
		}
		if s.Prefers != "" && s.Prefers == s.Output {
			return nil, fmt.Errorf("stage %q prefers its own output", s.Kind)
		}
		outputs[s.Output] = s.Kind
		r.byKind[s.Kind] = i
	}
	return r, nil
}

var defaultRegistry = func() *Registry {
	r, err := NewRegistry(defaultStages)
	if err != nil {
		panic(fmt.Sprintf("invalid default stage table: %v", err))
	}
	return r
}()

// Default returns the built-in stage table.
func Default() *Registry {
	return defaultRegistry
}

// Stages returns the stage table in pipeline order.
func (r *Registry) Stages() []Stage {
	return slices.Clone(r.stages)
}

// Stage looks up a stage by kind.
func (r *Registry) Stage(kind Kind) (Stage, bool) {
	i, ok := r.byKind[kind]
	if !ok {
		return Stage{}, false
	}
	return r.stages[i], true
}

// ParseKind validates s against the table.
func (r *Registry) ParseKind(s string) (Kind, error) {
	if _, ok := r.byKind[Kind(s)]; ok {
		return Kind(s), nil
	}
	names := make([]string, 0, len(r.stages))
	for _, st := range r.stages {
		names = append(names, string(st.Kind))
	}
	return "", fmt.Errorf("unknown stage %q (expected one of: %s)", s, strings.Join(names, ", "))
}

// BuildOptions adjusts a single prompt build.
type BuildOptions struct {
	// Role overrides the stage's default role.
	Role models.Role
	// Params holds stage parameters such as {"framework": "Cypress"}.
	Params map[string]any
}

// Params is the typed form of BuildOptions.Params.
type Params struct {
	Framework string            `mapstructure:"framework"`
	Vars      map[string]string `mapstructure:"vars"`
}

// ErrEmptySubject is returned when a prompt would be built over no text.
var ErrEmptySubject = errors.New("subject text is empty")

// Build renders the prompt for kind over subjectText. It performs no I/O and
// is deterministic for identical inputs.
func (r *Registry) Build(kind Kind, subjectText string, opts BuildOptions) (*models.PromptRequest, error) {
	stage, ok := r.Stage(kind)
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", kind)
	}

	if strings.TrimSpace(subjectText) == "" {
		return nil, ErrEmptySubject
	}

	role := stage.Role
	if opts.Role != "" {
		parsed, err := models.ParseRole(string(opts.Role))
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	params, err := decodeParams(opts.Params)
	if err != nil {
		return nil, fmt.Errorf("stage %q: %w", kind, err)
	}

	ctx := &template.Context{
		Subject: subjectText,
		Role:    string(role),
		Vars:    params.Vars,
	}

	if stage.UsesFramework {
		fw, err := normalizeFramework(params.Framework)
		if err != nil {
			return nil, err
		}
		ctx.Framework = fw
	}

	instruction, err := template.Render(stage.Template, ctx)
	if err != nil {
		return nil, fmt.Errorf("stage %q: %w", kind, err)
	}

	return &models.PromptRequest{
		Stage:         string(kind),
		Role:          role,
		SystemMessage: role.SystemMessage(),
		Instruction:   instruction,
		SubjectText:   subjectText,
		JSON:          stage.JSON,
	}, nil
}

func decodeParams(raw map[string]any) (Params, error) {
	var p Params
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return p, err
	}

	if err := dec.Decode(raw); err != nil {
		return p, fmt.Errorf("invalid parameters: %w", err)
	}
	return p, nil
}

func normalizeFramework(fw string) (string, error) {
	if strings.TrimSpace(fw) == "" {
		return DefaultFramework, nil
	}
	for _, f := range Frameworks {
		if strings.EqualFold(f, strings.TrimSpace(fw)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported framework %q (expected one of: %s)", fw, strings.Join(Frameworks, ", "))
}
