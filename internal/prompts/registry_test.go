package prompts

import (
	"strings"
	"testing"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Table(t *testing.T) {
	stages := Default().Stages()
	require.Len(t, stages, 11)

	tests := []struct {
		kind    Kind
		role    models.Role
		output  models.ArtifactKind
		prefers models.ArtifactKind
	}{
		{KindEvaluate, models.RoleSeniorQALead, models.ArtifactEvaluation, ""},
		{KindScore, models.RoleQADirector, models.ArtifactScore, ""},
		{KindGenerateGherkin, models.RoleBDDSpecialist, models.ArtifactBDD, ""},
		{KindGenerateTestSuite, models.RoleQAArchitect, models.ArtifactTestCases, models.ArtifactBDD},
		{KindFindEdgeCases, models.RoleSecurityEngineer, models.ArtifactEdgeCases, models.ArtifactTestCases},
		{KindGenerateAutomation, models.RoleSDET, models.ArtifactAutomation, models.ArtifactTestCases},
		{KindAnalyzeFailureLog, models.RoleTestAutomationConsultant, models.ArtifactFailureAnalysis, ""},
		{KindFormatAsCSV, models.RoleDataArchitect, models.ArtifactCSV, models.ArtifactTestCases},
		{KindGenerateStrategy, models.RoleQAManager, models.ArtifactStrategy, ""},
		{KindGeneratePlan, models.RoleQAManager, models.ArtifactPlan, models.ArtifactStrategy},
		{KindCategorizeTestCases, models.RoleQALead, models.ArtifactCategories, models.ArtifactTestCases},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			s, ok := Default().Stage(tt.kind)
			require.True(t, ok)
			assert.Equal(t, tt.role, s.Role)
			assert.Equal(t, tt.output, s.Output)
			assert.Equal(t, tt.prefers, s.Prefers)
		})
	}

	score, _ := Default().Stage(KindScore)
	assert.True(t, score.JSON)
}

func TestNewRegistry_Validation(t *testing.T) {
	ok := Stage{Kind: "a", Template: "{{.Subject}}", Output: models.ArtifactEvaluation}

	tests := []struct {
		name   string
		stages []Stage
		errMsg string
	}{
		{"duplicate kind", []Stage{ok, ok}, "duplicate stage"},
		{"no slot", []Stage{{Kind: "b", Template: "static", Output: models.ArtifactBDD}}, "no {{.Subject}} slot"},
		{"shared output", []Stage{ok, {Kind: "b", Template: "{{.Subject}}", Output: models.ArtifactEvaluation}}, "both write"},
		{"self preference", []Stage{{Kind: "b", Template: "{{.Subject}}", Output: models.ArtifactBDD, Prefers: models.ArtifactBDD}}, "prefers its own output"},
		{"empty kind", []Stage{{Template: "{{.Subject}}"}}, "has no kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.stages)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := Default().ParseKind("gherkin")
	require.NoError(t, err)
	assert.Equal(t, KindGenerateGherkin, k)

	_, err = Default().ParseKind("Gherkin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected one of")
}

func TestBuild_IsPure(t *testing.T) {
	r := Default()
	opts := BuildOptions{Params: map[string]any{"framework": "Cypress"}}

	for _, s := range r.Stages() {
		t.Run(string(s.Kind), func(t *testing.T) {
			a, err := r.Build(s.Kind, "As a user I want to log in", opts)
			require.NoError(t, err)
			b, err := r.Build(s.Kind, "As a user I want to log in", opts)
			require.NoError(t, err)
			assert.Equal(t, a, b)
			assert.Equal(t, s.Role.SystemMessage(), a.SystemMessage)
			assert.Contains(t, a.Instruction, "As a user I want to log in")
		})
	}
}

func TestBuild_Gherkin(t *testing.T) {
	req, err := Default().Build(KindGenerateGherkin, "Login works", BuildOptions{})
	require.NoError(t, err)

	assert.Contains(t, req.Instruction, "Given/When/Then")
	assert.Equal(t, "You are a professional BDD Specialist.", req.SystemMessage)
	assert.Equal(t, models.RoleBDDSpecialist, req.Role)
	assert.False(t, req.JSON)
}

func TestBuild_ScoreRequestsJSON(t *testing.T) {
	req, err := Default().Build(KindScore, "Login works", BuildOptions{})
	require.NoError(t, err)
	assert.True(t, req.JSON)
	assert.Contains(t, req.Instruction, `"recommendations"`)
}

func TestBuild_LongSubjectNotTruncated(t *testing.T) {
	subject := strings.Repeat("x", 10_000)
	req, err := Default().Build(KindEvaluate, subject, BuildOptions{})
	require.NoError(t, err)

	assert.Contains(t, req.Instruction, subject)
	assert.Equal(t, subject, req.SubjectText)
}

func TestBuild_RoleOverride(t *testing.T) {
	req, err := Default().Build(KindEvaluate, "story", BuildOptions{Role: models.RoleQAManager})
	require.NoError(t, err)
	assert.Equal(t, "You are a professional QA Manager.", req.SystemMessage)

	_, err = Default().Build(KindEvaluate, "story", BuildOptions{Role: "qa manager"})
	require.Error(t, err)
}

func TestBuild_Framework(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   string
		errMsg string
	}{
		{name: "default", want: "Playwright"},
		{name: "case-insensitive", params: map[string]any{"framework": "selenium"}, want: "Selenium"},
		{name: "cypress", params: map[string]any{"framework": "Cypress"}, want: "Cypress"},
		{name: "unsupported", params: map[string]any{"framework": "Watir"}, errMsg: "unsupported framework"},
		{name: "unknown param", params: map[string]any{"browser": "chrome"}, errMsg: "invalid parameters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Default().Build(KindGenerateAutomation, "cases", BuildOptions{Params: tt.params})
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, req.Instruction, "runnable "+tt.want+" automation script")
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	_, err := Default().Build("nope", "x", BuildOptions{})
	require.Error(t, err)

	_, err = Default().Build(KindEvaluate, "   ", BuildOptions{})
	require.ErrorIs(t, err, ErrEmptySubject)
}

func TestStage_InputLabel(t *testing.T) {
	s, _ := Default().Stage(KindGenerateTestSuite)
	assert.Equal(t, "bdd (else requirement)", s.InputLabel())

	s, _ = Default().Stage(KindEvaluate)
	assert.Equal(t, "requirement", s.InputLabel())
}
