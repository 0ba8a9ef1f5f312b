// Package prompts holds the fixed table of pipeline stages and builds the
// prompt for each one.
//
// A stage pairs a role with an instruction template and declares which earlier
// artifact it prefers as input. The table is the only place the pipeline's
// data dependencies are defined.
package prompts

import (
	"fmt"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
)

// Kind identifies an instruction kind (one pipeline stage).
type Kind string

const (
	KindEvaluate            Kind = "evaluate"
	KindScore               Kind = "score"
	KindGenerateGherkin     Kind = "gherkin"
	KindGenerateTestSuite   Kind = "test-suite"
	KindFindEdgeCases       Kind = "edge-cases"
	KindGenerateAutomation  Kind = "automation"
	KindAnalyzeFailureLog   Kind = "failure-log"
	KindFormatAsCSV         Kind = "csv"
	KindGenerateStrategy    Kind = "strategy"
	KindGeneratePlan        Kind = "plan"
	KindCategorizeTestCases Kind = "categorize"
)

// Stage is one row of the stage table.
type Stage struct {
	Kind  Kind
	Title string
	Role  models.Role
	// Template is a text/template with a {{.Subject}} slot.
	Template string
	// Output is the artifact slot the stage writes.
	Output models.ArtifactKind
	// Prefers is the artifact used as input when present. Empty means the
	// stage always works on the requirement text.
	Prefers models.ArtifactKind
	// JSON requests strict JSON output from the completion API.
	JSON bool
	// UsesFramework marks stages with a {{.Framework}} slot.
	UsesFramework bool
}

// InputLabel describes the stage's preferred input for display.
func (s Stage) InputLabel() string {
	if s.Prefers == "" {
		return "requirement"
	}
	return fmt.Sprintf("%s (else requirement)", s.Prefers)
}

const scoreTemplate = `Score the following requirement for quality and testability.
Evaluate these parameters, each scored out of 20: Clarity, Completeness, Testability, Consistency, Feasibility.
Respond ONLY with a JSON object of this exact shape:
{"score": <integer 0-100>, "rating": "Excellent" | "Good" | "Poor", "parameters": [{"name": "<parameter>", "score": "<n>/20", "findings": "<short finding>"}], "recommendations": ["<recommendation>"]}

Requirement:
{{.Subject}}`

// defaultStages is the stage table in pipeline order.
var defaultStages = []Stage{
	{
		Kind:     KindEvaluate,
		Title:    "Evaluator",
		Role:     models.RoleSeniorQALead,
		Template: "Analyze for INVEST & ambiguity. For each INVEST criterion give a verdict and a one-line reason, list every ambiguous phrase, and propose a rewritten story.\n\nUser story:\n{{.Subject}}",
		Output:   models.ArtifactEvaluation,
	},
	{
		Kind:     KindScore,
		Title:    "Quality Score",
		Role:     models.RoleQADirector,
		Template: scoreTemplate,
		Output:   models.ArtifactScore,
		JSON:     true,
	},
	{
		Kind:     KindGenerateGherkin,
		Title:    "BDD Converter",
		Role:     models.RoleBDDSpecialist,
		Template: "Convert the following requirement into Gherkin scenarios using strict Given/When/Then syntax. Start with a Feature header, add a Background where steps repeat, and use Scenario Outlines with Examples tables for data variations.\n\nRequirement:\n{{.Subject}}",
		Output:   models.ArtifactBDD,
	},
	{
		Kind:     KindGenerateTestSuite,
		Title:    "Test Gen",
		Role:     models.RoleQAArchitect,
		Template: "Generate Happy, Negative, and Edge case test scenarios for the following. Present them as a Markdown table with columns ID, Title, Type, Preconditions, Steps, Expected Result, Priority.\n\n{{.Subject}}",
		Output:   models.ArtifactTestCases,
		Prefers:  models.ArtifactBDD,
	},
	{
		Kind:     KindFindEdgeCases,
		Title:    "Edge Case Explorer",
		Role:     models.RoleSecurityEngineer,
		Template: "Find the edge cases the following tests miss: boundary values, invalid and malicious input, concurrency, permissions, and failure of dependencies. List each with the risk it covers and the expected behaviour.\n\n{{.Subject}}",
		Output:   models.ArtifactEdgeCases,
		Prefers:  models.ArtifactTestCases,
	},
	{
		Kind:          KindGenerateAutomation,
		Title:         "Script Gen",
		Role:          models.RoleSDET,
		Template:      "Generate a runnable {{.Framework}} automation script that covers the following scenarios. Use the page object pattern, explicit waits and meaningful assertions. Return only code with brief comments.\n\n{{.Subject}}",
		Output:        models.ArtifactAutomation,
		Prefers:       models.ArtifactTestCases,
		UsesFramework: true,
	},
	{
		Kind:     KindAnalyzeFailureLog,
		Title:    "Failure Analyzer",
		Role:     models.RoleTestAutomationConsultant,
		Template: "Analyze the following test failure log. Identify the most likely root cause, classify it as product defect, test defect, environment issue or flaky test, and propose concrete fixes.\n\nLog:\n{{.Subject}}",
		Output:   models.ArtifactFailureAnalysis,
	},
	{
		Kind:     KindFormatAsCSV,
		Title:    "CSV Export",
		Role:     models.RoleDataArchitect,
		Template: "Format the following test cases as CSV with the header row ID,Title,Type,Preconditions,Steps,Expected Result,Priority. Quote any field containing a comma. Return only the CSV, no commentary and no code fences.\n\n{{.Subject}}",
		Output:   models.ArtifactCSV,
		Prefers:  models.ArtifactTestCases,
	},
	{
		Kind:     KindGenerateStrategy,
		Title:    "Strategy",
		Role:     models.RoleQAManager,
		Template: "Write a test strategy for the following requirement. Cover scope and out of scope, test levels, test types, environments, tooling, entry and exit criteria, and risks with mitigations.\n\n{{.Subject}}",
		Output:   models.ArtifactStrategy,
	},
	{
		Kind:     KindGeneratePlan,
		Title:    "Plan",
		Role:     models.RoleQAManager,
		Template: "Create a test plan from the following. Include objectives, features to be tested, schedule and milestones, resources and responsibilities, deliverables, and a risk register.\n\n{{.Subject}}",
		Output:   models.ArtifactPlan,
		Prefers:  models.ArtifactStrategy,
	},
	{
		Kind:     KindCategorizeTestCases,
		Title:    "Categorizer",
		Role:     models.RoleQALead,
		Template: "Categorize the following test cases into Functional, Security, Performance, Usability and Compatibility. Give each category a count and list the case IDs, then flag any case that belongs to more than one category.\n\n{{.Subject}}",
		Output:   models.ArtifactCategories,
		Prefers:  models.ArtifactTestCases,
	},
}
