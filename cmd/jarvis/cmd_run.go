package main

import (
	"fmt"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/export"
	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/DominicRaj03/Gen-AI---QA/internal/pipeline"
	"github.com/DominicRaj03/Gen-AI---QA/internal/projectconfig"
	"github.com/DominicRaj03/Gen-AI---QA/internal/prompts"
	"github.com/DominicRaj03/Gen-AI---QA/internal/spinner"
	"github.com/spf13/cobra"
)

type runFlags struct {
	requirement requirementFlags
	stageInput  string
	framework   string
	role        string
	logPath     string
	exportDir   string
	pdf         bool
	blob        bool
	noSpinner   bool
}

func newRunCommand(flags *globalFlags) *cobra.Command {
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <stage>... | all",
		Short: "Run one or more pipeline stages",
		Long: `Run pipeline stages in the order given against one session.

Each stage reads the artifact of its preferred predecessor when this session
has one (for example test-suite reads the Gherkin from gherkin) and falls back
to the requirement otherwise. "all" runs every stage in table order; the
failure-log stage is skipped unless --stage-input is set.

A failed stage does not stop later stages. The command exits 1 if any stage
failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStages(cmd, flags, rf, args)
		},
	}

	rf.requirement.register(cmd)
	cmd.Flags().StringVar(&rf.stageInput, "stage-input", "", "File whose contents replace every stage's input (e.g. a failure log)")
	cmd.Flags().StringVar(&rf.framework, "framework", "", "Automation framework: Cypress, Playwright or Selenium")
	cmd.Flags().StringVar(&rf.role, "role", "", "Override the role of every stage")
	cmd.Flags().StringVar(&rf.logPath, "log", "", "Write an NDJSON session log to this file")
	cmd.Flags().StringVar(&rf.exportDir, "export-dir", "", "Write each artifact to this directory")
	cmd.Flags().BoolVar(&rf.pdf, "pdf", false, "Also export a PDF report of the session")
	cmd.Flags().BoolVar(&rf.blob, "blob", false, "Export to Azure Blob Storage instead of a directory")
	cmd.Flags().BoolVar(&rf.noSpinner, "no-spinner", false, "Disable the progress spinner")

	return cmd
}

func runStages(cmd *cobra.Command, flags *globalFlags, rf *runFlags, args []string) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	kinds, err := stageKinds(prompts.Default(), args, rf.stageInput != "")
	if err != nil {
		return err
	}

	opts := pipeline.RunOptions{Params: map[string]any{}}
	if rf.role != "" {
		role, err := models.ParseRole(rf.role)
		if err != nil {
			return err
		}
		opts.Role = role
	}
	framework := rf.framework
	if framework == "" {
		framework = cfg.Defaults.Framework
	}
	opts.Params["framework"] = framework
	if rf.stageInput != "" {
		if opts.Input, err = readInput(rf.stageInput); err != nil {
			return err
		}
	}

	runner, err := newRunner(cfg, rf.logPath)
	if err != nil {
		return err
	}
	defer closeRunner(runner)

	out := cmd.OutOrStdout()
	var failed []string

	if rf.requirement.given() {
		o, err := rf.requirement.apply(cmd.Context(), runner)
		if err != nil {
			return err
		}
		if !o.OK() {
			printOutcome(out, "Requirement", o)
			return &StageFailureError{Stages: []string{"requirement"}}
		}
	}

	for _, kind := range kinds {
		stage, _ := runner.Registry().Stage(kind)

		var sp *spinner.Spinner
		if !rf.noSpinner {
			sp = spinner.Start(cmd.ErrOrStderr(), fmt.Sprintf("Running %s...", stage.Title))
		}
		o := runner.Run(cmd.Context(), kind, opts)
		if sp != nil {
			sp.Stop()
		}

		printOutcome(out, stage.Title, o)
		if !o.OK() {
			failed = append(failed, string(kind))
		}
	}

	if rf.exportDir != "" || rf.pdf || rf.blob {
		if err := exportSession(cmd, cfg, runner, rf); err != nil {
			return err
		}
	}

	if len(failed) > 0 {
		return &StageFailureError{Stages: failed}
	}
	return nil
}

// stageKinds resolves stage arguments. "all" expands to the whole table;
// failure-log needs explicit input so it is left out unless withInput.
func stageKinds(reg *prompts.Registry, args []string, withInput bool) ([]prompts.Kind, error) {
	if len(args) == 1 && strings.EqualFold(args[0], "all") {
		var kinds []prompts.Kind
		for _, s := range reg.Stages() {
			if s.Kind == prompts.KindAnalyzeFailureLog && !withInput {
				continue
			}
			kinds = append(kinds, s.Kind)
		}
		return kinds, nil
	}

	kinds := make([]prompts.Kind, 0, len(args))
	for _, a := range args {
		k, err := reg.ParseKind(a)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// exportSession writes every artifact (and optionally a PDF report) to the
// configured sink.
func exportSession(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, runner *pipeline.Runner, rf *runFlags) error {
	sink, err := newSink(cfg, rf.blob, rf.exportDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	store := runner.Store()
	artifacts := store.List()

	for _, a := range artifacts {
		name, contentType := artifactFile(a.Kind)
		loc, err := sink.Write(cmd.Context(), name, contentType, []byte(a.Content))
		if err != nil {
			return fmt.Errorf("exporting %s: %w", a.Kind, err)
		}
		runner.LogExport(string(a.Kind), loc, len(a.Content))
		dimColor.Fprintf(out, "wrote %s\n", loc) //nolint:errcheck
	}

	if rf.pdf {
		body := export.ReportBody(store.Requirement(), artifacts)
		if body == "" {
			return fmt.Errorf("nothing to export: no requirement or artifacts in this session")
		}
		data, err := export.PDF("Jarvis QA Report", body)
		if err != nil {
			return err
		}
		loc, err := sink.Write(cmd.Context(), export.FileName("jarvis-report", store.ID(), "pdf"), export.ContentTypePDF, data)
		if err != nil {
			return fmt.Errorf("exporting PDF: %w", err)
		}
		runner.LogExport("pdf", loc, len(data))
		successColor.Fprintf(out, "report: %s\n", loc) //nolint:errcheck
	}
	return nil
}

// artifactFile names the exported file for an artifact kind.
func artifactFile(kind models.ArtifactKind) (string, string) {
	switch kind {
	case models.ArtifactCSV:
		return string(kind) + ".csv", export.ContentTypeCSV
	case models.ArtifactScore:
		return string(kind) + ".json", "application/json"
	default:
		return string(kind) + ".md", "text/markdown"
	}
}
