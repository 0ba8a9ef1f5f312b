package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/DominicRaj03/Gen-AI---QA/internal/export"
	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/DominicRaj03/Gen-AI---QA/internal/pipeline"
	"github.com/DominicRaj03/Gen-AI---QA/internal/projectconfig"
	"github.com/DominicRaj03/Gen-AI---QA/internal/prompts"
	"github.com/DominicRaj03/Gen-AI---QA/internal/spinner"
	"github.com/DominicRaj03/Gen-AI---QA/internal/wizard"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newInteractiveCommand(flags *globalFlags) *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Work through a session from a menu",
		Long: `Start a session and pick actions from a menu: fetch or enter a
requirement, run any stage, review artifacts and export a PDF report. The
session keeps every artifact until you quit, so later stages build on earlier
ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			runner, err := newRunner(cfg, logPath)
			if err != nil {
				return err
			}
			defer closeRunner(runner)

			return interactiveLoop(cmd, cfg, runner)
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "Write an NDJSON session log to this file")
	return cmd
}

func interactiveLoop(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, runner *pipeline.Runner) error {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	stages := runner.Registry().Stages()

	for {
		choice, err := wizard.SelectAction(in, out, stages)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch {
		case choice.IsStage():
			runInteractiveStage(cmd, cfg, runner, choice.Stage)

		case choice.Action == wizard.ActionFetch:
			src, err := wizard.AskLine(in, out, "Source (jira or azure-devops)")
			if err != nil {
				return err
			}
			source, err := models.ParseSource(src)
			if err != nil {
				failColor.Fprintln(out, models.Failed(models.ErrorKindInput, err.Error()).Display()) //nolint:errcheck
				continue
			}
			id, err := wizard.AskLine(in, out, "Item ID")
			if err != nil {
				return err
			}
			printOutcome(out, "Requirement", runner.Fetch(cmd.Context(), source, id))

		case choice.Action == wizard.ActionEnter:
			text, err := wizard.AskText(in, out, "Requirement")
			if err != nil {
				return err
			}
			printOutcome(out, "Requirement", runner.SetRequirement(text))

		case choice.Action == wizard.ActionShow:
			showArtifacts(out, runner)

		case choice.Action == wizard.ActionExport:
			exportInteractive(cmd, cfg, runner)

		case choice.Action == wizard.ActionQuit:
			return nil
		}
	}
}

func runInteractiveStage(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, runner *pipeline.Runner, kind prompts.Kind) {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	stage, _ := runner.Registry().Stage(kind)

	framework := cfg.Defaults.Framework
	if stage.UsesFramework {
		fw, err := wizard.SelectFramework(in, out, framework)
		if err != nil {
			failColor.Fprintln(out, models.Failed(models.ErrorKindInput, err.Error()).Display()) //nolint:errcheck
			return
		}
		framework = fw
	}

	opts := pipeline.RunOptions{Params: map[string]any{"framework": framework}}
	if kind == prompts.KindAnalyzeFailureLog {
		log, err := wizard.AskText(in, out, "Failure log")
		if err != nil {
			failColor.Fprintln(out, models.Failed(models.ErrorKindInput, err.Error()).Display()) //nolint:errcheck
			return
		}
		opts.Input = log
	}

	sp := spinner.Start(cmd.ErrOrStderr(), fmt.Sprintf("Running %s...", stage.Title))
	o := runner.Run(cmd.Context(), kind, opts)
	sp.Stop()

	printOutcome(out, stage.Title, o)
}

//nolint:errcheck // display-only writes
func showArtifacts(w io.Writer, runner *pipeline.Runner) {
	store := runner.Store()
	if req := store.Requirement(); req != "" {
		printOutcome(w, "Requirement", models.Ok(req))
	}
	list := store.List()
	if len(list) == 0 {
		dimColor.Fprintln(w, "No artifacts yet.")
		return
	}
	for _, a := range list {
		printOutcome(w, fmt.Sprintf("#%d %s", a.Seq, a.Kind), models.Ok(a.Content))
	}
}

//nolint:errcheck // display-only writes
func exportInteractive(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, runner *pipeline.Runner) {
	out := cmd.OutOrStdout()
	store := runner.Store()

	body := export.ReportBody(store.Requirement(), store.List())
	if body == "" {
		dimColor.Fprintln(out, "Nothing to export yet.")
		return
	}
	data, err := export.PDF("Jarvis QA Report", body)
	if err != nil {
		failColor.Fprintln(out, models.Failed(models.ErrorKindInput, err.Error()).Display())
		return
	}
	sink := export.FileSink{Dir: cfg.Export.Dir}
	loc, err := sink.Write(cmd.Context(), export.FileName("jarvis-report", store.ID(), "pdf"), export.ContentTypePDF, data)
	if err != nil {
		failColor.Fprintln(out, models.Failed(models.ErrorKindInput, err.Error()).Display())
		return
	}
	runner.LogExport("pdf", loc, len(data))
	successColor.Fprintf(out, "report: %s\n", loc)
}
