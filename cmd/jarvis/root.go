package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

// globalFlags override values from .jarvis.yaml for one invocation.
type globalFlags struct {
	backend string
	model   string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "jarvis",
		Short: "Jarvis - QA assistant pipeline for requirements",
		Long: `Jarvis turns a requirement into QA artifacts.

It fetches a requirement from Jira or Azure DevOps (or takes it as text),
then runs prompt stages against an OpenAI-compatible model: evaluation,
scoring, Gherkin, test suites, edge cases, automation scripts, failure-log
analysis, CSV formatting, strategy, plan and categorization. Each stage can
feed on the artifact produced by an earlier one.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.backend, "backend", "", "Completion backend: openai, copilot or mock (overrides .jarvis.yaml)")
	cmd.PersistentFlags().StringVar(&flags.model, "model", "", "Completion model (overrides .jarvis.yaml)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newFetchCommand(flags))
	cmd.AddCommand(newStagesCommand())
	cmd.AddCommand(newRunCommand(flags))
	cmd.AddCommand(newScoreCommand(flags))
	cmd.AddCommand(newDataCommand())
	cmd.AddCommand(newExportCommand(flags))
	cmd.AddCommand(newConfigureCommand())
	cmd.AddCommand(newInteractiveCommand(flags))
	cmd.AddCommand(newServeCommand(flags))
	cmd.AddCommand(newSessionCommand())

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
