package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/evaluation"
	"github.com/DominicRaj03/Gen-AI---QA/internal/pipeline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newScoreCommand(flags *globalFlags) *cobra.Command {
	var (
		req     requirementFlags
		logPath string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a requirement for quality and testability",
		Long: `Score a requirement from 0 to 100 across clarity, completeness,
testability, consistency and feasibility, with recommendations.

The model is asked for strict JSON, which is validated before it is shown. A
reply that does not match the expected shape is a failure (exit 1).`,
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

			o, err := req.apply(cmd.Context(), runner)
			if err != nil {
				return err
			}
			if !o.OK() {
				printOutcome(cmd.OutOrStdout(), "Requirement", o)
				return &StageFailureError{Stages: []string{"requirement"}}
			}

			ev, o := runner.Score(cmd.Context(), pipeline.RunOptions{})
			if !o.OK() {
				printOutcome(cmd.OutOrStdout(), "Score", o)
				return &StageFailureError{Stages: []string{"score"}}
			}

			if asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), o.Content) //nolint:errcheck
				return nil
			}
			printEvaluation(cmd.OutOrStdout(), ev)
			return nil
		},
	}

	req.register(cmd)
	cmd.Flags().StringVar(&logPath, "log", "", "Write an NDJSON session log to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the validated JSON instead of a table")

	return cmd
}

// printEvaluation renders the overall score, a parameter table and the
// recommendations.
//
//nolint:errcheck // display-only writes
func printEvaluation(w io.Writer, ev *evaluation.Evaluation) {
	ratingColor(ev.Rating).Fprintf(w, "Score: %d/100 (%s)\n\n", ev.Score, ev.Rating)

	rows := make([][]string, 0, len(ev.Parameters))
	for _, p := range ev.Parameters {
		rows = append(rows, []string{p.Name, string(p.Score), p.Findings})
	}
	printTable(w, []string{"Parameter", "Score", "Findings"}, rows, 60)

	if len(ev.Recommendations) > 0 {
		fmt.Fprintln(w)
		headerColor.Fprintln(w, "Recommendations")
		for i, r := range ev.Recommendations {
			fmt.Fprintf(w, "%d. %s\n", i+1, strings.TrimSpace(r))
		}
	}
}

func ratingColor(r evaluation.Rating) *color.Color {
	switch r {
	case evaluation.RatingExcellent:
		return successColor
	case evaluation.RatingPoor:
		return failColor
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}
