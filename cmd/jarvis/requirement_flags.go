package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/DominicRaj03/Gen-AI---QA/internal/pipeline"
	"github.com/spf13/cobra"
)

// requirementFlags selects where a command's requirement text comes from.
type requirementFlags struct {
	text  string
	input string
	fetch string
}

func (f *requirementFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "text", "", "Requirement text")
	cmd.Flags().StringVar(&f.input, "input", "", "Read the requirement from a file (- for stdin)")
	cmd.Flags().StringVar(&f.fetch, "fetch", "", "Fetch the requirement, as source:id (e.g. jira:QA-12)")
	cmd.MarkFlagsMutuallyExclusive("text", "input", "fetch")
}

func (f *requirementFlags) given() bool {
	return f.text != "" || f.input != "" || f.fetch != ""
}

// apply loads the requirement into the runner's session. A failed fetch is
// returned as an outcome so callers can report it like a stage.
func (f *requirementFlags) apply(ctx context.Context, r *pipeline.Runner) (models.Outcome, error) {
	switch {
	case f.fetch != "":
		src, id, ok := strings.Cut(f.fetch, ":")
		if !ok || id == "" {
			return models.Outcome{}, fmt.Errorf("--fetch must look like source:id, got %q", f.fetch)
		}
		source, err := models.ParseSource(src)
		if err != nil {
			return models.Outcome{}, err
		}
		return r.Fetch(ctx, source, id), nil
	case f.input != "":
		text, err := readInput(f.input)
		if err != nil {
			return models.Outcome{}, err
		}
		return r.SetRequirement(text), nil
	case f.text != "":
		return r.SetRequirement(f.text), nil
	default:
		return models.Outcome{}, errors.New("no requirement: pass --text, --input or --fetch")
	}
}
