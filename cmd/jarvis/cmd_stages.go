package main

import (
	"github.com/DominicRaj03/Gen-AI---QA/internal/prompts"
	"github.com/spf13/cobra"
)

func newStagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the pipeline stages in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, s := range prompts.Default().Stages() {
				rows = append(rows, []string{
					string(s.Kind),
					s.Title,
					string(s.Role),
					s.InputLabel(),
					string(s.Output),
				})
			}
			printTable(cmd.OutOrStdout(), []string{"Stage", "Title", "Role", "Input", "Output"}, rows, 40)
			return nil
		},
	}
}
