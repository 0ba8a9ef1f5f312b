package main

import (
	"fmt"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/spf13/cobra"
)

func newFetchCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <jira|azure-devops> <item-id>",
		Short: "Fetch a requirement from Jira or Azure DevOps",
		Long: `Fetch a requirement and print it as the pipeline sees it:

  SUMMARY: <summary>
  DESC: <description>

Connection settings come from .jarvis.yaml; tokens come from the environment
variables it names (JIRA_API_TOKEN and AZURE_DEVOPS_PAT by default).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := models.ParseSource(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			text, err := newFetcher(cfg).Fetch(cmd.Context(), source, args[1])
			if err != nil {
				failColor.Fprintln(cmd.ErrOrStderr(), models.Failed(models.ErrorKindFetch, err.Error()).Display()) //nolint:errcheck
				return &StageFailureError{Stages: []string{"fetch"}}
			}

			fmt.Fprintln(cmd.OutOrStdout(), text) //nolint:errcheck
			return nil
		},
	}
}
