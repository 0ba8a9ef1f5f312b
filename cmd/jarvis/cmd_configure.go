package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DominicRaj03/Gen-AI---QA/internal/projectconfig"
	"github.com/DominicRaj03/Gen-AI---QA/internal/wizard"
	"github.com/spf13/cobra"
)

func newConfigureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Create or update .jarvis.yaml interactively",
		Long: `Walk through the completion backend, tracker and export settings and
write them to .jarvis.yaml. The nearest existing file is updated; otherwise a
new one is created in the current directory.

Secrets are never written. Export them in the environment variables the file
names (GROQ_API_KEY, JIRA_API_TOKEN, AZURE_DEVOPS_PAT,
AZURE_STORAGE_CONNECTION_STRING by default).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}

			path, err := projectconfig.Find(wd)
			if errors.Is(err, os.ErrNotExist) {
				path = filepath.Join(wd, projectconfig.FileName)
			} else if err != nil {
				return err
			}

			cfg, err := projectconfig.Load(wd)
			if err != nil {
				return err
			}

			updated, err := wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
			if err != nil {
				return err
			}
			if err := projectconfig.Save(path, updated); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			successColor.Fprintf(out, "wrote %s\n", path) //nolint:errcheck
			if projectconfig.Env(updated.Completion.APIKeyEnv) == "" && updated.Completion.Backend == "openai" {
				fmt.Fprintf(out, "remember to export %s\n", updated.Completion.APIKeyEnv) //nolint:errcheck
			}
			return nil
		},
	}
}
