package main

import (
	"fmt"
	"path/filepath"

	"github.com/DominicRaj03/Gen-AI---QA/internal/projectconfig"
	"github.com/DominicRaj03/Gen-AI---QA/internal/session"
	"github.com/spf13/cobra"
)

func newSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "View recorded session logs",
		Long: `View session event logs.

Session logs are NDJSON files written when --log is passed or session.log is
enabled in .jarvis.yaml. They record fetches, each stage start, completion or
failure, and exports.`,
	}

	cmd.AddCommand(newSessionListCommand())
	cmd.AddCommand(newSessionViewCommand())

	return cmd
}

func newSessionListCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded session logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			files, err := session.ListSessions(absDir)
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No session logs found.") //nolint:errcheck
				return nil
			}

			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{f.Name, fmt.Sprint(f.NumEvents), f.ModTime.Format("2006-01-02 15:04:05")})
			}
			printTable(out, []string{"File", "Events", "Modified"}, rows, 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", projectconfig.DefaultSessionDir, "Directory to search for session logs")

	return cmd
}

func newSessionViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <session-file>",
		Short: "View a session timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := session.ReadEvents(args[0])
			if err != nil {
				return fmt.Errorf("reading session: %w", err)
			}

			session.RenderTimeline(cmd.OutOrStdout(), events)
			return nil
		},
	}
}
