package main

import (
	"fmt"
	"path/filepath"

	"github.com/DominicRaj03/Gen-AI---QA/internal/export"
	"github.com/spf13/cobra"
)

func newExportCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export documents",
	}
	cmd.AddCommand(newExportPDFCommand(flags))
	return cmd
}

func newExportPDFCommand(flags *globalFlags) *cobra.Command {
	var (
		title string
		input string
		out   string
		blob  bool
	)

	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Render a Markdown or text file as a PDF report",
		Long: `Render a Markdown or plain-text file as a single PDF report with a centered
title. Markdown is flattened to text and characters outside Latin-1 are
replaced. With --blob the report is uploaded to the Azure Blob Storage
container named in .jarvis.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			body, err := readInput(input)
			if err != nil {
				return err
			}
			data, err := export.PDF(title, body)
			if err != nil {
				return err
			}

			sink, err := newSink(cfg, blob, filepath.Dir(out))
			if err != nil {
				return err
			}
			loc, err := sink.Write(cmd.Context(), filepath.Base(out), export.ContentTypePDF, data)
			if err != nil {
				return fmt.Errorf("exporting PDF: %w", err)
			}

			successColor.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", loc, len(data)) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "Jarvis QA Report", "Report title")
	cmd.Flags().StringVar(&input, "input", "", "Markdown or text file to render (- for stdin)")
	cmd.Flags().StringVar(&out, "out", "report.pdf", "Output file (the blob name with --blob)")
	cmd.Flags().BoolVar(&blob, "blob", false, "Upload to Azure Blob Storage")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
