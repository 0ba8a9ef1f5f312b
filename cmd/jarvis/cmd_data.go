package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/datafactory"
	"github.com/spf13/cobra"
)

func newDataCommand() *cobra.Command {
	var (
		fields  string
		rows    int
		seed    uint64
		csvPath string
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "data",
		Short: "Generate synthetic test data",
		Long: fmt.Sprintf(`Generate synthetic test data records with the requested fields.

Supported fields: %s

Pass --seed for reproducible output and --csv to write the records to a file
instead of printing a preview table.`, strings.Join(datafactory.Fields(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, f := range datafactory.Fields() {
					fmt.Fprintln(out, f) //nolint:errcheck
				}
				return nil
			}

			names, err := datafactory.NormalizeFields(datafactory.ParseFields(fields))
			if err != nil {
				return err
			}
			records, err := datafactory.New(seed).Generate(names, rows)
			if err != nil {
				return err
			}

			if csvPath == "-" {
				return datafactory.WriteCSV(out, names, records)
			}
			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", csvPath, err)
				}
				if err := datafactory.WriteCSV(f, names, records); err != nil {
					f.Close() //nolint:errcheck
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("writing %s: %w", csvPath, err)
				}
				successColor.Fprintf(out, "wrote %d record(s) to %s\n", len(records), csvPath) //nolint:errcheck
				return nil
			}

			table := make([][]string, 0, len(records))
			for _, rec := range records {
				row := make([]string, len(names))
				for i, n := range names {
					row[i] = rec[n]
				}
				table = append(table, row)
			}
			printTable(out, names, table, 32)
			return nil
		},
	}

	cmd.Flags().StringVar(&fields, "fields", "name,email", "Comma-separated fields")
	cmd.Flags().IntVar(&rows, "rows", 5, fmt.Sprintf("Number of records (1-%d)", datafactory.MaxRows))
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible output (0 is random)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write CSV to this file (- for stdout)")
	cmd.Flags().BoolVar(&list, "list-fields", false, "List supported fields and exit")

	return cmd
}
