package datafactory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// WriteCSV writes a header row of fields followed by one line per record.
func WriteCSV(w io.Writer, fields []string, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	row := make([]string, len(fields))
	for i, rec := range records {
		for j, f := range fields {
			row[j] = rec[f]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses CSV text. The first row is treated as headers (column names).
// Model output is often wrapped in a code fence, which is ignored.
func ReadCSV(r io.Reader) ([]string, []Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("csv: read: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(stripFence(string(data))))
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("csv: parse: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("csv: input is empty (no header row)")
	}

	headers := rows[0]
	records := make([]Record, 0, len(rows)-1)

	for _, row := range rows[1:] {
		rec := make(Record, len(headers))
		for j, h := range headers {
			rec[h] = row[j]
		}
		records = append(records, rec)
	}

	return headers, records, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
