package feeder

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVFeeder reads records from a CSV file whose first row names the fields.
type CSVFeeder struct {
	records
}

func NewCSVFeeder(path string) (*CSVFeeder, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: CSV file needs a header row and at least one data row", ErrEmpty)
	}

	header := rows[0]
	for i, field := range header {
		header[i] = strings.TrimSpace(field)
	}

	f := &CSVFeeder{}
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", i+2, len(row), len(header))
		}
		rec := make(Record, len(header))
		for j, field := range header {
			rec[field] = row[j]
		}
		f.rows = append(f.rows, rec)
	}
	return f, nil
}
