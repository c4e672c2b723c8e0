package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// CSVWriter writes the table as comma-separated text with a header row.
// Nulls are empty cells.
type CSVWriter struct{}

func (CSVWriter) Extension() string { return ".csv" }

func (CSVWriter) Write(path string, table domain.OutputTable) error {
	return writeAtomic(path, func(w io.Writer) error {
		return encodeCSV(w, table)
	})
}

func encodeCSV(w io.Writer, table domain.OutputTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, 0, len(table.Columns)+4)
	for i, ts := range table.Index {
		record = record[:0]
		record = append(record, ts.Format(TimestampLayout))
		for _, c := range table.Columns {
			record = append(record, formatFloat(table.Data[c][i]))
		}
		record = append(record,
			formatTime(at(table.Sunrise, i)),
			formatTime(at(table.Sunset, i)),
			formatBool(i < len(table.NoSourceData) && table.NoSourceData[i]),
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func at[T any](s []T, i int) T {
	var zero T
	if i >= len(s) {
		return zero
	}
	return s[i]
}
