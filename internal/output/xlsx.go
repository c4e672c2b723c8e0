package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// SheetName is the worksheet holding the table.
const SheetName = "Hourly"

// XLSXWriter writes the table as a single-sheet workbook. Measurements are
// numeric cells; nulls are left blank.
type XLSXWriter struct{}

func (XLSXWriter) Extension() string { return ".xlsx" }

func (XLSXWriter) Write(path string, table domain.OutputTable) error {
	return writeAtomic(path, func(w io.Writer) error {
		return encodeXLSX(w, table)
	})
}

func encodeXLSX(w io.Writer, table domain.OutputTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := table.Header()
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := sw.SetRow("A1", row); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, ts := range table.Index {
		row = row[:0]
		row = append(row, ts.Format(TimestampLayout))
		for _, c := range table.Columns {
			if v := table.Data[c][i]; domain.IsNull(v) {
				row = append(row, nil)
			} else {
				row = append(row, v)
			}
		}
		row = append(row,
			blankIfEmpty(formatTime(at(table.Sunrise, i))),
			blankIfEmpty(formatTime(at(table.Sunset, i))),
			i < len(table.NoSourceData) && table.NoSourceData[i],
		)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush workbook: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func blankIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
