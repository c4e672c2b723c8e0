package source

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// utf8BOM prefixes files exported from some spreadsheet tools.
const utf8BOM = "\ufeff"

// ValidatedFile is an input file with the whitelisted columns it carries.
type ValidatedFile struct {
	File    FileInfo
	Columns []domain.Column
}

// ReadHeader returns the header row of a CSV file without reading the body.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header, err := newCSVReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	return normalizeHeader(header), nil
}

// newCSVReader skips a leading byte order mark so a quoted first header
// still parses, and tolerates ragged rows.
func newCSVReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// UsableColumns intersects a header with the processed-column whitelist,
// preserving whitelist order.
func UsableColumns(header []string) []domain.Column {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	var cols []domain.Column
	for _, c := range domain.ProcessedColumns() {
		if _, ok := present[string(c)]; ok {
			cols = append(cols, c)
		}
	}
	return cols
}

// ValidateSchemas keeps files whose header has a DATE column and at least one
// measurement column, and records each file's usable columns. Unreadable files
// are skipped. Returns domain.ErrEmptyInput when nothing survives.
func ValidateSchemas(files []FileInfo, logger *slog.Logger) ([]ValidatedFile, error) {
	var valid []ValidatedFile
	for _, f := range files {
		header, err := ReadHeader(f.Path)
		if err != nil {
			logger.Warn("skipping unreadable file", "file", f.Name, "error", err)
			continue
		}
		cols := UsableColumns(header)
		if !hasColumn(cols, domain.ColumnDate) {
			logger.Warn("skipping file without DATE column", "file", f.Name)
			continue
		}
		if !hasMeasurement(cols) {
			logger.Warn("skipping file without measurement columns", "file", f.Name)
			continue
		}
		valid = append(valid, ValidatedFile{File: f, Columns: cols})
	}
	if len(valid) == 0 {
		return nil, domain.ErrEmptyInput
	}
	return valid, nil
}

func hasColumn(cols []domain.Column, c domain.Column) bool {
	for _, col := range cols {
		if col == c {
			return true
		}
	}
	return false
}

func hasMeasurement(cols []domain.Column) bool {
	for _, c := range cols {
		if domain.IsMeasurement(c) {
			return true
		}
	}
	return false
}
