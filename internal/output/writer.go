// Package output writes the cleaned table and its processing report.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// Layouts used for timestamps in written files.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// TableWriter persists an OutputTable to path.
type TableWriter interface {
	// Extension is the file suffix including the dot, e.g. ".csv".
	Extension() string
	Write(path string, table domain.OutputTable) error
}

// ForFormat returns the writer for an OUTPUT_FORMAT value.
func ForFormat(format string) (TableWriter, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return CSVWriter{}, nil
	case "xlsx":
		return XLSXWriter{}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}

// FileName renders "{station name} {start} to {end} {frequency}{ext}". Path
// separators in the station name are replaced so the result is a single
// path element.
func FileName(details domain.StationDetails, start, end time.Time, freq domain.Frequency, ext string) string {
	name := strings.NewReplacer("/", "-", `\`, "-").Replace(strings.TrimSpace(details.Name))
	if name == "" {
		name = domain.Unknown
	}
	return fmt.Sprintf("%s %s to %s %s%s", name, start.Format(DateLayout), end.Format(DateLayout), freq, ext)
}

// writeAtomic writes through a temporary file in the target directory and
// renames it into place, so a failed run never leaves a partial file. The
// final file is checked to exist.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".lcdhourly-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("output file %s missing after write: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	if domain.IsNull(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
