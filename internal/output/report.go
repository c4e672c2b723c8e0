package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v2"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// ReportSuffix replaces the table extension in the report file name.
const ReportSuffix = ".report.yaml"

// Report is the processing summary written next to the output table.
type Report struct {
	RunID       string                `yaml:"run_id"`
	GeneratedAt string                `yaml:"generated_at"`
	Output      string                `yaml:"output"`
	Frequency   string                `yaml:"frequency"`
	Start       string                `yaml:"start"`
	End         string                `yaml:"end"`
	Rows        int                   `yaml:"rows"`
	Station     domain.StationDetails `yaml:"station"`
	Sources     []string              `yaml:"sources"`
	Stats       domain.CleaningStats  `yaml:"stats"`
}

// NewReport assembles a report for a finished run.
func NewReport(runID, outputPath string, res domain.Result) Report {
	return Report{
		RunID:     runID,
		Output:    outputPath,
		Frequency: res.Table.Frequency.Description(),
		Start:     formatTime(res.Table.Start()),
		End:       formatTime(res.Table.End()),
		Rows:      res.Table.Len(),
		Station:   res.Station,
		Sources:   res.Sources,
		Stats:     res.Stats,
	}
}

// ReportPath derives the report file name from the table's path.
func ReportPath(tablePath, ext string) string {
	return strings.TrimSuffix(tablePath, ext) + ReportSuffix
}

// ReportWriter writes Report values as YAML.
type ReportWriter struct {
	clock clockwork.Clock
}

// NewReportWriter creates a ReportWriter stamping reports with clock.
func NewReportWriter(clock clockwork.Clock) *ReportWriter {
	return &ReportWriter{clock: clock}
}

// Write stamps rep with the current time and writes it to path.
func (w *ReportWriter) Write(path string, rep Report) error {
	rep.GeneratedAt = w.clock.Now().UTC().Format(time.RFC3339)
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeAtomic(path, func(out io.Writer) error {
		_, err := out.Write(data)
		return err
	})
}
