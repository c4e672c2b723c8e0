package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/output"
)

// FileLoader writes the output table and, when reports are enabled, the
// processing report next to it.
type FileLoader struct {
	dir     string
	writer  output.TableWriter
	reports *output.ReportWriter
	runID   string
	logger  *slog.Logger
}

// NewFileLoader creates a FileLoader writing into dir. A nil reports writer
// disables the processing report.
func NewFileLoader(dir string, writer output.TableWriter, reports *output.ReportWriter, runID string, logger *slog.Logger) *FileLoader {
	return &FileLoader{dir: dir, writer: writer, reports: reports, runID: runID, logger: logger}
}

func (l *FileLoader) Load(_ context.Context, res domain.Result) (Written, error) {
	ext := l.writer.Extension()
	name := output.FileName(res.Station, res.Table.Start(), res.Table.End(), res.Table.Frequency, ext)
	path := filepath.Join(l.dir, name)

	if err := l.writer.Write(path, res.Table); err != nil {
		return Written{}, fmt.Errorf("write output: %w", err)
	}
	l.logger.Info("output written", "file", path, "rows", res.Table.Len())
	written := Written{Table: path}

	if l.reports == nil {
		return written, nil
	}
	reportPath := output.ReportPath(path, ext)
	if err := l.reports.Write(reportPath, output.NewReport(l.runID, path, res)); err != nil {
		l.logger.Warn("write report failed", "file", reportPath, "error", err)
		return written, nil
	}
	written.Report = reportPath
	return written, nil
}
