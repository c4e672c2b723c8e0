package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/source"
)

// Extraction is everything read from disk for one run.
type Extraction struct {
	Selection source.Selection
	Files     []source.ValidatedFile
	Load      source.LoadResult
}

// FileExtractor classifies, validates and loads LCD files from a directory.
type FileExtractor struct {
	dir      string
	filename string
	logger   *slog.Logger
}

// NewFileExtractor creates an extractor for dir. When filename is set it is
// the anchor file and its directory replaces dir.
func NewFileExtractor(dir, filename string, logger *slog.Logger) *FileExtractor {
	return &FileExtractor{dir: dir, filename: filename, logger: logger}
}

func (e *FileExtractor) Extract(ctx context.Context) (Extraction, error) {
	if err := ctx.Err(); err != nil {
		return Extraction{}, err
	}

	sel, err := source.Classify(e.dir, e.filename)
	if err != nil {
		return Extraction{}, err
	}
	e.logger.Info("csv files found", "dir", sel.Dir, "count", len(sel.CSVFiles), "files", strings.Join(sel.CSVFiles, ", "))

	names := make([]string, len(sel.Files))
	for i, f := range sel.Files {
		names[i] = f.Name
	}
	e.logger.Info("input files selected",
		"version", sel.Version.Name(),
		"anchor", sel.Anchor.Name,
		"files", strings.Join(names, ", "),
	)

	files, err := source.ValidateSchemas(sel.Files, e.logger)
	if err != nil {
		return Extraction{}, err
	}

	loaded, err := source.Load(files, e.logger)
	if err != nil {
		return Extraction{}, err
	}
	e.logger.Info("source data loaded",
		"rows", loaded.Table.Len(),
		"columns", len(loaded.Table.Columns),
		"start", loaded.Table.Start(),
		"end", loaded.Table.End(),
		"skipped_rows", loaded.SkippedRows,
		"duplicate_rows", loaded.DuplicateRows,
	)

	return Extraction{Selection: sel, Files: files, Load: loaded}, nil
}
