package source

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// dateLayouts are the DATE formats seen across LCD deliveries.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses an LCD DATE cell as a zone-less timestamp in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized DATE %q", s)
}

// LoadResult is the merged table plus per-file bookkeeping.
type LoadResult struct {
	Table domain.UnifiedTable
	// SkippedRows counts rows dropped for a missing or unparseable DATE.
	SkippedRows int
	// DuplicateRows counts exact duplicate rows removed during merge.
	DuplicateRows int
}

// Load parses every validated file restricted to its usable columns,
// concatenates the rows as a column-outer-join, removes exact duplicate rows
// and sorts by timestamp.
func Load(files []ValidatedFile, logger *slog.Logger) (LoadResult, error) {
	if len(files) == 0 {
		return LoadResult{}, domain.ErrEmptyInput
	}

	var res LoadResult
	union := map[domain.Column]struct{}{}
	var rows []domain.RawObservation
	for _, f := range files {
		fileRows, skipped, err := readFile(f)
		if err != nil {
			return LoadResult{}, err
		}
		logger.Debug("loaded file", "file", f.File.Name, "rows", len(fileRows), "skipped", skipped)
		res.SkippedRows += skipped
		rows = append(rows, fileRows...)
		res.Table.Sources = append(res.Table.Sources, f.File.Name)
		for _, c := range f.Columns {
			union[c] = struct{}{}
		}
	}

	for _, c := range domain.DataColumns() {
		if _, ok := union[c]; ok {
			res.Table.Columns = append(res.Table.Columns, c)
		}
	}
	res.Table.Rows = rows

	before := res.Table.Len()
	res.Table = res.Table.DropDuplicates()
	res.DuplicateRows = before - res.Table.Len()

	sort.SliceStable(res.Table.Rows, func(i, j int) bool {
		return res.Table.Rows[i].Time.Before(res.Table.Rows[j].Time)
	})

	if res.Table.Len() == 0 {
		return LoadResult{}, domain.ErrEmptyInput
	}
	return res, nil
}

// readFile parses one CSV into observations. Rows without a parseable DATE
// are skipped and counted.
func readFile(f ValidatedFile) ([]domain.RawObservation, int, error) {
	fh, err := os.Open(f.File.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", f.File.Path, err)
	}
	defer fh.Close()

	r := newCSVReader(fh)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header %s: %w", f.File.Path, err)
	}
	header = normalizeHeader(header)
	idx := make(map[domain.Column]int, len(f.Columns))
	for i, h := range header {
		c := domain.Column(h)
		if _, seen := idx[c]; !seen && hasColumn(f.Columns, c) {
			idx[c] = i
		}
	}
	dateIdx, ok := idx[domain.ColumnDate]
	if !ok {
		return nil, 0, fmt.Errorf("%s: missing %s column", f.File.Path, domain.ColumnDate)
	}
	stationIdx, hasStation := idx[domain.ColumnStation]

	var rows []domain.RawObservation
	skipped := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read %s: %w", f.File.Path, err)
		}
		if dateIdx >= len(rec) {
			skipped++
			continue
		}
		ts, err := ParseDate(rec[dateIdx])
		if err != nil {
			skipped++
			continue
		}
		obs := domain.RawObservation{
			Time:   ts,
			Fields: make(map[domain.Column]string, len(idx)),
		}
		if hasStation && stationIdx < len(rec) {
			obs.Station = strings.TrimSpace(rec[stationIdx])
		}
		for c, i := range idx {
			if c == domain.ColumnDate || c == domain.ColumnStation || i >= len(rec) {
				continue
			}
			if v := strings.TrimSpace(rec[i]); v != "" {
				obs.Fields[c] = v
			}
		}
		rows = append(rows, obs)
	}
	return rows, skipped, nil
}
