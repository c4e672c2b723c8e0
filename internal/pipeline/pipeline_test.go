package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/cleaning"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/observability"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/output"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/pipeline"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/station"
)

// --- mocks ---

type mockExtractor struct {
	ext pipeline.Extraction
	err error
}

func (m *mockExtractor) Extract(context.Context) (pipeline.Extraction, error) {
	return m.ext, m.err
}

type mockTransformer struct {
	res    domain.Result
	err    error
	called bool
}

func (m *mockTransformer) Transform(context.Context, pipeline.Extraction) (domain.Result, error) {
	m.called = true
	return m.res, m.err
}

type mockLoader struct {
	loaded []domain.Result
	err    error
}

func (m *mockLoader) Load(_ context.Context, res domain.Result) (pipeline.Written, error) {
	if m.err != nil {
		return pipeline.Written{}, m.err
	}
	m.loaded = append(m.loaded, res)
	return pipeline.Written{Table: "out.csv"}, nil
}

type mockPublisher struct {
	n   int
	err error
}

func (m *mockPublisher) Publish(context.Context, domain.Result) (int, error) {
	return m.n, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

var t0 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleResult() domain.Result {
	return domain.Result{
		Station: domain.StationDetails{Name: "LINCOLN MUNI AP"},
		Sources: []string{"LCD_USW00014939_2023.csv"},
		Table: domain.OutputTable{
			Frequency:    domain.Hourly,
			Index:        []time.Time{t0, t0.Add(time.Hour)},
			Columns:      []domain.Column{domain.ColumnDryBulbTemperature},
			Data:         map[domain.Column][]float64{domain.ColumnDryBulbTemperature: {40, 41}},
			NoSourceData: []bool{false, false},
		},
		Stats: domain.CleaningStats{DuplicateTimestamps: 2, InterpolatedValues: 3, HoursNoSourceData: 1},
	}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	ext := &mockExtractor{}
	tfm := &mockTransformer{res: sampleResult()}
	ldr := &mockLoader{}
	pub := &mockPublisher{n: 2}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, discardLogger(), metrics,
		pipeline.WithClock(clock),
		pipeline.WithRunID("run-1"),
		pipeline.WithPublisher(pub),
	)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	want := pipeline.Summary{
		RunID:     "run-1",
		Station:   domain.StationDetails{Name: "LINCOLN MUNI AP"},
		Sources:   []string{"LCD_USW00014939_2023.csv"},
		Written:   pipeline.Written{Table: "out.csv"},
		Rows:      2,
		Published: 2,
		Stats:     sampleResult().Stats,
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, ldr.loaded, 1)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RunSuccess), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.OutputRows), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.DuplicateTimestamps), 1e-9)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.InterpolatedValues), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.HoursNoSourceData), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RowsPublished), 1e-9)
}

func TestPipeline_Run_ExtractErrorStopsRun(t *testing.T) {
	extErr := &domain.NoCSVFilesError{Dir: "/data"}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(&mockExtractor{err: extErr}, tfm, ldr, discardLogger(), metrics)

	_, err := p.Run(context.Background())

	require.ErrorIs(t, err, extErr)
	assert.True(t, domain.IsEarlyExit(err))
	assert.False(t, tfm.called)
	assert.Empty(t, ldr.loaded)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.RunSuccess), 1e-9)
}

func TestPipeline_Run_TransformError(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{err: cleaning.ErrNoObservations}, ldr, discardLogger(), newTestMetrics())

	_, err := p.Run(context.Background())

	require.ErrorIs(t, err, cleaning.ErrNoObservations)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_LoadError(t *testing.T) {
	metrics := newTestMetrics()
	p := pipeline.New(&mockExtractor{}, &mockTransformer{res: sampleResult()}, &mockLoader{err: errors.New("disk full")}, discardLogger(), metrics)

	_, err := p.Run(context.Background())

	require.ErrorContains(t, err, "disk full")
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.RunSuccess), 1e-9)
}

func TestPipeline_Run_PublishErrorIsNotFatal(t *testing.T) {
	metrics := newTestMetrics()
	pub := &mockPublisher{n: 1, err: errors.New("broker down")}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{res: sampleResult()}, &mockLoader{}, discardLogger(), metrics,
		pipeline.WithPublisher(pub),
	)

	summary, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Published)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RunSuccess), 1e-9)
}

// --- end to end ---

const isdHistory = `"USAF","WBAN","STATION NAME","CTRY","STATE","ICAO","LAT","LON","ELEV(M)","BEGIN","END"
"722190","13874","ATLANTA HARTSFIELD-JACKSON INTL AP","US","GA","KATL","+33.630","-084.442","+0308.2","20050101","20240101"
`

const lcd2023 = `STATION,DATE,REPORT_TYPE,HourlyDryBulbTemperature,HourlyRelativeHumidity,Remarks
72219013874,2023-01-01T00:51:00,FM-15,44,80,x
72219013874,2023-01-01T01:51:00,FM-15,46,70,x
72219013874,2023-01-01T03:51:00,FM-15,50,60,x
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPipeline_EndToEnd(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeFile(t, srcDir, "LCD_72219013874_2023.csv", lcd2023)
	writeFile(t, srcDir, "notes.csv", "a,b\n1,2\n")

	table, err := station.ReadReferenceTable(strings.NewReader(isdHistory))
	require.NoError(t, err)

	logger := discardLogger()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	var display strings.Builder

	p := pipeline.New(
		pipeline.NewFileExtractor(srcDir, "", logger),
		pipeline.NewTransformer(station.NewResolver(table, logger), nil, cleaning.DefaultOptions(), &display, logger),
		pipeline.NewFileLoader(outDir, output.CSVWriter{}, output.NewReportWriter(clock), "run-e2e", logger),
		logger,
		newTestMetrics(),
		pipeline.WithClock(clock),
		pipeline.WithRunID("run-e2e"),
	)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	wantPath := filepath.Join(outDir, "ATLANTA HARTSFIELD-JACKSON INTL AP 2023-01-01 to 2023-01-01 H.csv")
	assert.Equal(t, wantPath, summary.Written.Table)
	assert.Equal(t, 4, summary.Rows)
	assert.Contains(t, display.String(), "ATLANTA HARTSFIELD-JACKSON INTL AP")

	data, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	want := "DATE,DryBulbTemperature,RelativeHumidity,Sunrise,Sunset,No source data\n" +
		"2023-01-01 00:00:00,44.0,80.0,,,True\n" +
		"2023-01-01 01:00:00,46.0,70.0,,,False\n" +
		"2023-01-01 02:00:00,48.0,65.0,,,False\n" +
		"2023-01-01 03:00:00,50.0,60.0,,,True\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}

	reportData, err := os.ReadFile(summary.Written.Report)
	require.NoError(t, err)
	var report output.Report
	require.NoError(t, yaml.Unmarshal(reportData, &report))
	assert.Equal(t, "run-e2e", report.RunID)
	assert.Equal(t, "2024-05-01T12:00:00Z", report.GeneratedAt)
	assert.Equal(t, 2, report.Stats.InterpolatedValues)
	assert.Equal(t, []string{"LCD_72219013874_2023.csv"}, report.Sources)
}

func TestPipeline_EndToEnd_NoMatchingFiles(t *testing.T) {
	srcDir := t.TempDir()
	writeFile(t, srcDir, "notes.csv", "a,b\n1,2\n")
	logger := discardLogger()

	p := pipeline.New(
		pipeline.NewFileExtractor(srcDir, "", logger),
		pipeline.NewTransformer(station.NewResolver(nil, logger), nil, cleaning.DefaultOptions(), nil, logger),
		pipeline.NewFileLoader(t.TempDir(), output.CSVWriter{}, nil, "", logger),
		logger,
		newTestMetrics(),
	)

	_, err := p.Run(context.Background())

	var noMatch *domain.NoMatchingFilesError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, []string{"notes.csv"}, noMatch.CSVFiles)
	assert.True(t, domain.IsEarlyExit(err))
}
