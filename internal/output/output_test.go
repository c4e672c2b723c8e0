package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

var (
	t0    = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rise0 = time.Date(2023, 1, 1, 7, 17, 0, 0, time.UTC)
)

func sampleTable() domain.OutputTable {
	return domain.OutputTable{
		Frequency: domain.Hourly,
		Index:     []time.Time{t0, t0.Add(time.Hour)},
		Columns:   []domain.Column{domain.ColumnDryBulbTemperature, domain.ColumnRelativeHumidity},
		Data: map[domain.Column][]float64{
			domain.ColumnDryBulbTemperature: {45, 44.5},
			domain.ColumnRelativeHumidity:   {80, domain.Null},
		},
		Sunrise:      []time.Time{rise0, rise0},
		Sunset:       []time.Time{{}, {}},
		NoSourceData: []bool{false, true},
	}
}

func TestFileName(t *testing.T) {
	details := domain.StationDetails{Name: "ATLANTA HARTSFIELD/JACKSON INTL AP"}
	freq, err := domain.ParseFrequency("15T")
	require.NoError(t, err)

	got := FileName(details, t0, t0.AddDate(0, 11, 30), freq, ".csv")

	assert.Equal(t, "ATLANTA HARTSFIELD-JACKSON INTL AP 2023-01-01 to 2023-12-31 15T.csv", got)
	assert.Equal(t, "Unknown 2023-01-01 to 2023-01-01 H.xlsx", FileName(domain.UnknownStation(), t0, t0, domain.Hourly, ".xlsx"))
}

func TestForFormat(t *testing.T) {
	w, err := ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, ".csv", w.Extension())

	w, err = ForFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", w.Extension())

	_, err = ForFormat("parquet")
	assert.ErrorContains(t, err, "parquet")
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, CSVWriter{}.Write(path, sampleTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "DATE,DryBulbTemperature,RelativeHumidity,Sunrise,Sunset,No source data\n" +
		"2023-01-01 00:00:00,45.0,80.0,2023-01-01 07:17:00,,False\n" +
		"2023-01-01 01:00:00,44.5,,2023-01-01 07:17:00,,True\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestCSVWriterMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.csv")

	err := CSVWriter{}.Write(path, sampleTable())

	assert.Error(t, err)
}

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	require.NoError(t, XLSXWriter{}.Write(path, sampleTable()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"DATE", "DryBulbTemperature", "RelativeHumidity", "Sunrise", "Sunset", "No source data"}, rows[0])
	assert.Equal(t, "2023-01-01 00:00:00", rows[1][0])
	assert.Equal(t, "45", rows[1][1])
	assert.Equal(t, "44.5", rows[2][1])
	assert.Empty(t, rows[2][2])
	assert.Equal(t, "2023-01-01 07:17:00", rows[2][3])
	assert.Equal(t, "TRUE", rows[2][5])
}

func TestReportWriter(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "X 2023-01-01 to 2023-01-01 H.csv")
	res := domain.Result{
		Station: domain.StationDetails{Name: "X", WBAN: "13874"},
		Sources: []string{"LCD_USW00013874_2023.csv"},
		Table:   sampleTable(),
		Stats: domain.CleaningStats{
			RawRecords:        10,
			SuspectTimesOfDay: []string{"23:59:00"},
			Means:             []domain.MeanComparison{{Column: domain.ColumnDryBulbTemperature, SourceMean: 45, ProcessedMean: 44.8, PctDifference: -0.004}},
		},
	}
	reportPath := ReportPath(tablePath, ".csv")

	require.NoError(t, NewReportWriter(clock).Write(reportPath, NewReport("run-1", tablePath, res)))

	assert.True(t, strings.HasSuffix(reportPath, "H.report.yaml"))
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var got Report
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "2024-05-01T12:00:00Z", got.GeneratedAt)
	assert.Equal(t, "Hourly", got.Frequency)
	assert.Equal(t, "2023-01-01 00:00:00", got.Start)
	assert.Equal(t, "2023-01-01 01:00:00", got.End)
	assert.Equal(t, 2, got.Rows)
	assert.Equal(t, "13874", got.Station.WBAN)
	assert.Equal(t, res.Sources, got.Sources)
	assert.Equal(t, 10, got.Stats.RawRecords)
	assert.Equal(t, []string{"23:59:00"}, got.Stats.SuspectTimesOfDay)
	assert.Equal(t, res.Stats.Means, got.Stats.Means)
}

func TestWriteStationTable(t *testing.T) {
	details := domain.StationDetails{
		USAF: "725300", WBAN: "94846", Name: "CHICAGO O'HARE INTL AP", Country: "US",
		State: "IL", Call: "KORD", Lat: "+41.960", Lon: "-087.932", Elevation: "+0201.8",
	}.WithMapURL()

	var buf bytes.Buffer
	require.NoError(t, WriteStationTable(&buf, details))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "Station Details", lines[0])
	assert.Equal(t, "USAF          725300", lines[1])
	assert.Equal(t, "STATION NAME  CHICAGO O'HARE INTL AP", lines[3])
	assert.Equal(t, "GOOGLE MAP    https://maps.google.com/?q=+41.960,-087.932", lines[10])
}
