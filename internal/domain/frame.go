package domain

import (
	"math"
	"time"
)

// Null is the in-memory representation of a missing numeric value.
var Null = math.NaN()

// IsNull reports whether v is a missing numeric value.
func IsNull(v float64) bool { return math.IsNaN(v) }

// Series is a single numeric column on a sorted timestamp index.
type Series struct {
	Index  []time.Time
	Values []float64
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Index) }

// Frame is a set of numeric columns sharing one sorted index. Text holds
// columns that are not numeric (Sunrise/Sunset) on the same index.
type Frame struct {
	Index   []time.Time
	Columns []Column
	Data    map[Column][]float64
	Text    map[Column][]string
}

// NewFrame allocates an empty frame for the given columns and row count.
func NewFrame(index []time.Time, cols []Column) Frame {
	f := Frame{
		Index:   index,
		Columns: append([]Column(nil), cols...),
		Data:    make(map[Column][]float64, len(cols)),
		Text:    map[Column][]string{},
	}
	for _, c := range cols {
		vals := make([]float64, len(index))
		for i := range vals {
			vals[i] = Null
		}
		f.Data[c] = vals
	}
	return f
}

// Len returns the number of rows.
func (f Frame) Len() int { return len(f.Index) }

// Column returns the column as a Series sharing the frame's index.
func (f Frame) Column(c Column) Series {
	return Series{Index: f.Index, Values: f.Data[c]}
}

// TextColumns lists the non-numeric columns present, in SunColumns order.
func (f Frame) TextColumns() []Column {
	var cols []Column
	for _, c := range SunColumns {
		if _, ok := f.Text[c]; ok {
			cols = append(cols, c)
		}
	}
	return cols
}

// Clone deep-copies the frame so stages never share backing arrays.
func (f Frame) Clone() Frame {
	out := Frame{
		Index:   append([]time.Time(nil), f.Index...),
		Columns: append([]Column(nil), f.Columns...),
		Data:    make(map[Column][]float64, len(f.Data)),
		Text:    make(map[Column][]string, len(f.Text)),
	}
	for c, v := range f.Data {
		out.Data[c] = append([]float64(nil), v...)
	}
	for c, v := range f.Text {
		out.Text[c] = append([]string(nil), v...)
	}
	return out
}

// SunTimes maps calendar dates (midnight) to that day's sunrise and sunset.
type SunTimes struct {
	Sunrise map[time.Time]time.Time
	Sunset  map[time.Time]time.Time
}

// OutputTable is the terminal artifact of a cleaning run.
type OutputTable struct {
	Frequency    Frequency
	Index        []time.Time
	Columns      []Column
	Data         map[Column][]float64
	Sunrise      []time.Time // zero value is null
	Sunset       []time.Time // zero value is null
	NoSourceData []bool
}

// Len returns the number of rows.
func (t OutputTable) Len() int { return len(t.Index) }

// Start returns the first timestamp, or zero time for an empty table.
func (t OutputTable) Start() time.Time {
	if len(t.Index) == 0 {
		return time.Time{}
	}
	return t.Index[0]
}

// End returns the last timestamp, or zero time for an empty table.
func (t OutputTable) End() time.Time {
	if len(t.Index) == 0 {
		return time.Time{}
	}
	return t.Index[len(t.Index)-1]
}

// Header returns the output column names, measurement prefixes stripped.
func (t OutputTable) Header() []string {
	h := make([]string, 0, len(t.Columns)+4)
	h = append(h, string(ColumnDate))
	for _, c := range t.Columns {
		h = append(h, DisplayName(c))
	}
	return append(h, string(ColumnSunrise), string(ColumnSunset), ColumnNoSourceData)
}

// ColumnStats are descriptive statistics of one numeric column.
type ColumnStats struct {
	Column Column  `yaml:"column"`
	Count  int     `yaml:"count"`
	Mean   float64 `yaml:"mean"`
	Std    float64 `yaml:"std"`
	Min    float64 `yaml:"min"`
	P25    float64 `yaml:"p25"`
	P50    float64 `yaml:"p50"`
	P75    float64 `yaml:"p75"`
	Max    float64 `yaml:"max"`
}

// MeanComparison contrasts a column's mean before and after cleaning.
type MeanComparison struct {
	Column        Column  `yaml:"column"`
	SourceMean    float64 `yaml:"source_mean"`
	ProcessedMean float64 `yaml:"processed_mean"`
	PctDifference float64 `yaml:"pct_difference"`
}

// NullComparison contrasts a column's share of null values before and after cleaning.
type NullComparison struct {
	Column    Column  `yaml:"column"`
	PctBefore float64 `yaml:"pct_null_before"`
	PctAfter  float64 `yaml:"pct_null_after"`
}

// CleaningStats is the audit trail of a cleaning run.
type CleaningStats struct {
	RawRecords          int              `yaml:"raw_records"`
	DuplicateTimestamps int              `yaml:"duplicate_timestamps"`
	UnparseableValues   int              `yaml:"unparseable_values"`
	SuspectTimesOfDay   []string         `yaml:"suspect_times_of_day"`
	PrunedRecords       int              `yaml:"pruned_records"`
	HoursNoSourceData   int              `yaml:"hours_no_source_data"`
	InterpolatedValues  int              `yaml:"interpolated_values"`
	Before              []ColumnStats    `yaml:"before"`
	After               []ColumnStats    `yaml:"after"`
	Means               []MeanComparison `yaml:"means"`
	Nulls               []NullComparison `yaml:"nulls"`
}

// Result bundles everything a run produced for the loaders.
type Result struct {
	Station StationDetails
	Sources []string
	Table   OutputTable
	Stats   CleaningStats
}
