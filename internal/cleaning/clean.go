// Package cleaning turns a merged LCD observation table into a regular,
// gap-bounded time series. Each stage is a pure function so it can be tested
// on its own; Clean runs them in order.
package cleaning

import (
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// Default tuning values.
const (
	DefaultMaxRecordsToInterpolate = 24
	DefaultPctNullTimestampMax     = 0.5
)

// Options tune a cleaning run.
type Options struct {
	// MaxRecordsToInterpolate is the longest interior gap, in hours, that is
	// filled by interpolation.
	MaxRecordsToInterpolate int
	// PctNullTimestampMax is the null share above which a time of day is
	// treated as a suspect reporting slot.
	PctNullTimestampMax float64
	// Frequency of the output; zero value means hourly.
	Frequency domain.Frequency
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxRecordsToInterpolate: DefaultMaxRecordsToInterpolate,
		PctNullTimestampMax:     DefaultPctNullTimestampMax,
		Frequency:               domain.Hourly,
	}
}

func (o Options) validate() error {
	if o.MaxRecordsToInterpolate < 0 {
		return fmt.Errorf("max records to interpolate must not be negative, got %d", o.MaxRecordsToInterpolate)
	}
	if o.PctNullTimestampMax < 0 || o.PctNullTimestampMax > 1 {
		return fmt.Errorf("null timestamp share must be within [0, 1], got %g", o.PctNullTimestampMax)
	}
	return nil
}

// ErrNoObservations is returned when no measurement column holds a single
// numeric value after coercion and pruning.
var ErrNoObservations = errors.New("no numeric observations to clean")

// Output is the cleaned table and the audit trail that produced it.
type Output struct {
	Table domain.OutputTable
	Stats domain.CleaningStats
}

// Clean runs every stage on t. The station must already be resolved since
// its bookkeeping columns are discarded here.
func Clean(t domain.UnifiedTable, opts Options) (Output, error) {
	if err := opts.validate(); err != nil {
		return Output{}, err
	}
	if opts.Frequency.Alias == "" {
		opts.Frequency = domain.Hourly
	}
	if t.Len() == 0 {
		return Output{}, domain.ErrEmptyInput
	}

	var stats domain.CleaningStats
	stats.RawRecords = t.Len()

	rawIndex := make([]time.Time, t.Len())
	for i, r := range t.Rows {
		rawIndex[i] = r.Time
	}
	missing := MissingHours(rawIndex)
	stats.HoursNoSourceData = len(missing)

	frame, unparseable := Coerce(PruneColumns(t))
	stats.UnparseableValues = unparseable
	stats.Before = Describe(frame)

	frame, stats.DuplicateTimestamps = ResolveDuplicates(frame)

	sun, frame := ExtractSunTimes(frame)

	frame, stats.SuspectTimesOfDay, stats.PrunedRecords = PruneSuspectTimes(frame, opts.PctNullTimestampMax)
	pruned := frame

	frame = Rejoin(ResampleColumns(frame), frame.Columns)
	if frame.Len() == 0 {
		return Output{}, ErrNoObservations
	}

	frame, stats.InterpolatedValues = Interpolate(frame, opts.MaxRecordsToInterpolate)
	frame = Reresample(frame, opts.Frequency)

	stats.After = Describe(frame)
	stats.Means = CompareMeans(stats.Before, stats.After)
	stats.Nulls = CompareNulls(pruned, frame)

	frame = Round(frame)

	return Output{
		Table: domain.OutputTable{
			Frequency:    opts.Frequency,
			Index:        frame.Index,
			Columns:      frame.Columns,
			Data:         frame.Data,
			Sunrise:      AttachSunTimes(frame.Index, sun.Sunrise),
			Sunset:       AttachSunTimes(frame.Index, sun.Sunset),
			NoSourceData: FlagNoSourceData(frame.Index, missing),
		},
		Stats: stats,
	}, nil
}
