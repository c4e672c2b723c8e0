package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/cleaning"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/output"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/station"
)

// LCDTransformer implements Transformer: station resolution, optional
// geocoding enrichment, then the cleaning stages.
type LCDTransformer struct {
	resolver *station.Resolver
	geocoder domain.Geocoder
	opts     cleaning.Options
	display  io.Writer
	logger   *slog.Logger
}

// NewTransformer creates an LCDTransformer. Pass a nil geocoder to disable
// enrichment and a nil display to skip printing the station table.
func NewTransformer(resolver *station.Resolver, geocoder domain.Geocoder, opts cleaning.Options, display io.Writer, logger *slog.Logger) *LCDTransformer {
	return &LCDTransformer{
		resolver: resolver,
		geocoder: geocoder,
		opts:     opts,
		display:  display,
		logger:   logger,
	}
}

func (t *LCDTransformer) Transform(ctx context.Context, ext Extraction) (domain.Result, error) {
	table := ext.Load.Table

	id := station.DominantStation(table)
	details := t.resolver.Resolve(id)
	details = station.EnrichWithGeocoding(ctx, details, t.geocoder, t.logger)
	t.logger.Info("station resolved", "station", id, "name", details.Name, "geo_source", details.GeoSource)
	if t.display != nil {
		if err := output.WriteStationTable(t.display, details); err != nil {
			t.logger.Warn("print station details failed", "error", err)
		}
	}

	out, err := cleaning.Clean(table, t.opts)
	if err != nil {
		return domain.Result{}, fmt.Errorf("clean %s: %w", id, err)
	}

	st := out.Stats
	t.logger.Info("data cleaned",
		"frequency", out.Table.Frequency.Description(),
		"rows", out.Table.Len(),
		"duplicate_timestamps", st.DuplicateTimestamps,
		"unparseable_values", st.UnparseableValues,
		"suspect_times", st.SuspectTimesOfDay,
		"pruned_records", st.PrunedRecords,
		"hours_no_source_data", st.HoursNoSourceData,
		"interpolated_values", st.InterpolatedValues,
	)
	for _, n := range st.Nulls {
		t.logger.Debug("percent null", "column", domain.DisplayName(n.Column), "before", n.PctBefore, "after", n.PctAfter)
	}
	for _, m := range st.Means {
		t.logger.Debug("mean comparison", "column", domain.DisplayName(m.Column), "source", m.SourceMean, "processed", m.ProcessedMean, "pct_difference", m.PctDifference)
	}

	return domain.Result{
		Station: details,
		Sources: table.Sources,
		Table:   out.Table,
		Stats:   st,
	}, nil
}
