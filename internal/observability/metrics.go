package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lcd_hourly"

// Metrics holds the Prometheus counters, histograms, and gauges for one run.
// A CLI run has no scrape endpoint, so metrics live on a private registry that
// can be flushed to a node_exporter textfile.
type Metrics struct {
	registry *prometheus.Registry

	FilesMatched prometheus.Gauge
	FilesLoaded  prometheus.Gauge
	RawRecords   prometheus.Gauge

	DuplicateTimestamps prometheus.Counter
	UnparseableValues   prometheus.Counter
	SuspectRecords      prometheus.Counter
	HoursNoSourceData   prometheus.Gauge
	InterpolatedValues  prometheus.Counter
	OutputRows          prometheus.Gauge
	RowsPublished       prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeAPIDuration prometheus.Histogram

	RunDuration prometheus.Histogram
	RunSuccess  prometheus.Gauge
}

// NewMetrics creates all run metrics registered on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		FilesMatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "files_matched",
			Help:      "LCD files selected for the run's station group.",
		}),
		FilesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "files_loaded",
			Help:      "Files that passed schema validation and were loaded.",
		}),
		RawRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "raw_records",
			Help:      "Rows in the merged source table.",
		}),
		DuplicateTimestamps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_timestamps_total",
			Help:      "Rows collapsed into another row with the same timestamp.",
		}),
		UnparseableValues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unparseable_values_total",
			Help:      "Measurement cells that could not be read as numbers.",
		}),
		SuspectRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspect_records_pruned_total",
			Help:      "Rows removed because their time of day is mostly null.",
		}),
		HoursNoSourceData: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hours_no_source_data",
			Help:      "Hours in the observed range without any source observation.",
		}),
		InterpolatedValues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interpolated_values_total",
			Help:      "Values filled by bounded interpolation.",
		}),
		OutputRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "output_rows",
			Help:      "Rows written to the output table.",
		}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_published_total",
			Help:      "Output rows published to Kafka.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_success",
			Help:      "1 when the last run wrote its output, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		m.FilesMatched,
		m.FilesLoaded,
		m.RawRecords,
		m.DuplicateTimestamps,
		m.UnparseableValues,
		m.SuspectRecords,
		m.HoursNoSourceData,
		m.InterpolatedValues,
		m.OutputRows,
		m.RowsPublished,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
		m.RunDuration,
		m.RunSuccess,
	)

	return m
}

// NewMetricsForTesting returns Metrics on their own registry, safe to call
// from many tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics()
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the Prometheus text format to path,
// atomically, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
