package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/observability"
)

// Extractor discovers the run's input files and loads them into one table.
type Extractor interface {
	Extract(ctx context.Context) (Extraction, error)
}

// Transformer resolves the station and cleans the table.
type Transformer interface {
	Transform(ctx context.Context, ext Extraction) (domain.Result, error)
}

// Loader writes the result to its authoritative destination.
type Loader interface {
	Load(ctx context.Context, res domain.Result) (Written, error)
}

// Publisher is an optional secondary sink. Failures are logged, not fatal.
type Publisher interface {
	Publish(ctx context.Context, res domain.Result) (int, error)
}

// Written lists the files a Loader produced.
type Written struct {
	Table  string
	Report string
}

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Station   domain.StationDetails
	Sources   []string
	Written   Written
	Rows      int
	Published int
	Stats     domain.CleaningStats
	Duration  time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPublisher adds a secondary sink for the output rows.
func WithPublisher(p Publisher) Option {
	return func(pl *Pipeline) { pl.publisher = p }
}

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(pl *Pipeline) { pl.clock = c }
}

// WithRunID sets the ID reported in the run Summary.
func WithRunID(id string) Option {
	return func(pl *Pipeline) { pl.runID = id }
}

// Pipeline runs one extract-transform-load pass over a station group.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	publisher   Publisher
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
	runID       string
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		clock:       clockwork.NewRealClock(),
		logger:      logger,
		metrics:     metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline once. Discovery conditions are returned as the
// typed errors from the domain package; see domain.IsEarlyExit.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := p.clock.Now()
	p.metrics.RunSuccess.Set(0)
	p.logger.Info("pipeline started")

	ext, err := p.extractor.Extract(ctx)
	if err != nil {
		return Summary{}, err
	}
	p.metrics.FilesMatched.Set(float64(len(ext.Selection.Files)))
	p.metrics.FilesLoaded.Set(float64(len(ext.Files)))
	p.metrics.RawRecords.Set(float64(ext.Load.Table.Len()))

	res, err := p.transformer.Transform(ctx, ext)
	if err != nil {
		return Summary{}, err
	}
	p.recordStats(res)

	written, err := p.loader.Load(ctx, res)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		RunID:   p.runID,
		Station: res.Station,
		Sources: res.Sources,
		Written: written,
		Rows:    res.Table.Len(),
		Stats:   res.Stats,
	}

	if p.publisher != nil {
		n, err := p.publisher.Publish(ctx, res)
		if err != nil {
			p.logger.Warn("publish rows failed", "published", n, "error", err)
		}
		summary.Published = n
		p.metrics.RowsPublished.Add(float64(n))
	}

	summary.Duration = p.clock.Since(start)
	p.metrics.RunDuration.Observe(summary.Duration.Seconds())
	p.metrics.RunSuccess.Set(1)
	p.logger.Info("pipeline finished",
		"output", written.Table,
		"rows", summary.Rows,
		"published", summary.Published,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (p *Pipeline) recordStats(res domain.Result) {
	st := res.Stats
	p.metrics.DuplicateTimestamps.Add(float64(st.DuplicateTimestamps))
	p.metrics.UnparseableValues.Add(float64(st.UnparseableValues))
	p.metrics.SuspectRecords.Add(float64(st.PrunedRecords))
	p.metrics.HoursNoSourceData.Set(float64(st.HoursNoSourceData))
	p.metrics.InterpolatedValues.Add(float64(st.InterpolatedValues))
	p.metrics.OutputRows.Set(float64(res.Table.Len()))
}
