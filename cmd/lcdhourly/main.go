package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	kafkaadapter "github.com/couchcryptid/noaa-lcd-hourly/internal/adapter/kafka"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/adapter/mapbox"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/cleaning"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/config"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/observability"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/output"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/pipeline"
	"github.com/couchcryptid/noaa-lcd-hourly/internal/station"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	filename := flag.String("filename", "", "LCD file to process; its directory is searched for related files")
	flag.StringVar(&cfg.Frequency, "frequency", cfg.Frequency, "output frequency alias, e.g. H, 15T, D, MS")
	flag.StringVar(&cfg.SourceDir, "dir", cfg.SourceDir, "directory containing LCD files")
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid flags", "error", err)
		return 1
	}

	runID := uuid.NewString()
	logger := observability.NewLogger(cfg).With("run_id", runID)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	table, err := station.LoadReferenceTable(cfg.StationTable)
	if err != nil {
		logger.Warn("station reference table unavailable", "file", cfg.StationTable, "error", err)
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		geocoder = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		logger.Info("mapbox geocoding enabled", "timeout", cfg.MapboxTimeout)
	} else {
		logger.Debug("mapbox geocoding disabled")
	}

	writer, err := output.ForFormat(cfg.OutputFormat)
	if err != nil {
		logger.Error("invalid output format", "error", err)
		return 1
	}
	var reports *output.ReportWriter
	if cfg.ReportEnabled {
		reports = output.NewReportWriter(clock)
	}

	opts := cleaning.Options{
		MaxRecordsToInterpolate: cfg.MaxRecordsToInterpolate,
		PctNullTimestampMax:     cfg.PctNullTimestampMax,
		Frequency:               cfg.OutputFrequency(),
	}

	pipelineOpts := []pipeline.Option{pipeline.WithClock(clock), pipeline.WithRunID(runID)}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, clock, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		pipelineOpts = append(pipelineOpts, pipeline.WithPublisher(publisher))
		logger.Info("kafka publication enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(
		pipeline.NewFileExtractor(cfg.SourceDir, *filename, logger),
		pipeline.NewTransformer(station.NewResolver(table, logger), geocoder, opts, os.Stdout, logger),
		pipeline.NewFileLoader(cfg.OutputDir, writer, reports, runID, logger),
		logger,
		metrics,
		pipelineOpts...,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := p.Run(ctx)
	writeMetrics(cfg, metrics, logger)
	switch {
	case domain.IsEarlyExit(err):
		fmt.Println(err)
		return 0
	case errors.Is(err, domain.ErrEmptyInput):
		fmt.Println(err)
		return 1
	case err != nil:
		logger.Error("pipeline error", "error", err)
		return 1
	}

	fmt.Printf("\nOutput written to %s\n", summary.Written.Table)
	return 0
}

func writeMetrics(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) {
	if cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logger.Warn("write metrics failed", "error", err)
	}
}
