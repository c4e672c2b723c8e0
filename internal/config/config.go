package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=json text"`

	SourceDir    string `envconfig:"SOURCE_DIR" default:"." validate:"required"`
	OutputDir    string `envconfig:"OUTPUT_DIR" default:"." validate:"required"`
	OutputFormat string `envconfig:"OUTPUT_FORMAT" default:"csv" validate:"oneof=csv xlsx"`
	StationTable string `envconfig:"STATION_TABLE" default:"isd-history.csv" validate:"required"`

	// Cleaning tuning.
	Frequency               string  `envconfig:"FREQUENCY" default:"H" validate:"frequency"`
	MaxRecordsToInterpolate int     `envconfig:"MAX_RECORDS_TO_INTERPOLATE" default:"24" validate:"gte=0"`
	PctNullTimestampMax     float64 `envconfig:"PCT_NULL_TIMESTAMP_MAX" default:"0.5" validate:"gte=0,lte=1"`

	ReportEnabled   bool   `envconfig:"REPORT_ENABLED" default:"true"`
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE"`

	// Kafka publication is enabled when brokers are set.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" ignored:"true"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"lcd-hourly-observations" validate:"required_with=KafkaBrokers"`

	// Mapbox geocoding configuration.
	MapboxToken   string        `envconfig:"MAPBOX_TOKEN" validate:"required_if=MapboxEnabled true"`
	MapboxEnabled bool          `envconfig:"MAPBOX_ENABLED"`
	MapboxTimeout time.Duration `envconfig:"MAPBOX_TIMEOUT" default:"5s" validate:"gt=0"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Geocoding defaults to on whenever a token is present.
	if _, set := os.LookupEnv("MAPBOX_ENABLED"); !set {
		cfg.MapboxEnabled = cfg.MapboxToken != ""
	}
	if v := os.Getenv("KAFKA_BROKERS"); strings.TrimSpace(v) != "" {
		cfg.KafkaBrokers = trimAll(sharedcfg.ParseBrokers(v))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field, reporting failures by environment variable name.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required_if" && fe.Field() == "MAPBOX_TOKEN" {
			msgs = append(msgs, "MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
			continue
		}
		msgs = append(msgs, fmt.Sprintf("invalid %s %q: failed %s", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// OutputFrequency returns the parsed Frequency. Validate guarantees it parses.
func (c *Config) OutputFrequency() domain.Frequency {
	f, err := domain.ParseFrequency(c.Frequency)
	if err != nil {
		return domain.Hourly
	}
	return f
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("envconfig"); name != "" {
			return name
		}
		return fld.Name
	})
	_ = v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseFrequency(fl.Field().String())
		return err == nil
	})
	return v
}

func trimAll(ss []string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
