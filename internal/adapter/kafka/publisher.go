package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// batchSize bounds the number of messages per WriteMessages call.
const batchSize = 500

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces one message per output row to a Kafka topic.
type Publisher struct {
	writer messageWriter
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for topic.
func NewPublisher(brokers []string, topic string, clock clockwork.Clock, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, clock: clock, logger: logger}
}

// Publish serializes every row of res.Table and writes them in batches.
// Rows sharing a station land on the same partition so consumers see them
// in time order. Returns the number of rows published.
func (p *Publisher) Publish(ctx context.Context, res domain.Result) (int, error) {
	publishedAt := p.clock.Now().UTC()
	published := 0
	for start := 0; start < res.Table.Len(); start += batchSize {
		end := min(start+batchSize, res.Table.Len())
		msgs := make([]kafkago.Message, 0, end-start)
		for i := start; i < end; i++ {
			msg, err := serializeToMessage(res, i, publishedAt)
			if err != nil {
				return published, err
			}
			msgs = append(msgs, msg)
		}
		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return published, fmt.Errorf("publish rows %d-%d: %w", start, end-1, err)
		}
		published += len(msgs)
		p.logger.Debug("published batch", "rows", len(msgs), "total", published)
	}
	return published, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Observation is the JSON value of a published row. Null measurements are
// encoded as JSON null.
type Observation struct {
	StationID    string              `json:"station_id"`
	StationName  string              `json:"station_name"`
	Timestamp    time.Time           `json:"timestamp"`
	Frequency    string              `json:"frequency"`
	Measurements map[string]*float64 `json:"measurements"`
	Sunrise      *time.Time          `json:"sunrise,omitempty"`
	Sunset       *time.Time          `json:"sunset,omitempty"`
	NoSourceData bool                `json:"no_source_data"`
}

// StationKey identifies a station by USAF and WBAN, e.g. "722190-13874".
func StationKey(s domain.StationDetails) string {
	return s.USAF + "-" + s.WBAN
}

// serializeToMessage marshals row i of the result into a Kafka message.
func serializeToMessage(res domain.Result, i int, publishedAt time.Time) (kafkago.Message, error) {
	tbl := res.Table
	obs := Observation{
		StationID:    StationKey(res.Station),
		StationName:  res.Station.Name,
		Timestamp:    tbl.Index[i],
		Frequency:    tbl.Frequency.String(),
		Measurements: make(map[string]*float64, len(tbl.Columns)),
		NoSourceData: i < len(tbl.NoSourceData) && tbl.NoSourceData[i],
	}
	for _, c := range tbl.Columns {
		var v *float64
		if x := tbl.Data[c][i]; !domain.IsNull(x) {
			v = &x
		}
		obs.Measurements[domain.DisplayName(c)] = v
	}
	if i < len(tbl.Sunrise) && !tbl.Sunrise[i].IsZero() {
		obs.Sunrise = &tbl.Sunrise[i]
	}
	if i < len(tbl.Sunset) && !tbl.Sunset[i].IsZero() {
		obs.Sunset = &tbl.Sunset[i]
	}

	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obs.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(obs.StationName)},
			{Key: "frequency", Value: []byte(obs.Frequency)},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
