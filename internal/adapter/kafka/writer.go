package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/grid-reliability-etl/internal/config"
	"github.com/couchcryptid/grid-reliability-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// metricsMessage is the JSON value of one published metrics row.
type metricsMessage struct {
	Granularity domain.Granularity `json:"granularity"`
	domain.MetricsRow
	ComputedAt time.Time `json:"computed_at"`
}

// Writer produces metrics rows to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes every row of the snapshot's daily, weekly and monthly tables
// in a single WriteMessages call. Rows are keyed by their grouping key so a
// row and its later recomputations land on the same partition.
func (w *Writer) Publish(ctx context.Context, snap *domain.Snapshot) error {
	msgs, err := snapshotMessages(snap)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d metrics rows: %w", len(msgs), err)
	}
	w.logger.Debug("metrics rows published", "rows", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func snapshotMessages(snap *domain.Snapshot) ([]kafkago.Message, error) {
	var msgs []kafkago.Message
	for _, g := range domain.Granularities {
		for _, row := range snap.Tables.Table(g) {
			msg, err := serializeToMessage(g, row, snap.ComputedAt)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// serializeToMessage marshals a MetricsRow into a Kafka message.
func serializeToMessage(g domain.Granularity, row domain.MetricsRow, computedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(metricsMessage{Granularity: g, MetricsRow: row, ComputedAt: computedAt})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize metrics row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(g, row)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "granularity", Value: []byte(g)},
			{Key: "computed_at", Value: []byte(computedAt.Format(time.RFC3339))},
		},
	}, nil
}

func messageKey(g domain.Granularity, row domain.MetricsRow) string {
	return strings.Join([]string{string(g), row.FeederName, row.PeriodLabel, row.SubPeriod}, "|")
}
