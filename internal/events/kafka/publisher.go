package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/finstream/records_backend/internal/core/domain"
	portssvc "github.com/finstream/records_backend/internal/core/ports/services"
	"github.com/finstream/records_backend/internal/middleware"
)

// RelayConsumer forwards RecordStored events to a Kafka topic for external
// alerting/notification infrastructure. Messages are keyed by record_id so a
// partition sees each record's events in order. Registered only when brokers
// are configured.
type RelayConsumer struct {
	writer *kafka.Writer
}

// NewRelayConsumer creates a relay publishing to the given brokers and topic.
func NewRelayConsumer(brokers []string, topic string) *RelayConsumer {
	return &RelayConsumer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Ensure RelayConsumer implements the portssvc.RecordEventConsumer interface
var _ portssvc.RecordEventConsumer = (*RelayConsumer)(nil)

func (r *RelayConsumer) Name() string {
	return "kafka_relay"
}

// Handle publishes the event payload. Failures are logged and swallowed:
// delivery to the broker is at-least-once best effort and never affects the
// stored record.
func (r *RelayConsumer) Handle(ctx context.Context, event domain.RecordStored) {
	logger := middleware.GetLoggerFromCtx(ctx)

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", slog.String("event_id", event.EventID), slog.String("error", err.Error()))
		return
	}

	err = r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Record.RecordID),
		Value: data,
	})
	if err != nil {
		logger.Error("Failed to publish event to kafka",
			slog.String("event_id", event.EventID),
			slog.String("topic", r.writer.Topic),
			slog.String("error", err.Error()),
		)
	}
}

// Close flushes and closes the underlying writer.
func (r *RelayConsumer) Close() error {
	return r.writer.Close()
}
