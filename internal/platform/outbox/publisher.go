package outbox

import (
	"context"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"
)

// Publisher hands events to a broker.
type Publisher interface {
	Publish(ctx context.Context, events []Event) error
	Close() error
}

// KafkaPublisher writes events to one topic keyed by aggregate id, so events
// of the same order stay in one partition and keep their order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events []Event) error {
	messages := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		messages = append(messages, kafka.Message{
			Key:   []byte(e.AggregateType + ":" + e.AggregateID),
			Value: e.Payload,
			Time:  e.OccurredAt,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(e.ID)},
				{Key: "event_type", Value: []byte(e.EventType)},
			},
		})
	}
	return p.writer.WriteMessages(ctx, messages...)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher writes events to the structured log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events []Event) error {
	if p.logger == nil {
		return nil
	}
	for _, e := range events {
		p.logger.LogAttrs(ctx, slog.LevelInfo, "outbox event",
			slog.String("event.id", e.ID),
			slog.String("event.type", e.EventType),
			slog.String("aggregate", e.AggregateType+":"+e.AggregateID),
			slog.String("payload", string(e.Payload)),
		)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// ParseBrokers splits a comma separated broker list.
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
