package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/garment-erp/production-ledger/pkg/logging"
)

// KafkaConfig holds Kafka publisher configuration
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
}

// KafkaPublisher publishes envelopes to a Kafka topic behind a circuit
// breaker, so a broker outage degrades event delivery without failing the
// ledger operation that produced the event.
type KafkaPublisher struct {
	writer  *kafka.Writer
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
}

// NewKafkaPublisher creates a Kafka-backed publisher
func NewKafkaPublisher(config *KafkaConfig, logger *logging.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    config.BatchSize,
		BatchTimeout: config.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	settings := gobreaker.Settings{
		Name:    "kafka-publisher",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &KafkaPublisher{
		writer:  writer,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Publish sends the envelope to the configured topic
func (p *KafkaPublisher) Publish(ctx context.Context, envelope Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	start := time.Now()
	_, err = p.breaker.Execute(func() (interface{}, error) {
		msg := kafka.Message{
			Key:   []byte(envelope.Subject),
			Value: data,
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte(envelope.Type)},
				{Key: "event-source", Value: []byte(envelope.Source)},
				{Key: "event-id", Value: []byte(envelope.ID)},
				{Key: "event-time", Value: []byte(envelope.Time.Format(time.RFC3339))},
			},
			Time: envelope.Time,
		}
		return nil, p.writer.WriteMessages(ctx, msg)
	})

	p.logger.KafkaPublish(ctx, p.writer.Topic, envelope.Type, err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", envelope.Type, err)
	}
	return nil
}

// Close closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
