// Package event publishes onboarding domain events to Kafka so that
// downstream services (reminder scheduler, analytics) can react.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"github.com/segmentio/kafka-go"

	kafkaopts "github.com/kart-io/onboarding-assistant/pkg/options/kafka"
	"github.com/kart-io/onboarding-assistant/pkg/utils/json"
)

// Event types.
const (
	TypeDocumentIngested = "document.ingested"
	TypeDocumentFailed   = "document.failed"
	TypeDocumentDeleted  = "document.deleted"
	TypePlanGenerated    = "plan.generated"
	TypeTaskUpdated      = "task.updated"
)

// headerEventType 消息头中的事件类型。
const headerEventType = "event-type"

// Event is one domain event. Key selects the partition, so events of the
// same document or employee stay ordered.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// New creates an event stamped with the current UTC time.
func New(typ, key string, data any) Event {
	return Event{Type: typ, Key: key, OccurredAt: time.Now().UTC(), Data: data}
}

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON-encoded events to a Kafka topic.
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
}

// NewPublisher returns a KafkaPublisher when brokers are configured and a
// NoopPublisher otherwise.
func NewPublisher(opts *kafkaopts.Options) Publisher {
	if !opts.Enabled() {
		logger.Infow("kafka brokers not configured, events disabled")
		return NoopPublisher{}
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(opts.Brokers...),
		Topic:        opts.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  opts.MaxAttempts,
		WriteTimeout: opts.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(opts.RequiredAcks),
	}
	logger.Infow("kafka event publisher created", "brokers", opts.Brokers, "topic", opts.Topic)
	return newKafkaPublisher(w, opts.Topic, opts.WriteTimeout)
}

func newKafkaPublisher(w messageWriter, topic string, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, timeout: timeout}
}

// Publish writes events synchronously in one batch.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling event %s: %w", e.Type, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(e.Key),
			Value:   value,
			Time:    e.OccurredAt,
			Headers: []kafka.Header{{Key: headerEventType, Value: []byte(e.Type)}},
		})
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		logger.Errorw("failed to publish events", "topic", p.topic, "count", len(msgs), "error", err.Error())
		return fmt.Errorf("publishing to kafka: %w", err)
	}
	logger.Debugw("events published", "topic", p.topic, "count", len(msgs))
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }
