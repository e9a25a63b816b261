package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Notification is one message addressed to a player.
type Notification struct {
	PlayerID uuid.UUID       `json:"player_id"`
	Kind     string          `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
	SentAt   time.Time       `json:"sent_at"`
}

// Notification kinds.
const (
	KindMatchInvite      = "match_invite"
	KindRequestFulfilled = "request_fulfilled"
	KindSanctionNotice   = "sanction_notice"
)

// Dispatcher delivers player notifications. Delivery is best effort;
// broadcast flows never fail on a dispatch error.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// KafkaDispatcher publishes notifications to a Kafka topic, keyed by
// player id so per-player ordering holds.
type KafkaDispatcher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaDispatcher creates a dispatcher writing to the given topic.
func NewKafkaDispatcher(brokers []string, topic string, logger *slog.Logger) *KafkaDispatcher {
	return &KafkaDispatcher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger,
	}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, n Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	err = d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.PlayerID.String()),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (d *KafkaDispatcher) Close() error { return d.writer.Close() }

// NoopDispatcher drops notifications. Used in tests and when the broker
// is not configured.
type NoopDispatcher struct{}

func (NoopDispatcher) Dispatch(context.Context, Notification) error { return nil }
