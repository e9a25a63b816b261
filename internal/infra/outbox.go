package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/footyheroes/platform/internal/guard"
	"github.com/footyheroes/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxPoller drains the event_outbox table into Kafka. Event topics are
// derived from the aggregate type, so reputation, sanction and request
// events land on separate streams.
type OutboxPoller struct {
	pool      *pgxpool.Pool
	outbox    repository.OutboxRepository
	producer  *KafkaProducer
	breaker   *guard.CircuitBreaker
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller creates a new outbox poller. A per-topic circuit breaker
// stops publish attempts against a broken topic; unpublished events stay
// in the outbox and are retried once the circuit closes.
func NewOutboxPoller(pool *pgxpool.Pool, outbox repository.OutboxRepository, producer *KafkaProducer, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		pool:      pool,
		outbox:    outbox,
		producer:  producer,
		breaker:   guard.NewCircuitBreaker(5, 30*time.Second),
		logger:    logger,
		interval:  500 * time.Millisecond,
		batchSize: 100,
	}
}

// Start begins polling in a goroutine. Stops when ctx is cancelled.
func (p *OutboxPoller) Start(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("outbox poller stopped")
				return
			case <-ticker.C:
				if err := p.poll(ctx); err != nil {
					p.logger.Error("outbox poll error", "error", err)
				}
			}
		}
	}()
}

func (p *OutboxPoller) poll(ctx context.Context) error {
	events, err := p.outbox.FetchUnpublished(ctx, p.pool, p.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	published := make([]int64, 0, len(events))
	for _, e := range events {
		topic := EventTopic(e.AggregateType)
		key := []byte(e.AggregateID)

		msg, _ := json.Marshal(map[string]interface{}{
			"event_id":       e.EventID,
			"aggregate_type": e.AggregateType,
			"aggregate_id":   e.AggregateID,
			"event_type":     e.EventType,
			"payload":        json.RawMessage(e.Payload),
			"occurred_at":    e.OccurredAt,
		})

		if result := p.breaker.Check(topic); !result.Allowed {
			p.logger.Warn("publish skipped", "topic", topic, "reason", result.Reason)
			continue
		}
		if err := p.producer.Publish(ctx, topic, key, msg); err != nil {
			p.breaker.RecordFailure(topic)
			p.logger.Error("kafka publish failed", "event_id", e.EventID, "error", err)
			continue
		}
		p.breaker.RecordSuccess(topic)
		published = append(published, e.ID)
	}

	if len(published) > 0 {
		if err := p.outbox.MarkPublished(ctx, p.pool, published); err != nil {
			p.logger.Error("mark published failed", "error", err)
		}
	}

	p.logger.Debug("outbox poll complete", "published", len(published))
	return nil
}
