package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/footyheroes/platform/internal/repository"
	"github.com/google/uuid"
)

// stageEvent writes an event to the outbox inside the caller's transaction,
// so the event commits or rolls back with the state change it describes.
func stageEvent(ctx context.Context, db repository.DBTX, outbox repository.OutboxRepository,
	aggregateType, aggregateID, eventType string, payload interface{}, occurredAt time.Time) error {

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	return outbox.Insert(ctx, db, domain.OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       body,
		OccurredAt:    occurredAt,
	})
}
