package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event types published through the outbox.
const (
	EventRatingSubmitted   = "reputation.rating.submitted"
	EventReputationUpdated = "reputation.score.updated"
	EventReportSubmitted   = "reputation.report.submitted"
	EventPlayerWarned      = "sanction.warning.issued"
	EventPlayerSuspended   = "sanction.suspension.applied"
	EventPlayerBanned      = "sanction.ban.applied"
	EventRequestCreated    = "request.created"
	EventRequestFulfilled  = "request.fulfilled"
	EventMatchCompleted    = "match.completed"
)

// OutboxDraft is an event staged in the outbox table, written in the same
// transaction as the state change it describes.
type OutboxDraft struct {
	ID            int64     `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   string    `json:"aggregate_id"`
	EventType     string    `json:"event_type"`
	Payload       []byte    `json:"payload"`
	OccurredAt    time.Time `json:"occurred_at"`
}
