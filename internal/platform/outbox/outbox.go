// Package outbox records integration events in the same transaction as the
// state change that caused them, and relays them to a broker afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Event is one row of the outbox.
type Event struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	OccurredAt    time.Time
	PublishedAt   *time.Time
}

// Store persists outbox rows. Append must join the caller's transaction.
type Store interface {
	Append(ctx context.Context, events ...Event) error
	// Pending returns unpublished events, oldest first.
	Pending(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []string, at time.Time) error
}

// Named is implemented by domain events.
type Named interface {
	EventName() string
	OccurredAt() time.Time
}

// NewEvent serializes a domain event into an outbox row.
func NewEvent(aggregateType string, aggregateID int64, event Named) (Event, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s: %w", event.EventName(), err)
	}
	occurred := event.OccurredAt()
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return Event{
		ID:            uuid.NewString(),
		AggregateType: aggregateType,
		AggregateID:   strconv.FormatInt(aggregateID, 10),
		EventType:     event.EventName(),
		Payload:       payload,
		OccurredAt:    occurred,
	}, nil
}
