package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"threadly/internal/domain/shared/events"
)

// EventRecord is one durable outbox row waiting to be published.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox accepts records inside the same request that mutated state; a worker
// publishes them later.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
}

// Record marshals each domain event and hands it to the outbox. A nil outbox
// disables event publication without touching call sites.
func Record(ctx context.Context, box Outbox, evs ...events.DomainEvent) error {
	if box == nil {
		return nil
	}
	for _, ev := range evs {
		if ev == nil {
			continue
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		record := EventRecord{
			ID:         uuid.NewString(),
			Name:       ev.EventName(),
			Payload:    payload,
			OccurredAt: ev.OccurredAt(),
			Aggregate:  ev.AggregateID(),
			Headers:    map[string]string{},
		}
		if err := box.Add(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
