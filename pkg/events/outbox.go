package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutboxEntry is a domain event serialized for the outbox table.
type OutboxEntry struct {
	CreatedAt     time.Time
	PublishedAt   *time.Time
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       []byte
}

// NewOutboxEntry serializes event into an OutboxEntry. The payload is the JSON
// encoding of the concrete event value.
func NewOutboxEntry(event DomainEvent) (OutboxEntry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("events: marshal %s: %w", event.EventType(), err)
	}
	return OutboxEntry{
		ID:            event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		EventType:     event.EventType(),
		Payload:       payload,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// NewOutboxEntries serializes events in order, stopping at the first failure.
func NewOutboxEntries(evts ...DomainEvent) ([]OutboxEntry, error) {
	entries := make([]OutboxEntry, 0, len(evts))
	for _, evt := range evts {
		entry, err := NewOutboxEntry(evt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
