// Package events defines the domain event contract shared by aggregates and
// the transactional outbox.
package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	AggregateType() string
	OccurredAt() time.Time
}

// BaseEvent carries the envelope metadata of a domain event. Concrete events
// embed it and add their own exported payload fields.
type BaseEvent struct {
	occurredAt    time.Time
	id            string
	eventType     string
	aggregateID   string
	aggregateType string
}

// NewBaseEvent creates a BaseEvent with a generated ID stamped at occurredAt.
// A zero occurredAt is replaced with the current UTC time.
func NewBaseEvent(eventType, aggregateID, aggregateType string, occurredAt time.Time) BaseEvent {
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return BaseEvent{
		id:            uuid.NewString(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    occurredAt,
	}
}

func (e BaseEvent) EventID() string       { return e.id }
func (e BaseEvent) EventType() string     { return e.eventType }
func (e BaseEvent) AggregateID() string   { return e.aggregateID }
func (e BaseEvent) AggregateType() string { return e.aggregateType }
func (e BaseEvent) OccurredAt() time.Time { return e.occurredAt }
