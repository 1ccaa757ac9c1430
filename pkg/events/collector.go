package events

// EventCollector is embedded in aggregates to collect domain events during state transitions.
type EventCollector struct {
	events []DomainEvent
}

// Record appends a domain event to the collector.
func (c *EventCollector) Record(event DomainEvent) {
	c.events = append(c.events, event)
}

// Events returns the collected events without clearing them.
func (c *EventCollector) Events() []DomainEvent {
	return c.events
}

// ClearEvents returns the collected events and resets the collector.
func (c *EventCollector) ClearEvents() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}

// Pending reports how many events are waiting to be drained.
func (c *EventCollector) Pending() int {
	return len(c.events)
}
