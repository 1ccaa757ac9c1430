// Package messaging moves domain events to Kafka and feeds feature updates
// from Kafka into the application.
package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/bibbank/creditrisk/pkg/events"
	"github.com/bibbank/creditrisk/pkg/kafka"
)

// OutboxStore is the part of the outbox repository the relay needs.
type OutboxStore interface {
	ProcessBatch(ctx context.Context, limit int, publish func(ctx context.Context, entries []events.OutboxEntry) error) (int, error)
}

// Publisher writes messages to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, messages ...kafka.Message) error
}

// Header names set on every relayed event.
const (
	HeaderEventID       = "event_id"
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
)

// OutboxRelay polls the outbox and publishes pending events keyed by
// customer, so one customer's events keep their order on a partition.
type OutboxRelay struct {
	outbox    OutboxStore
	publisher Publisher
	logger    *slog.Logger
	topic     string
	interval  time.Duration
	batchSize int
}

// NewOutboxRelay creates a new OutboxRelay.
func NewOutboxRelay(outbox OutboxStore, publisher Publisher, topic string, interval time.Duration, batchSize int, logger *slog.Logger) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		topic:     topic,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run relays until ctx is canceled.
func (r *OutboxRelay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay starting", "topic", r.topic, "interval", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("outbox relay failed", "error", err)
		}

		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// Drain publishes batches until the outbox has no pending entries left and
// returns how many were published.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.outbox.ProcessBatch(ctx, r.batchSize, r.publish)
		total += n
		if err != nil {
			return total, err
		}
		if n < r.batchSize {
			return total, nil
		}
	}
}

func (r *OutboxRelay) publish(ctx context.Context, entries []events.OutboxEntry) error {
	msgs := make([]kafka.Message, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.AggregateID),
			Value: e.Payload,
			Headers: map[string]string{
				HeaderEventID:       e.ID,
				HeaderEventType:     e.EventType,
				HeaderAggregateType: e.AggregateType,
			},
		})
	}
	if err := r.publisher.Publish(ctx, r.topic, msgs...); err != nil {
		return err
	}
	r.logger.Debug("outbox events published", slog.Int("count", len(msgs)), slog.String("topic", r.topic))
	return nil
}
