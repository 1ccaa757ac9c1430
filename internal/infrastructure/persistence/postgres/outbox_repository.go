package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/creditrisk/pkg/events"
	pgutil "github.com/bibbank/creditrisk/pkg/postgres"
)

// OutboxRepository claims unpublished outbox rows for the relay.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// ProcessBatch locks up to limit unpublished entries in insertion order and
// passes them to publish. When publish succeeds the entries are marked
// published in the same transaction; otherwise they stay pending. Rows
// locked by another relay are skipped. It returns the number published.
func (r *OutboxRepository) ProcessBatch(
	ctx context.Context,
	limit int,
	publish func(ctx context.Context, entries []events.OutboxEntry) error,
) (int, error) {
	var n int
	err := pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at
			FROM outbox_events
			WHERE published_at IS NULL
			ORDER BY seq
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, limit)
		if err != nil {
			return fmt.Errorf("failed to claim outbox events: %w", err)
		}
		entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.OutboxEntry, error) {
			var e events.OutboxEntry
			err := row.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Payload, &e.CreatedAt)
			return e, err
		})
		if err != nil {
			return fmt.Errorf("failed to scan outbox events: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}

		if err := publish(ctx, entries); err != nil {
			return err
		}

		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		if _, err := tx.Exec(ctx,
			`UPDATE outbox_events SET published_at = $2 WHERE id = ANY($1::uuid[])`,
			ids, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to mark outbox events published: %w", err)
		}
		n = len(entries)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Pending counts unpublished entries.
func (r *OutboxRepository) Pending(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM outbox_events WHERE published_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count outbox events: %w", err)
	}
	return n, nil
}
