package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/pkg/events"
	pgutil "github.com/bibbank/creditrisk/pkg/postgres"
)

// txStore is the port.CustomerStore handed to WithinCustomer callbacks.
type txStore struct {
	q pgutil.Querier
}

func (s *txStore) SaveProfile(ctx context.Context, p *model.CustomerProfile) error {
	f := p.Features()
	tag, err := s.q.Exec(ctx, `
		UPDATE customer_profiles SET
			office = $2, credit_type = $3, guarantee = $4, sex = $5,
			n_operations = $6, n_active = $7, total_amount = $8, total_balance = $9,
			avg_term = $10, avg_rate = $11, technical_equity = $12,
			max_tenure_days = $13, days_to_last_maturity = $14, max_days_overdue = $15,
			category = $16, level = $17, is_high_risk = $18,
			last_probability = $19, last_prediction = $20,
			last_raw_probability = $21, last_raw_prediction = $22,
			last_scored_at = $23, last_scored_by = $24,
			updated_at = $25, version = version + 1
		WHERE customer_key = $1`,
		p.CustomerKey(), f.Office, f.CreditType, f.GuaranteeType, f.Sex,
		f.Operations, f.ActiveOperations, f.TotalAmount, f.TotalBalance,
		f.AvgTermMonths, f.AvgRate, f.TechnicalEquity,
		f.MaxTenureDays, f.DaysToLastMaturity, f.DaysOverdue,
		nullableCategory(p.Category()), nullableLevel(p.Level()), p.IsHighRisk(),
		p.LastProbability(), p.LastPrediction(), p.LastRawProbability(), p.LastRawPrediction(),
		p.LastScoredAt(), p.LastScoredBy(),
		p.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to update customer %s: %w", p.CustomerKey(), err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("customer %s disappeared during update", p.CustomerKey())
	}
	return nil
}

func (s *txStore) AppendTransition(ctx context.Context, t model.CategoryTransition) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO category_transitions (`+transitionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID(), t.CustomerKey(), nullableCategory(t.Before()), t.After().Storage(), t.Level().String(),
		t.DaysOverdue(), t.CreditType(), t.RawProbability(), t.FinalProbability(), t.RawPrediction(),
		t.CreatedAt(), t.CreatedBy(),
	)
	if err != nil {
		return insertErr("transition", t.ID(), err)
	}
	return nil
}

func (s *txStore) AppendEdit(ctx context.Context, e model.FieldEdit) error {
	before, err := json.Marshal(e.Before())
	if err != nil {
		return fmt.Errorf("failed to marshal before snapshot: %w", err)
	}
	after, err := json.Marshal(e.After())
	if err != nil {
		return fmt.Errorf("failed to marshal after snapshot: %w", err)
	}
	diff, err := json.Marshal(e.Diff())
	if err != nil {
		return fmt.Errorf("failed to marshal diff: %w", err)
	}

	_, err = s.q.Exec(ctx, `
		INSERT INTO field_edits (`+editColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID(), e.CustomerKey(), e.Action().String(), before, after, diff,
		e.ChangedBy(), e.Notes(), e.ChangedAt(),
	)
	if err != nil {
		return insertErr("field edit", e.ID(), err)
	}
	return nil
}

func (s *txStore) StoreEvents(ctx context.Context, evts ...events.DomainEvent) error {
	entries, err := events.NewOutboxEntries(evts...)
	if err != nil {
		return err
	}
	for _, e := range entries {
		_, err := s.q.Exec(ctx, `
			INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.AggregateID, e.AggregateType, e.EventType, e.Payload, e.CreatedAt,
		)
		if err != nil {
			return insertErr("outbox event", e.ID, err)
		}
	}
	return nil
}

func insertErr(what string, id any, err error) error {
	if pgutil.IsUniqueViolation(err) {
		return fmt.Errorf("failed to insert %s %v: %w", what, id, port.ErrDuplicateRecord)
	}
	return fmt.Errorf("failed to insert %s: %w", what, err)
}
