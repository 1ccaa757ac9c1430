package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	pgutil "github.com/bibbank/creditrisk/pkg/postgres"
)

// Store implements port.ProfileRepository, port.UnitOfWork and
// port.HistoryRepository.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL-backed store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// FindByKey loads one profile.
func (s *Store) FindByKey(ctx context.Context, customerKey string) (*model.CustomerProfile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM customer_profiles WHERE customer_key = $1`, customerKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to load customer %s: %w", customerKey, err)
	}
	return p, nil
}

// List returns up to limit profiles with keys after afterKey, in key order.
func (s *Store) List(ctx context.Context, afterKey string, limit int) ([]*model.CustomerProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM customer_profiles
		 WHERE customer_key > $1
		 ORDER BY customer_key
		 LIMIT $2`, afterKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var out []*model.CustomerProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return out, nil
}

// CreateIfAbsent inserts p unless the key exists. It reports whether a row
// was inserted.
func (s *Store) CreateIfAbsent(ctx context.Context, p *model.CustomerProfile) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO customer_profiles (`+profileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		         $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
		 ON CONFLICT (customer_key) DO NOTHING`, profileArgs(p)...)
	if err != nil {
		return false, fmt.Errorf("failed to create customer %s: %w", p.CustomerKey(), err)
	}
	return tag.RowsAffected() == 1, nil
}

// WithinCustomer locks the customer row and runs fn in one transaction.
// Everything fn writes through store commits together or not at all.
func (s *Store) WithinCustomer(
	ctx context.Context,
	customerKey string,
	fn func(ctx context.Context, store port.CustomerStore, profile *model.CustomerProfile) error,
) error {
	return pgutil.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		p, err := scanProfile(tx.QueryRow(ctx,
			`SELECT `+profileColumns+` FROM customer_profiles WHERE customer_key = $1 FOR UPDATE`, customerKey))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return port.ErrCustomerNotFound
			}
			return fmt.Errorf("failed to lock customer %s: %w", customerKey, err)
		}
		return fn(ctx, &txStore{q: tx}, p)
	})
}

// ListTransitions returns a customer's transitions, newest first.
func (s *Store) ListTransitions(ctx context.Context, customerKey string, limit, offset int) ([]model.CategoryTransition, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+transitionColumns+` FROM category_transitions
		 WHERE customer_key = $1
		 ORDER BY seq DESC
		 LIMIT $2 OFFSET $3`, customerKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	var out []model.CategoryTransition
	for rows.Next() {
		t, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transitions: %w", err)
	}
	return out, nil
}

// ListEdits returns a customer's field edits, newest first.
func (s *Store) ListEdits(ctx context.Context, customerKey string, limit, offset int) ([]model.FieldEdit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+editColumns+` FROM field_edits
		 WHERE customer_key = $1
		 ORDER BY seq DESC
		 LIMIT $2 OFFSET $3`, customerKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query field edits: %w", err)
	}
	defer rows.Close()

	var out []model.FieldEdit
	for rows.Next() {
		e, err := scanEdit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate field edits: %w", err)
	}
	return out, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return pgutil.HealthCheck(ctx, s.pool)
}
