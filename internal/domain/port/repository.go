package port

import (
	"context"
	"errors"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/pkg/events"
)

// ErrCustomerNotFound is returned when no profile exists for a customer key.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrDuplicateRecord is returned when an append-only record id is written twice.
var ErrDuplicateRecord = errors.New("duplicate record")

// ProfileRepository reads current customer state.
type ProfileRepository interface {
	// FindByKey retrieves a profile by customer key.
	FindByKey(ctx context.Context, customerKey string) (*model.CustomerProfile, error)

	// List returns up to limit profiles with keys greater than afterKey, in key order.
	List(ctx context.Context, afterKey string, limit int) ([]*model.CustomerProfile, error)

	// CreateIfAbsent inserts a new profile. It reports false when the key already exists.
	CreateIfAbsent(ctx context.Context, profile *model.CustomerProfile) (bool, error)
}

// CustomerStore is the write side available inside a customer transaction.
type CustomerStore interface {
	// SaveProfile overwrites the current state of the profile.
	SaveProfile(ctx context.Context, profile *model.CustomerProfile) error

	// AppendTransition adds a record to the category transition ledger.
	AppendTransition(ctx context.Context, transition model.CategoryTransition) error

	// AppendEdit adds a record to the field edit ledger.
	AppendEdit(ctx context.Context, edit model.FieldEdit) error

	// StoreEvents writes domain events to the outbox.
	StoreEvents(ctx context.Context, evts ...events.DomainEvent) error
}

// UnitOfWork serializes writes per customer.
type UnitOfWork interface {
	// WithinCustomer locks the customer's profile and runs fn in one
	// transaction. Everything fn writes through store commits or rolls back
	// together. Returns ErrCustomerNotFound when the key does not exist.
	WithinCustomer(ctx context.Context, customerKey string, fn func(ctx context.Context, store CustomerStore, profile *model.CustomerProfile) error) error
}

// HistoryRepository reads the two ledgers, newest first.
type HistoryRepository interface {
	ListTransitions(ctx context.Context, customerKey string, limit, offset int) ([]model.CategoryTransition, error)
	ListEdits(ctx context.Context, customerKey string, limit, offset int) ([]model.FieldEdit, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
