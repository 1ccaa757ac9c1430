package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// FieldEdit is an immutable record of a non-empty change to tracked fields.
type FieldEdit struct {
	changedAt   time.Time
	before      Snapshot
	after       Snapshot
	diff        Diff
	customerKey string
	changedBy   string
	notes       string
	action      valueobject.EditAction
	id          uuid.UUID
}

// NewFieldEdit diffs the tracked fields of before and after. It returns false
// and no record when nothing changed.
func NewFieldEdit(
	customerKey string,
	action valueobject.EditAction,
	before, after Snapshot,
	actor, notes string,
	at time.Time,
) (FieldEdit, bool) {
	before, after = before.Tracked(), after.Tracked()
	diff := DiffSnapshots(before, after)
	if diff.IsEmpty() {
		return FieldEdit{}, false
	}
	return FieldEdit{
		id:          uuid.New(),
		customerKey: customerKey,
		action:      action,
		before:      before,
		after:       after,
		diff:        diff,
		changedBy:   actor,
		notes:       notes,
		changedAt:   at.UTC(),
	}, true
}

// ReconstructFieldEdit rebuilds an edit from storage.
func ReconstructFieldEdit(
	id uuid.UUID,
	customerKey string,
	action valueobject.EditAction,
	before, after Snapshot,
	diff Diff,
	changedBy, notes string,
	changedAt time.Time,
) FieldEdit {
	return FieldEdit{
		id:          id,
		customerKey: customerKey,
		action:      action,
		before:      before,
		after:       after,
		diff:        diff,
		changedBy:   changedBy,
		notes:       notes,
		changedAt:   changedAt,
	}
}

func (e FieldEdit) ID() uuid.UUID                  { return e.id }
func (e FieldEdit) CustomerKey() string            { return e.customerKey }
func (e FieldEdit) Action() valueobject.EditAction { return e.action }
func (e FieldEdit) Before() Snapshot               { return e.before }
func (e FieldEdit) After() Snapshot                { return e.after }
func (e FieldEdit) Diff() Diff                     { return e.diff }
func (e FieldEdit) ChangedBy() string              { return e.changedBy }
func (e FieldEdit) Notes() string                  { return e.notes }
func (e FieldEdit) ChangedAt() time.Time           { return e.changedAt }
