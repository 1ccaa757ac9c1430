package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// CategoryTransition is an immutable record of a category change. A zero
// before category marks the first classification of the customer. The raw
// model values are nil when no model score exists for the customer.
type CategoryTransition struct {
	createdAt        time.Time
	customerKey      string
	creditType       string
	createdBy        string
	before           valueobject.Category
	after            valueobject.Category
	level            valueobject.RiskLevel
	rawProbability   *float64
	rawPrediction    *bool
	daysOverdue      int
	finalProbability float64
	id               uuid.UUID
}

// NewCategoryTransition records the move from before to the assessed
// category. It fails when the category did not change.
func NewCategoryTransition(customerKey string, before valueobject.Category, a RiskAssessment, actor string, at time.Time) (CategoryTransition, error) {
	if customerKey == "" {
		return CategoryTransition{}, fmt.Errorf("customer key is required")
	}
	if a.Category.IsZero() {
		return CategoryTransition{}, fmt.Errorf("category after is required")
	}
	if before.Equal(a.Category) {
		return CategoryTransition{}, fmt.Errorf("category unchanged: %s", before)
	}
	t := CategoryTransition{
		id:               uuid.New(),
		customerKey:      customerKey,
		before:           before,
		after:            a.Category,
		level:            a.Level,
		daysOverdue:      a.DaysOverdue,
		creditType:       a.CreditType,
		finalProbability: a.FinalProbability,
		createdAt:        at.UTC(),
		createdBy:        actor,
	}
	if !a.RuleOnly {
		raw, pred := a.RawProbability, a.RawPrediction
		t.rawProbability, t.rawPrediction = &raw, &pred
	}
	return t, nil
}

// ReconstructCategoryTransition rebuilds a transition from storage.
func ReconstructCategoryTransition(
	id uuid.UUID,
	customerKey string,
	before, after valueobject.Category,
	level valueobject.RiskLevel,
	daysOverdue int,
	creditType string,
	rawProbability *float64,
	finalProbability float64,
	rawPrediction *bool,
	createdAt time.Time,
	createdBy string,
) CategoryTransition {
	return CategoryTransition{
		id:               id,
		customerKey:      customerKey,
		before:           before,
		after:            after,
		level:            level,
		daysOverdue:      daysOverdue,
		creditType:       creditType,
		rawProbability:   rawProbability,
		finalProbability: finalProbability,
		rawPrediction:    rawPrediction,
		createdAt:        createdAt,
		createdBy:        createdBy,
	}
}

func (t CategoryTransition) ID() uuid.UUID                { return t.id }
func (t CategoryTransition) CustomerKey() string          { return t.customerKey }
func (t CategoryTransition) Before() valueobject.Category { return t.before }
func (t CategoryTransition) After() valueobject.Category  { return t.after }
func (t CategoryTransition) Level() valueobject.RiskLevel { return t.level }
func (t CategoryTransition) DaysOverdue() int             { return t.daysOverdue }
func (t CategoryTransition) CreditType() string           { return t.creditType }
func (t CategoryTransition) RawProbability() *float64     { return t.rawProbability }
func (t CategoryTransition) FinalProbability() float64    { return t.finalProbability }
func (t CategoryTransition) RawPrediction() *bool         { return t.rawPrediction }
func (t CategoryTransition) CreatedAt() time.Time         { return t.createdAt }
func (t CategoryTransition) CreatedBy() string            { return t.createdBy }
