package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
	"github.com/bibbank/creditrisk/pkg/events"
)

// CustomerProfile is the current risk projection of one customer. It is
// overwritten in place; its history lives in CategoryTransition and
// FieldEdit records.
type CustomerProfile struct {
	createdAt       time.Time
	updatedAt       time.Time
	lastScoredAt    *time.Time
	lastProbability *float64
	lastPrediction  *bool
	lastRawProb     *float64
	lastRawPred     *bool
	customerKey     string
	contrastRating  string
	lastScoredBy    string
	category        valueobject.Category
	level           valueobject.RiskLevel
	features        Features
	collector       events.EventCollector
	version         int
	isHighRisk      bool
	active          bool
}

// NewCustomerProfile creates an unscored, active profile.
func NewCustomerProfile(customerKey string, features Features, contrastRating string, now time.Time) (*CustomerProfile, error) {
	customerKey = strings.TrimSpace(customerKey)
	if customerKey == "" {
		return nil, fmt.Errorf("customer key is required")
	}
	now = now.UTC()
	return &CustomerProfile{
		customerKey:    customerKey,
		features:       features,
		contrastRating: contrastRating,
		active:         true,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ProfileState is the persisted derived state of a profile.
type ProfileState struct {
	LastScoredAt       *time.Time
	LastProbability    *float64
	LastPrediction     *bool
	LastRawProbability *float64
	LastRawPrediction  *bool
	LastScoredBy       string
	Category        valueobject.Category
	Level           valueobject.RiskLevel
	IsHighRisk      bool
}

// ReconstructCustomerProfile rebuilds a profile from storage (no validation, no events).
func ReconstructCustomerProfile(
	customerKey string,
	features Features,
	contrastRating string,
	state ProfileState,
	active bool,
	version int,
	createdAt, updatedAt time.Time,
) *CustomerProfile {
	return &CustomerProfile{
		customerKey:     customerKey,
		features:        features,
		contrastRating:  contrastRating,
		category:        state.Category,
		level:           state.Level,
		isHighRisk:      state.IsHighRisk,
		lastProbability: state.LastProbability,
		lastPrediction:  state.LastPrediction,
		lastRawProb:     state.LastRawProbability,
		lastRawPred:     state.LastRawPrediction,
		lastScoredAt:    state.LastScoredAt,
		lastScoredBy:    state.LastScoredBy,
		active:          active,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ScoringInput returns the model row and the classification inputs.
func (p *CustomerProfile) ScoringInput() ScoringInput {
	return ScoringInput{
		Row:         p.features.Row(),
		CreditType:  p.features.CreditType,
		DaysOverdue: p.features.DaysOverdue,
	}
}

// ApplyAssessment overwrites the derived state with a scoring outcome. The
// final probability and prediction become the stored last values; the raw
// model output is kept beside them. The scored-at stamp never moves
// backwards for a customer.
func (p *CustomerProfile) ApplyAssessment(a RiskAssessment, actor string, now time.Time) time.Time {
	scoredAt := p.nextStamp(now)
	previous := p.category

	p.category = a.Category
	p.level = a.Level
	p.isHighRisk = a.IsHighRisk
	prob, pred := a.FinalProbability, a.FinalPrediction
	p.lastProbability = &prob
	p.lastPrediction = &pred
	if a.RuleOnly {
		p.lastRawProb, p.lastRawPred = nil, nil
	} else {
		rawProb, rawPred := a.RawProbability, a.RawPrediction
		p.lastRawProb, p.lastRawPred = &rawProb, &rawPred
	}
	p.lastScoredAt = &scoredAt
	p.lastScoredBy = actor
	p.updatedAt = scoredAt

	p.recordCategoryChange(previous, actor, scoredAt)
	return scoredAt
}

// ApplyClassification overwrites only the rule-derived fields, leaving the
// last scoring values alone.
func (p *CustomerProfile) ApplyClassification(category valueobject.Category, level valueobject.RiskLevel, actor string, now time.Time) {
	at := p.nextStamp(now)
	previous := p.category

	p.category = category
	p.level = level
	p.isHighRisk = category.IsHighRisk()
	p.updatedAt = at

	p.recordCategoryChange(previous, actor, at)
}

// ApplyPatch updates features. It reports whether anything was patched.
func (p *CustomerProfile) ApplyPatch(patch FeaturePatch, now time.Time) bool {
	if patch.IsEmpty() {
		return false
	}
	p.features = patch.Apply(p.features)
	p.updatedAt = p.nextStamp(now)
	return true
}

// Snapshot captures the tracked fields. Monetary amounts and averages are
// flattened to numbers with absent values as 0; counts stay nullable.
func (p *CustomerProfile) Snapshot() Snapshot {
	f := p.features
	s := Snapshot{
		FieldOffice:             f.Office,
		FieldCreditType:         f.CreditType,
		FieldGuarantee:          f.GuaranteeType,
		FieldSex:                f.Sex,
		FieldOperations:         normalize(f.Operations),
		FieldActiveOperations:   normalize(f.ActiveOperations),
		FieldTotalAmount:        zeroIfNull(decimalValue(f.TotalAmount)),
		FieldTotalBalance:       zeroIfNull(decimalValue(f.TotalBalance)),
		FieldAvgTerm:            zeroIfNull(floatValue(f.AvgTermMonths)),
		FieldAvgRate:            zeroIfNull(floatValue(f.AvgRate)),
		FieldTechnicalEquity:    zeroIfNull(decimalValue(f.TechnicalEquity)),
		FieldMaxTenureDays:      normalize(f.MaxTenureDays),
		FieldDaysToLastMaturity: normalize(f.DaysToLastMaturity),
		FieldDaysOverdue:        normalize(f.DaysOverdue),
		FieldIsHighRisk:         p.isHighRisk,
		FieldCategory:           nil,
		FieldLevel:              nil,
		FieldLastProbability:    normalize(p.lastProbability),
		FieldLastPrediction:     normalize(p.lastPrediction),
		FieldLastScoredAt:       normalize(p.lastScoredAt),
		FieldLastScoredBy:       p.lastScoredBy,
	}
	if !p.category.IsZero() {
		s[FieldCategory] = p.category.Storage()
		s[FieldLevel] = p.level.String()
	}
	return s
}

// DomainEvents returns all accumulated domain events and clears them.
func (p *CustomerProfile) DomainEvents() []events.DomainEvent {
	return p.collector.ClearEvents()
}

func (p *CustomerProfile) recordCategoryChange(previous valueobject.Category, actor string, at time.Time) {
	if previous.Equal(p.category) {
		return
	}
	from := ""
	if !previous.IsZero() {
		from = previous.Storage()
	}
	p.collector.Record(event.NewCategoryChanged(
		p.customerKey, from, p.category.Storage(), p.level.String(), p.isHighRisk, actor, at,
	))
	if p.category.IsHighRisk() && !previous.IsHighRisk() {
		p.collector.Record(event.NewHighRiskDetected(
			p.customerKey, p.category.Storage(), p.level.String(), actor, at,
		))
	}
}

func (p *CustomerProfile) nextStamp(now time.Time) time.Time {
	now = now.UTC()
	if p.lastScoredAt != nil && now.Before(*p.lastScoredAt) {
		return *p.lastScoredAt
	}
	if now.Before(p.updatedAt) {
		return p.updatedAt
	}
	return now
}

func zeroIfNull(v any) any {
	if v == nil {
		return 0.0
	}
	return v
}

// --- Accessors ---

func (p *CustomerProfile) CustomerKey() string            { return p.customerKey }
func (p *CustomerProfile) Features() Features             { return p.features }
func (p *CustomerProfile) ContrastRating() string         { return p.contrastRating }
func (p *CustomerProfile) Category() valueobject.Category { return p.category }
func (p *CustomerProfile) Level() valueobject.RiskLevel   { return p.level }
func (p *CustomerProfile) IsHighRisk() bool               { return p.isHighRisk }
func (p *CustomerProfile) LastProbability() *float64      { return p.lastProbability }
func (p *CustomerProfile) LastPrediction() *bool          { return p.lastPrediction }
func (p *CustomerProfile) LastRawProbability() *float64   { return p.lastRawProb }
func (p *CustomerProfile) LastRawPrediction() *bool       { return p.lastRawPred }
func (p *CustomerProfile) LastScoredAt() *time.Time       { return p.lastScoredAt }
func (p *CustomerProfile) LastScoredBy() string           { return p.lastScoredBy }
func (p *CustomerProfile) Active() bool                   { return p.active }
func (p *CustomerProfile) Version() int                   { return p.version }
func (p *CustomerProfile) CreatedAt() time.Time           { return p.createdAt }
func (p *CustomerProfile) UpdatedAt() time.Time           { return p.updatedAt }

// State returns the derived fields as one value.
func (p *CustomerProfile) State() ProfileState {
	return ProfileState{
		Category:           p.category,
		Level:              p.level,
		IsHighRisk:         p.isHighRisk,
		LastProbability:    p.lastProbability,
		LastPrediction:     p.lastPrediction,
		LastRawProbability: p.lastRawProb,
		LastRawPrediction:  p.lastRawPred,
		LastScoredAt:       p.lastScoredAt,
		LastScoredBy:       p.lastScoredBy,
	}
}
