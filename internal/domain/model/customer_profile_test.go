package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

func intPtr(v int) *int { return &v }

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleFeatures() model.Features {
	return model.Features{
		Operations:       intPtr(3),
		ActiveOperations: intPtr(1),
		TotalAmount:      decimal.NewNullDecimal(decimal.RequireFromString("15000.50")),
		CreditType:       "CONSUMO",
		Office:           "MATRIZ",
		DaysOverdue:      intPtr(50),
	}
}

func b2Assessment() model.RiskAssessment {
	return model.RiskAssessment{
		Category:         valueobject.CategoryB2,
		Level:            valueobject.LevelPotential,
		CreditType:       "CONSUMO",
		DaysOverdue:      50,
		RawProbability:   0.20,
		FinalProbability: 0.35,
	}
}

func TestNewCustomerProfile(t *testing.T) {
	t.Run("creates unscored active profile", func(t *testing.T) {
		p, err := model.NewCustomerProfile(" C-100 ", sampleFeatures(), "A1", t0)
		require.NoError(t, err)
		assert.Equal(t, "C-100", p.CustomerKey())
		assert.True(t, p.Category().IsZero())
		assert.True(t, p.Active())
		assert.Equal(t, 1, p.Version())
		assert.Nil(t, p.LastScoredAt())
		assert.Equal(t, "A1", p.ContrastRating())
	})

	t.Run("rejects empty key", func(t *testing.T) {
		_, err := model.NewCustomerProfile("  ", sampleFeatures(), "", t0)
		require.Error(t, err)
	})
}

func TestScoringInputExcludesClassificationInputs(t *testing.T) {
	p, err := model.NewCustomerProfile("C-1", sampleFeatures(), "E", t0)
	require.NoError(t, err)

	in := p.ScoringInput()
	assert.Equal(t, "CONSUMO", in.CreditType)
	require.NotNil(t, in.DaysOverdue)
	assert.Equal(t, 50, *in.DaysOverdue)

	assert.NotContains(t, in.Row, "max_days_overdue")
	assert.NotContains(t, in.Row, "days_overdue")
	for _, v := range in.Row {
		assert.NotEqual(t, "E", v, "contrast rating leaked into the model row")
	}
	assert.Equal(t, 3.0, in.Row[model.ColOperations])
	assert.Equal(t, 15000.5, in.Row[model.ColTotalAmount])
	assert.Equal(t, "MATRIZ", in.Row[model.ColOfficeMode])
	assert.Nil(t, in.Row[model.ColSexMode])
	assert.Nil(t, in.Row[model.ColAvgRate])
}

func TestApplyAssessment(t *testing.T) {
	p, err := model.NewCustomerProfile("C-1", sampleFeatures(), "", t0)
	require.NoError(t, err)

	at := p.ApplyAssessment(b2Assessment(), "analyst", t0.Add(time.Minute))

	assert.Equal(t, valueobject.CategoryB2, p.Category())
	assert.Equal(t, valueobject.LevelPotential, p.Level())
	assert.False(t, p.IsHighRisk())
	require.NotNil(t, p.LastProbability())
	assert.Equal(t, 0.35, *p.LastProbability())
	require.NotNil(t, p.LastPrediction())
	assert.False(t, *p.LastPrediction())
	require.NotNil(t, p.LastRawProbability())
	assert.Equal(t, 0.20, *p.LastRawProbability())
	assert.Equal(t, "analyst", p.LastScoredBy())
	assert.Equal(t, at, *p.LastScoredAt())

	evts := p.DomainEvents()
	require.Len(t, evts, 1)
	changed, ok := evts[0].(event.CategoryChanged)
	require.True(t, ok)
	assert.Equal(t, "", changed.From)
	assert.Equal(t, "B2", changed.To)
	assert.Empty(t, p.DomainEvents())
}

func TestApplyAssessmentSameCategoryRaisesNothing(t *testing.T) {
	p, _ := model.NewCustomerProfile("C-1", sampleFeatures(), "", t0)
	p.ApplyAssessment(b2Assessment(), "a", t0)
	p.DomainEvents()

	p.ApplyAssessment(b2Assessment(), "b", t0.Add(time.Hour))
	assert.Empty(t, p.DomainEvents())
	assert.Equal(t, t0.Add(time.Hour), *p.LastScoredAt())
}

func TestApplyAssessmentStampIsMonotonic(t *testing.T) {
	p, _ := model.NewCustomerProfile("C-1", sampleFeatures(), "", t0)
	first := p.ApplyAssessment(b2Assessment(), "a", t0.Add(time.Hour))
	second := p.ApplyAssessment(b2Assessment(), "a", t0)

	assert.False(t, second.Before(first))
	assert.Equal(t, first, *p.LastScoredAt())
}

func TestHighRiskDetectedOnlyWhenCrossing(t *testing.T) {
	p, _ := model.NewCustomerProfile("C-1", sampleFeatures(), "", t0)

	p.ApplyClassification(valueobject.CategoryC1, valueobject.LevelDeficient, "sys", t0)
	evts := p.DomainEvents()
	require.Len(t, evts, 2)
	assert.Equal(t, event.EventTypeCategoryChanged, evts[0].EventType())
	assert.Equal(t, event.EventTypeHighRiskDetected, evts[1].EventType())
	assert.True(t, p.IsHighRisk())

	p.ApplyClassification(valueobject.CategoryD, valueobject.LevelDoubtful, "sys", t0)
	evts = p.DomainEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, event.EventTypeCategoryChanged, evts[0].EventType())
}

func TestApplyClassificationKeepsLastScore(t *testing.T) {
	p, _ := model.NewCustomerProfile("C-1", sampleFeatures(), "", t0)
	p.ApplyAssessment(b2Assessment(), "a", t0)

	p.ApplyClassification(valueobject.CategoryA1, valueobject.LevelNormal, "system-backfill", t0)
	assert.Equal(t, valueobject.CategoryA1, p.Category())
	assert.Equal(t, 0.35, *p.LastProbability())
	assert.Equal(t, 0.20, *p.LastRawProbability())
	assert.Equal(t, "a", p.LastScoredBy())
}

func TestApplyPatch(t *testing.T) {
	p, _ := model.NewCustomerProfile("C-1", sampleFeatures(), "", t0)

	assert.False(t, p.ApplyPatch(model.FeaturePatch{}, t0))

	credit := " VIVIENDA "
	amount := decimal.NewFromInt(99)
	changed := p.ApplyPatch(model.FeaturePatch{CreditType: &credit, TotalAmount: &amount, DaysOverdue: intPtr(200)}, t0)
	require.True(t, changed)

	f := p.Features()
	assert.Equal(t, "VIVIENDA", f.CreditType)
	assert.True(t, f.TotalAmount.Decimal.Equal(amount))
	assert.Equal(t, 200, *f.DaysOverdue)
	assert.Equal(t, "MATRIZ", f.Office)
}

func TestSnapshot(t *testing.T) {
	p, _ := model.NewCustomerProfile("C-1", sampleFeatures(), "", t0)
	s := p.Snapshot()

	for _, field := range model.TrackedFields() {
		assert.Contains(t, s, field)
	}
	assert.Len(t, s, len(model.TrackedFields()))
	assert.Equal(t, 15000.5, s[model.FieldTotalAmount])
	assert.Equal(t, 0.0, s[model.FieldTotalBalance])
	assert.Equal(t, 0.0, s[model.FieldAvgRate])
	assert.Nil(t, s[model.FieldMaxTenureDays])
	assert.Nil(t, s[model.FieldCategory])
	assert.Nil(t, s[model.FieldLastProbability])

	p.ApplyAssessment(b2Assessment(), "a", t0)
	s = p.Snapshot()
	assert.Equal(t, "B2", s[model.FieldCategory])
	assert.Equal(t, "Potential", s[model.FieldLevel])
	assert.Equal(t, 0.35, s[model.FieldLastProbability])
	assert.Equal(t, t0.Format(time.RFC3339Nano), s[model.FieldLastScoredAt])
}
