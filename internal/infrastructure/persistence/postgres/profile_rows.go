package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

const profileColumns = `
	customer_key, office, credit_type, guarantee, sex,
	n_operations, n_active, total_amount, total_balance, avg_term, avg_rate,
	technical_equity, max_tenure_days, days_to_last_maturity, max_days_overdue,
	contrast_rating, category, level, is_high_risk,
	last_probability, last_prediction, last_raw_probability, last_raw_prediction,
	last_scored_at, last_scored_by, active, version, created_at, updated_at`

func scanProfile(row pgx.Row) (*model.CustomerProfile, error) {
	var (
		key             string
		f               model.Features
		contrast        string
		category        *string
		level           *string
		isHighRisk      bool
		lastProb        *float64
		lastPred        *bool
		lastRawProb     *float64
		lastRawPred     *bool
		lastScoredAt    *time.Time
		lastScoredBy    string
		active          bool
		version         int
		createdAt       time.Time
		updatedAt       time.Time
		totalAmount     decimal.NullDecimal
		totalBalance    decimal.NullDecimal
		technicalEquity decimal.NullDecimal
	)

	err := row.Scan(
		&key, &f.Office, &f.CreditType, &f.GuaranteeType, &f.Sex,
		&f.Operations, &f.ActiveOperations, &totalAmount, &totalBalance, &f.AvgTermMonths, &f.AvgRate,
		&technicalEquity, &f.MaxTenureDays, &f.DaysToLastMaturity, &f.DaysOverdue,
		&contrast, &category, &level, &isHighRisk,
		&lastProb, &lastPred, &lastRawProb, &lastRawPred,
		&lastScoredAt, &lastScoredBy, &active, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.TotalAmount = totalAmount
	f.TotalBalance = totalBalance
	f.TechnicalEquity = technicalEquity

	state := model.ProfileState{
		IsHighRisk:         isHighRisk,
		LastProbability:    lastProb,
		LastPrediction:     lastPred,
		LastRawProbability: lastRawProb,
		LastRawPrediction:  lastRawPred,
		LastScoredAt:       utcPtr(lastScoredAt),
		LastScoredBy:       lastScoredBy,
	}
	if category != nil {
		c, err := valueobject.CategoryFromStorage(*category)
		if err != nil {
			return nil, fmt.Errorf("customer %s: %w", key, err)
		}
		state.Category = c
	}
	if level != nil {
		l, err := valueobject.RiskLevelFromString(*level)
		if err != nil {
			return nil, fmt.Errorf("customer %s: %w", key, err)
		}
		state.Level = l
	}

	return model.ReconstructCustomerProfile(
		key, f, contrast, state, active, version, createdAt.UTC(), updatedAt.UTC(),
	), nil
}

// profileArgs returns the values for profileColumns in order.
func profileArgs(p *model.CustomerProfile) []any {
	f := p.Features()
	return []any{
		p.CustomerKey(), f.Office, f.CreditType, f.GuaranteeType, f.Sex,
		f.Operations, f.ActiveOperations, f.TotalAmount, f.TotalBalance, f.AvgTermMonths, f.AvgRate,
		f.TechnicalEquity, f.MaxTenureDays, f.DaysToLastMaturity, f.DaysOverdue,
		p.ContrastRating(), nullableCategory(p.Category()), nullableLevel(p.Level()), p.IsHighRisk(),
		p.LastProbability(), p.LastPrediction(), p.LastRawProbability(), p.LastRawPrediction(),
		p.LastScoredAt(), p.LastScoredBy(), p.Active(), p.Version(), p.CreatedAt(), p.UpdatedAt(),
	}
}

func nullableCategory(c valueobject.Category) *string {
	if c.IsZero() {
		return nil
	}
	s := c.Storage()
	return &s
}

func nullableLevel(l valueobject.RiskLevel) *string {
	if l.IsZero() {
		return nil
	}
	s := l.String()
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
