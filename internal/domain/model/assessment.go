package model

import "github.com/bibbank/creditrisk/internal/domain/valueobject"

// RiskAssessment is the outcome of one scoring run as applied to a profile.
type RiskAssessment struct {
	Category         valueobject.Category
	Level            valueobject.RiskLevel
	CreditType       string
	DaysOverdue      int
	RawProbability   float64
	FinalProbability float64
	RawPrediction    bool
	FinalPrediction  bool
	IsHighRisk       bool
	// RuleOnly marks a reclassification with no model score behind it. The
	// raw values are then unknown and ignored.
	RuleOnly bool
}
