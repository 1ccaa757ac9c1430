package service

import (
	"strings"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

var categoryFloors = map[valueobject.Category]float64{
	valueobject.CategoryA1: 0.00,
	valueobject.CategoryA2: 0.05,
	valueobject.CategoryA3: 0.10,
	valueobject.CategoryB1: 0.25,
	valueobject.CategoryB2: 0.35,
	valueobject.CategoryC1: 0.60,
	valueobject.CategoryC2: 0.75,
	valueobject.CategoryD:  0.90,
	valueobject.CategoryE:  1.00,
}

// Floor returns the minimum probability allowed for a display category code.
// Codes are matched case-insensitively; unknown codes have a floor of 0.
func Floor(displayCode string) float64 {
	c, ok := parseDisplay(displayCode)
	if !ok {
		return 0
	}
	return categoryFloors[c]
}

// AdjustProbability raises raw to the category floor. The model may push risk
// above the floor but never below it.
func AdjustProbability(raw float64, displayCode string) float64 {
	floor := Floor(displayCode)
	if raw < floor {
		return floor
	}
	return raw
}

// Decide derives the advisory disposition. Category wins over probability:
// D and E are rejected, C-1 and C-2 go to review, and only the remaining
// buckets are decided by finalProbability against approvalThreshold.
func Decide(displayCode string, finalProbability, approvalThreshold float64) valueobject.Disposition {
	if c, ok := parseDisplay(displayCode); ok {
		switch {
		case c.Worse(valueobject.CategoryC2):
			return valueobject.DispositionReject
		case c.IsHighRisk():
			return valueobject.DispositionReview
		}
	}
	if finalProbability < approvalThreshold {
		return valueobject.DispositionApprovable
	}
	return valueobject.DispositionReview
}

func parseDisplay(code string) (valueobject.Category, bool) {
	c, err := valueobject.CategoryFromDisplay(strings.ToUpper(strings.TrimSpace(code)))
	return c, err == nil
}
