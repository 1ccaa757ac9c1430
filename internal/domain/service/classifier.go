package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// Classification is the regulatory bucket for a credit type and delinquency.
type Classification struct {
	Category valueobject.Category
	Level    valueobject.RiskLevel
	Family   valueobject.CreditFamily
}

type bucket struct {
	category valueobject.Category
	maxDays  int
}

// Upper bounds are inclusive; anything past the last bound is E.
var (
	consumerMicroBuckets = []bucket{
		{valueobject.CategoryA1, 0},
		{valueobject.CategoryA2, 15},
		{valueobject.CategoryA3, 30},
		{valueobject.CategoryB1, 45},
		{valueobject.CategoryB2, 60},
		{valueobject.CategoryC1, 75},
		{valueobject.CategoryC2, 90},
		{valueobject.CategoryD, 120},
	}
	housingBuckets = []bucket{
		{valueobject.CategoryA1, 0},
		{valueobject.CategoryA2, 30},
		{valueobject.CategoryA3, 60},
		{valueobject.CategoryB1, 120},
		{valueobject.CategoryB2, 180},
		{valueobject.CategoryC1, 210},
		{valueobject.CategoryC2, 270},
		{valueobject.CategoryD, 450},
	}
)

// Classify maps a credit type and days overdue to a category and level. It is
// total: a nil or negative day count lands in A-1.
func Classify(creditType string, daysOverdue *int) Classification {
	days := 0
	if daysOverdue != nil {
		days = *daysOverdue
	}

	family := valueobject.FamilyFromCreditType(creditType)
	table := consumerMicroBuckets
	if family.IsHousing() {
		table = housingBuckets
	}

	category := valueobject.CategoryE
	for _, b := range table {
		if days <= b.maxDays {
			category = b.category
			break
		}
	}

	return Classification{
		Category: category,
		Level:    category.Level(),
		Family:   family,
	}
}

// ParseDaysOverdue coerces free-text day counts. Blank or unparseable input
// yields 0; decimal input is truncated. Results are clamped to the int32
// range so out-of-range counts still land in the worst bucket.
func ParseDaysOverdue(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return clampDays(float64(n))
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return clampDays(f)
	}
	return 0
}

func clampDays(f float64) int {
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
