package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

func days(d int) *int { return &d }

func TestClassify_NonPositiveDaysAreNormal(t *testing.T) {
	for _, creditType := range []string{"CONSUMO", "MICROCREDITO", "VIVIENDA", "INMOBILIARIO"} {
		for _, d := range []*int{nil, days(0), days(-1), days(-365)} {
			got := Classify(creditType, d)
			assert.Equal(t, valueobject.CategoryA1, got.Category, creditType)
			assert.Equal(t, valueobject.LevelNormal, got.Level, creditType)
		}
	}
}

func TestClassify_ConsumerMicroBoundaries(t *testing.T) {
	tests := []struct {
		days     int
		category valueobject.Category
		level    valueobject.RiskLevel
	}{
		{1, valueobject.CategoryA2, valueobject.LevelNormal},
		{15, valueobject.CategoryA2, valueobject.LevelNormal},
		{16, valueobject.CategoryA3, valueobject.LevelNormal},
		{30, valueobject.CategoryA3, valueobject.LevelNormal},
		{31, valueobject.CategoryB1, valueobject.LevelPotential},
		{45, valueobject.CategoryB1, valueobject.LevelPotential},
		{46, valueobject.CategoryB2, valueobject.LevelPotential},
		{60, valueobject.CategoryB2, valueobject.LevelPotential},
		{61, valueobject.CategoryC1, valueobject.LevelDeficient},
		{75, valueobject.CategoryC1, valueobject.LevelDeficient},
		{76, valueobject.CategoryC2, valueobject.LevelDeficient},
		{90, valueobject.CategoryC2, valueobject.LevelDeficient},
		{91, valueobject.CategoryD, valueobject.LevelDoubtful},
		{120, valueobject.CategoryD, valueobject.LevelDoubtful},
		{121, valueobject.CategoryE, valueobject.LevelLoss},
		{10000, valueobject.CategoryE, valueobject.LevelLoss},
	}

	for _, tt := range tests {
		got := Classify("CONSUMO", days(tt.days))
		assert.Equal(t, tt.category, got.Category, "days=%d", tt.days)
		assert.Equal(t, tt.level, got.Level, "days=%d", tt.days)
		assert.Equal(t, valueobject.FamilyConsumerMicro, got.Family)
	}
}

func TestClassify_HousingBoundaries(t *testing.T) {
	tests := []struct {
		days     int
		category valueobject.Category
	}{
		{1, valueobject.CategoryA2},
		{30, valueobject.CategoryA2},
		{31, valueobject.CategoryA3},
		{60, valueobject.CategoryA3},
		{61, valueobject.CategoryB1},
		{120, valueobject.CategoryB1},
		{121, valueobject.CategoryB2},
		{180, valueobject.CategoryB2},
		{181, valueobject.CategoryC1},
		{210, valueobject.CategoryC1},
		{211, valueobject.CategoryC2},
		{270, valueobject.CategoryC2},
		{271, valueobject.CategoryD},
		{450, valueobject.CategoryD},
		{451, valueobject.CategoryE},
	}

	for _, tt := range tests {
		got := Classify("VIVIENDA", days(tt.days))
		assert.Equal(t, tt.category, got.Category, "days=%d", tt.days)
		assert.Equal(t, valueobject.FamilyHousing, got.Family)
	}
}

func TestClassify_NamedBoundaries(t *testing.T) {
	assert.Equal(t, Classification{valueobject.CategoryA3, valueobject.LevelNormal, valueobject.FamilyConsumerMicro}, Classify("CONSUMO", days(30)))
	assert.Equal(t, Classification{valueobject.CategoryB1, valueobject.LevelPotential, valueobject.FamilyConsumerMicro}, Classify("CONSUMO", days(31)))
	assert.Equal(t, Classification{valueobject.CategoryD, valueobject.LevelDoubtful, valueobject.FamilyHousing}, Classify("VIVIENDA", days(450)))
	assert.Equal(t, Classification{valueobject.CategoryE, valueobject.LevelLoss, valueobject.FamilyHousing}, Classify("VIVIENDA", days(451)))
}

func TestClassify_IsTotal(t *testing.T) {
	for _, creditType := range []string{"", "???", "vivienda de interes social", "Consumo Prioritario"} {
		for d := -10; d <= 600; d++ {
			got := Classify(creditType, days(d))
			assert.False(t, got.Category.IsZero())
			assert.False(t, got.Level.IsZero())
		}
	}
}

func TestParseDaysOverdue(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"42", 42},
		{" 17 ", 17},
		{"-3", -3},
		{"12.9", 12},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e30", math.MaxInt32},
		{"99999999999", math.MaxInt32},
		{"-99999999999", math.MinInt32},
		{"99999999999999999999", math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDaysOverdue(tt.in))
		})
	}
}
