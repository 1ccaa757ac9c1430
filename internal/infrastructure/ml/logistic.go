package ml

import (
	"fmt"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// NumericTerm is one standardized numeric input. Missing values are
// replaced by Impute before scaling.
type NumericTerm struct {
	Column      string  `json:"column"`
	Coefficient float64 `json:"coefficient"`
	Impute      float64 `json:"impute"`
	Mean        float64 `json:"mean"`
	Scale       float64 `json:"scale"`
}

// CategoricalTerm is a one-hot encoded input. Levels not in Weights,
// including a missing value, contribute nothing.
type CategoricalTerm struct {
	Weights map[string]float64 `json:"weights"`
	Column  string             `json:"column"`
}

// LogisticModel is a fitted logistic regression over imputed and scaled
// numeric columns plus one-hot categorical columns.
type LogisticModel struct {
	Numeric     []NumericTerm     `json:"numeric"`
	Categorical []CategoricalTerm `json:"categorical"`
	Intercept   float64           `json:"intercept"`
}

// PredictProba implements Model.
func (m *LogisticModel) PredictProba(row model.FeatureRow) (float64, error) {
	z := m.Intercept
	for _, t := range m.Numeric {
		x, ok, err := numericValue(row, t.Column)
		if err != nil {
			return 0, err
		}
		if !ok {
			x = t.Impute
		}
		scale := t.Scale
		if scale == 0 {
			scale = 1
		}
		z += t.Coefficient * (x - t.Mean) / scale
	}
	for _, t := range m.Categorical {
		if level, ok := categoricalValue(row, t.Column); ok {
			z += t.Weights[level]
		}
	}
	return sigmoid(z), nil
}

// Columns implements Model.
func (m *LogisticModel) Columns() []string {
	cols := make([]string, 0, len(m.Numeric)+len(m.Categorical))
	for _, t := range m.Numeric {
		cols = append(cols, t.Column)
	}
	for _, t := range m.Categorical {
		cols = append(cols, t.Column)
	}
	return cols
}

func (m *LogisticModel) validate() error {
	if len(m.Numeric)+len(m.Categorical) == 0 {
		return fmt.Errorf("logistic model has no terms")
	}
	seen := make(map[string]struct{})
	for _, c := range m.Columns() {
		if c == "" {
			return fmt.Errorf("logistic model term without a column")
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("logistic model column %s appears twice", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
