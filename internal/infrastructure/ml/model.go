// Package ml loads classifier artifacts and runs inference in process.
package ml

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// Model is a fitted binary classifier.
type Model interface {
	// PredictProba returns the probability of the positive class for row.
	PredictProba(row model.FeatureRow) (float64, error)
	// Columns lists the input columns the model reads, in definition order.
	Columns() []string
}

// Model kinds understood by the artifact decoder.
const (
	KindLogistic = "logistic"
	KindForest   = "forest"
)

func decodeModel(raw json.RawMessage) (Model, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("model definition is missing")
	}
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode model kind: %w", err)
	}

	switch head.Kind {
	case KindLogistic:
		var m LogisticModel
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode logistic model: %w", err)
		}
		return &m, m.validate()
	case KindForest:
		var m ForestModel
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode forest model: %w", err)
		}
		return &m, m.validate()
	default:
		return nil, fmt.Errorf("unsupported model kind %q", head.Kind)
	}
}

// numericValue reads a numeric cell. ok is false for missing values.
func numericValue(row model.FeatureRow, column string) (float64, bool, error) {
	v, present := row[column]
	if !present || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false, nil
		}
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	default:
		return 0, false, fmt.Errorf("column %s: expected a number, got %T", column, v)
	}
}

// categoricalValue reads a categorical cell. Non-string values are
// formatted so numeric codes still match their one-hot levels.
func categoricalValue(row model.FeatureRow, column string) (string, bool) {
	v, present := row[column]
	if !present || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, s != ""
	}
	return fmt.Sprint(v), true
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
