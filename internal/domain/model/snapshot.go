package model

import (
	"reflect"
	"sort"
	"time"
)

// Tracked snapshot fields.
const (
	FieldOffice             = "office"
	FieldCreditType         = "credit_type"
	FieldGuarantee          = "guarantee"
	FieldSex                = "sex"
	FieldOperations         = "n_operations"
	FieldActiveOperations   = "n_active"
	FieldTotalAmount        = "total_amount"
	FieldTotalBalance       = "total_balance"
	FieldAvgTerm            = "avg_term"
	FieldAvgRate            = "avg_rate"
	FieldTechnicalEquity    = "technical_equity"
	FieldMaxTenureDays      = "max_tenure_days"
	FieldDaysToLastMaturity = "days_to_last_maturity"
	FieldDaysOverdue        = "max_days_overdue"
	FieldIsHighRisk         = "is_high_risk"
	FieldCategory           = "category"
	FieldLevel              = "level"
	FieldLastProbability    = "last_probability"
	FieldLastPrediction     = "last_prediction"
	FieldLastScoredAt       = "last_scored_at"
	FieldLastScoredBy       = "last_scored_by"
)

var trackedFields = []string{
	FieldOffice, FieldCreditType, FieldGuarantee, FieldSex,
	FieldOperations, FieldActiveOperations,
	FieldTotalAmount, FieldTotalBalance, FieldAvgTerm, FieldAvgRate, FieldTechnicalEquity,
	FieldMaxTenureDays, FieldDaysToLastMaturity, FieldDaysOverdue,
	FieldIsHighRisk, FieldCategory, FieldLevel,
	FieldLastProbability, FieldLastPrediction, FieldLastScoredAt, FieldLastScoredBy,
}

var trackedSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(trackedFields))
	for _, f := range trackedFields {
		m[f] = struct{}{}
	}
	return m
}()

// TrackedFields lists the audited profile fields.
func TrackedFields() []string {
	out := make([]string, len(trackedFields))
	copy(out, trackedFields)
	return out
}

// IsTracked reports whether field is part of the audited set.
func IsTracked(field string) bool {
	_, ok := trackedSet[field]
	return ok
}

// Snapshot is a flat view of the tracked fields of a profile at one instant.
type Snapshot map[string]any

// Tracked returns a copy of s restricted to tracked fields, with values
// normalized so snapshots from memory and from JSON compare equal.
func (s Snapshot) Tracked() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		if IsTracked(k) {
			out[k] = normalize(v)
		}
	}
	return out
}

// FieldChange is one entry of a diff.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Diff maps changed field names to their old and new values.
type Diff map[string]FieldChange

// Fields returns the changed field names in sorted order.
func (d Diff) Fields() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty reports whether nothing changed.
func (d Diff) IsEmpty() bool {
	return len(d) == 0
}

// DiffSnapshots compares every key present in either snapshot. A key missing
// on one side compares as nil.
func DiffSnapshots(before, after Snapshot) Diff {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	diff := make(Diff)
	for k := range keys {
		from, to := normalize(before[k]), normalize(after[k])
		if !reflect.DeepEqual(from, to) {
			diff[k] = FieldChange{From: from, To: to}
		}
	}
	return diff
}

func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case *int:
		if x == nil {
			return nil
		}
		return float64(*x)
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case *bool:
		if x == nil {
			return nil
		}
		return *x
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}
