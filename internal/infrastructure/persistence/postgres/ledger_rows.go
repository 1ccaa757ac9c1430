package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

const transitionColumns = `
	id, customer_key, category_before, category_after, level,
	days_overdue, credit_type, raw_probability, final_probability, raw_prediction,
	created_at, created_by`

const editColumns = `
	id, customer_key, action, before, after, diff, changed_by, notes, changed_at`

func scanTransition(row pgx.Row) (model.CategoryTransition, error) {
	var (
		id         uuid.UUID
		key        string
		beforeStr  *string
		afterStr   string
		levelStr   string
		days       int
		creditType string
		rawP       *float64
		finalP     float64
		rawPred    *bool
		createdAt  time.Time
		createdBy  string
	)
	if err := row.Scan(
		&id, &key, &beforeStr, &afterStr, &levelStr,
		&days, &creditType, &rawP, &finalP, &rawPred,
		&createdAt, &createdBy,
	); err != nil {
		return model.CategoryTransition{}, fmt.Errorf("failed to scan transition: %w", err)
	}

	var before valueobject.Category
	if beforeStr != nil {
		c, err := valueobject.CategoryFromStorage(*beforeStr)
		if err != nil {
			return model.CategoryTransition{}, fmt.Errorf("transition %s: %w", id, err)
		}
		before = c
	}
	after, err := valueobject.CategoryFromStorage(afterStr)
	if err != nil {
		return model.CategoryTransition{}, fmt.Errorf("transition %s: %w", id, err)
	}
	level, err := valueobject.RiskLevelFromString(levelStr)
	if err != nil {
		return model.CategoryTransition{}, fmt.Errorf("transition %s: %w", id, err)
	}

	return model.ReconstructCategoryTransition(
		id, key, before, after, level, days, creditType, rawP, finalP, rawPred, createdAt.UTC(), createdBy,
	), nil
}

func scanEdit(row pgx.Row) (model.FieldEdit, error) {
	var (
		id                  uuid.UUID
		key                 string
		actionStr           string
		beforeRaw, afterRaw []byte
		diffRaw             []byte
		changedBy, notes    string
		changedAt           time.Time
	)
	if err := row.Scan(&id, &key, &actionStr, &beforeRaw, &afterRaw, &diffRaw, &changedBy, &notes, &changedAt); err != nil {
		return model.FieldEdit{}, fmt.Errorf("failed to scan field edit: %w", err)
	}

	action, err := valueobject.EditActionFromString(actionStr)
	if err != nil {
		return model.FieldEdit{}, fmt.Errorf("field edit %s: %w", id, err)
	}
	var before, after model.Snapshot
	var diff model.Diff
	if err := json.Unmarshal(beforeRaw, &before); err != nil {
		return model.FieldEdit{}, fmt.Errorf("field edit %s: decode before: %w", id, err)
	}
	if err := json.Unmarshal(afterRaw, &after); err != nil {
		return model.FieldEdit{}, fmt.Errorf("field edit %s: decode after: %w", id, err)
	}
	if err := json.Unmarshal(diffRaw, &diff); err != nil {
		return model.FieldEdit{}, fmt.Errorf("field edit %s: decode diff: %w", id, err)
	}

	return model.ReconstructFieldEdit(id, key, action, before, after, diff, changedBy, notes, changedAt.UTC()), nil
}
