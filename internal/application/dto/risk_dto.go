package dto

import (
	"time"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/service"
)

// ScoreCustomerRequest is the input DTO for the ScoreCustomer use case.
type ScoreCustomerRequest struct {
	CustomerKey string `json:"customer_key"`
	Actor       string `json:"actor"`
}

// ScoreResponse is the output DTO of a scoring run.
type ScoreResponse struct {
	ScoredAt          time.Time `json:"scored_at"`
	CustomerKey       string    `json:"customer_key"`
	Category          string    `json:"category"`
	CategoryStorage   string    `json:"category_storage"`
	Level             string    `json:"level"`
	Disposition       string    `json:"disposition"`
	TargetDefinition  string    `json:"target_definition"`
	ArtifactChecksum  string    `json:"artifact_checksum"`
	ContrastRating    string    `json:"contrast_rating,omitempty"`
	MissingFeatures   []string  `json:"missing_features,omitempty"`
	RawProbability    float64   `json:"raw_probability"`
	FinalProbability  float64   `json:"final_probability"`
	Threshold         float64   `json:"threshold"`
	RawPrediction     bool      `json:"raw_prediction"`
	FinalPrediction   bool      `json:"final_prediction"`
	IsHighRisk        bool      `json:"is_high_risk"`
	TransitionWritten bool      `json:"transition_written"`
	EditWritten       bool      `json:"edit_written"`
}

// FromScoreResult maps a scoring result to the response DTO.
func FromScoreResult(customerKey, contrastRating string, r service.ScoreResult, scoredAt time.Time) ScoreResponse {
	return ScoreResponse{
		CustomerKey:      customerKey,
		Category:         r.Category.Display(),
		CategoryStorage:  r.Category.Storage(),
		Level:            r.Level.String(),
		Disposition:      r.Disposition.String(),
		TargetDefinition: r.TargetDefinition,
		ArtifactChecksum: r.ArtifactChecksum,
		ContrastRating:   contrastRating,
		MissingFeatures:  r.MissingFeatures,
		RawProbability:   r.RawProbability,
		FinalProbability: r.FinalProbability,
		Threshold:        r.Threshold,
		RawPrediction:    r.RawPrediction,
		FinalPrediction:  r.FinalPrediction,
		IsHighRisk:       r.IsHighRisk,
		ScoredAt:         scoredAt,
	}
}

// EditCustomerRequest is the input DTO for the EditCustomer use case.
type EditCustomerRequest struct {
	Patch       model.FeaturePatch
	CustomerKey string
	Actor       string
	Notes       string
}

// EditCustomerResponse reports what an edit changed. Score is nil when
// scoring failed; ScoringError then carries the reason and the category was
// refreshed from the delinquency table alone.
type EditCustomerResponse struct {
	Score         *ScoreResponse `json:"score,omitempty"`
	CustomerKey   string         `json:"customer_key"`
	Category      string         `json:"category"`
	Level         string         `json:"level"`
	ScoringError  string         `json:"scoring_error,omitempty"`
	ChangedFields []string       `json:"changed_fields"`
	IsHighRisk    bool           `json:"is_high_risk"`
}

// ReconcileRequest is the input DTO for the batch reconciliation.
type ReconcileRequest struct {
	Actor     string `json:"actor"`
	BatchSize int    `json:"batch_size"`
	Workers   int    `json:"workers"`
}

// ReconcileResponse summarizes a reconciliation run.
type ReconcileResponse struct {
	Duration  time.Duration `json:"duration"`
	Processed int           `json:"processed"`
	Changed   int           `json:"changed"`
	Failed    int           `json:"failed"`
}

// ArtifactResponse describes the active classifier artifact.
type ArtifactResponse struct {
	LoadedAt         time.Time `json:"loaded_at"`
	Checksum         string    `json:"checksum"`
	TargetDefinition string    `json:"target_definition"`
	FeatureColumns   []string  `json:"feature_columns"`
	Threshold        float64   `json:"threshold"`
}

// HistoryRequest is the input DTO for ledger queries.
type HistoryRequest struct {
	CustomerKey string `json:"customer_key"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
}

// TransitionResponse is one category transition.
type TransitionResponse struct {
	CreatedAt        time.Time `json:"created_at"`
	ID               string    `json:"id"`
	CustomerKey      string    `json:"customer_key"`
	CategoryBefore   string    `json:"category_before,omitempty"`
	CategoryAfter    string    `json:"category_after"`
	Level            string    `json:"level"`
	CreditType       string    `json:"credit_type"`
	CreatedBy        string    `json:"created_by"`
	RawProbability   *float64  `json:"raw_probability"`
	RawPrediction    *bool     `json:"raw_prediction"`
	DaysOverdue      int       `json:"days_overdue"`
	FinalProbability float64   `json:"final_probability"`
}

// FromTransition maps a ledger record to the response DTO.
func FromTransition(t model.CategoryTransition) TransitionResponse {
	before := ""
	if !t.Before().IsZero() {
		before = t.Before().Display()
	}
	return TransitionResponse{
		ID:               t.ID().String(),
		CustomerKey:      t.CustomerKey(),
		CategoryBefore:   before,
		CategoryAfter:    t.After().Display(),
		Level:            t.Level().String(),
		CreditType:       t.CreditType(),
		DaysOverdue:      t.DaysOverdue(),
		RawProbability:   t.RawProbability(),
		FinalProbability: t.FinalProbability(),
		RawPrediction:    t.RawPrediction(),
		CreatedAt:        t.CreatedAt(),
		CreatedBy:        t.CreatedBy(),
	}
}

// FieldEditResponse is one field edit.
type FieldEditResponse struct {
	ChangedAt   time.Time      `json:"changed_at"`
	Before      model.Snapshot `json:"before"`
	After       model.Snapshot `json:"after"`
	Diff        model.Diff     `json:"diff"`
	ID          string         `json:"id"`
	CustomerKey string         `json:"customer_key"`
	Action      string         `json:"action"`
	ChangedBy   string         `json:"changed_by"`
	Notes       string         `json:"notes,omitempty"`
}

// FromFieldEdit maps a ledger record to the response DTO.
func FromFieldEdit(e model.FieldEdit) FieldEditResponse {
	return FieldEditResponse{
		ID:          e.ID().String(),
		CustomerKey: e.CustomerKey(),
		Action:      e.Action().String(),
		Before:      e.Before(),
		After:       e.After(),
		Diff:        e.Diff(),
		ChangedBy:   e.ChangedBy(),
		Notes:       e.Notes(),
		ChangedAt:   e.ChangedAt(),
	}
}
