package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// ScoreResult is the complete outcome of scoring one customer.
type ScoreResult struct {
	Category         valueobject.Category
	Level            valueobject.RiskLevel
	Family           valueobject.CreditFamily
	Disposition      valueobject.Disposition
	TargetDefinition string
	ArtifactChecksum string
	CreditType       string
	MissingFeatures  []string
	RawProbability   float64
	FinalProbability float64
	Threshold        float64
	DaysOverdue      int
	RawPrediction    bool
	FinalPrediction  bool
	IsHighRisk       bool
}

// Assessment is the part of the result stored on the profile and ledger.
func (r ScoreResult) Assessment() model.RiskAssessment {
	return model.RiskAssessment{
		Category:         r.Category,
		Level:            r.Level,
		CreditType:       r.CreditType,
		DaysOverdue:      r.DaysOverdue,
		RawProbability:   r.RawProbability,
		FinalProbability: r.FinalProbability,
		RawPrediction:    r.RawPrediction,
		FinalPrediction:  r.FinalPrediction,
		IsHighRisk:       r.IsHighRisk,
	}
}

// ScoringOrchestrator combines model inference with the delinquency table.
// Score has no side effects beyond logging.
type ScoringOrchestrator struct {
	artifacts port.ArtifactProvider
	logger    *slog.Logger
}

// NewScoringOrchestrator creates a ScoringOrchestrator.
func NewScoringOrchestrator(artifacts port.ArtifactProvider, logger *slog.Logger) *ScoringOrchestrator {
	return &ScoringOrchestrator{artifacts: artifacts, logger: logger}
}

// Score runs the model on the aligned feature row, classifies the customer
// and reconciles the two.
func (o *ScoringOrchestrator) Score(ctx context.Context, in model.ScoringInput) (ScoreResult, error) {
	artifact, err := o.artifacts.Current(ctx)
	if err != nil {
		return ScoreResult{}, err
	}

	row, missing := AlignRow(in.Row, artifact.FeatureColumns())
	if len(missing) > 0 {
		o.logger.Warn("feature columns missing from row",
			"missing", missing,
			"artifact", artifact.Checksum(),
		)
	}

	raw, err := artifact.PredictProba(row)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("failed to run inference: %w", err)
	}
	if math.IsNaN(raw) {
		return ScoreResult{}, fmt.Errorf("failed to run inference: model returned NaN")
	}
	raw = clamp01(raw)

	threshold := artifact.Threshold()
	class := Classify(in.CreditType, in.DaysOverdue)
	display := class.Category.Display()
	final := AdjustProbability(raw, display)

	days := 0
	if in.DaysOverdue != nil {
		days = *in.DaysOverdue
	}

	return ScoreResult{
		RawProbability:   raw,
		RawPrediction:    raw >= threshold,
		Category:         class.Category,
		Level:            class.Level,
		Family:           class.Family,
		FinalProbability: final,
		FinalPrediction:  final >= threshold,
		IsHighRisk:       class.Category.IsHighRisk(),
		Disposition:      Decide(display, final, threshold),
		Threshold:        threshold,
		TargetDefinition: artifact.TargetDefinition(),
		ArtifactChecksum: artifact.Checksum(),
		CreditType:       in.CreditType,
		DaysOverdue:      days,
		MissingFeatures:  missing,
	}, nil
}

// AlignRow projects row onto columns in order. Columns absent from row are
// filled with nil and reported as missing; extra row keys are dropped.
func AlignRow(row model.FeatureRow, columns []string) (model.FeatureRow, []string) {
	aligned := make(model.FeatureRow, len(columns))
	var missing []string
	for _, c := range columns {
		v, ok := row[c]
		if !ok {
			missing = append(missing, c)
		}
		aligned[c] = v
	}
	return aligned, missing
}

func clamp01(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
