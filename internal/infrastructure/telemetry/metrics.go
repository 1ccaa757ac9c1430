// Package telemetry records scoring and ledger activity as OpenTelemetry
// instruments.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/creditrisk/internal/domain/port"
)

const meterName = "github.com/bibbank/creditrisk"

// Metrics implements port.Metrics on an OpenTelemetry meter.
type Metrics struct {
	scores        metric.Int64Counter
	transitions   metric.Int64Counter
	edits         metric.Int64Counter
	reloads       metric.Int64Counter
	scoreDuration metric.Float64Histogram
}

var _ port.Metrics = (*Metrics)(nil)

// NewMetrics creates the risk instruments on provider.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)
	m := &Metrics{}

	var err error
	if m.scores, err = meter.Int64Counter("risk_scores_total",
		metric.WithDescription("Customers scored, by category and disposition."),
	); err != nil {
		return nil, fmt.Errorf("telemetry: create scores counter: %w", err)
	}
	if m.transitions, err = meter.Int64Counter("risk_category_transitions_total",
		metric.WithDescription("Category transitions appended to the ledger."),
	); err != nil {
		return nil, fmt.Errorf("telemetry: create transitions counter: %w", err)
	}
	if m.edits, err = meter.Int64Counter("risk_field_edits_total",
		metric.WithDescription("Field edits appended to the ledger, by action."),
	); err != nil {
		return nil, fmt.Errorf("telemetry: create edits counter: %w", err)
	}
	if m.reloads, err = meter.Int64Counter("risk_artifact_reloads_total",
		metric.WithDescription("Classifier artifact reload attempts, by result."),
	); err != nil {
		return nil, fmt.Errorf("telemetry: create reloads counter: %w", err)
	}
	if m.scoreDuration, err = meter.Float64Histogram("risk_score_duration_seconds",
		metric.WithDescription("Time spent scoring one customer."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("telemetry: create score duration histogram: %w", err)
	}
	return m, nil
}

func (m *Metrics) ScoreRecorded(ctx context.Context, category, disposition string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("disposition", disposition),
	)
	m.scores.Add(ctx, 1, attrs)
	m.scoreDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) TransitionRecorded(ctx context.Context, from, to string) {
	if from == "" {
		from = "none"
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (m *Metrics) EditRecorded(ctx context.Context, action string) {
	m.edits.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

func (m *Metrics) ArtifactReloaded(ctx context.Context, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.reloads.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
