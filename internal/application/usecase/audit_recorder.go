package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// AuditRecorder keeps the current profile state and the two ledgers in step.
// Every write for a customer happens inside that customer's unit of work.
type AuditRecorder struct {
	uow     port.UnitOfWork
	clock   port.Clock
	metrics port.Metrics
	logger  *slog.Logger
}

// NewAuditRecorder creates a new AuditRecorder.
func NewAuditRecorder(uow port.UnitOfWork, clock port.Clock, metrics port.Metrics, logger *slog.Logger) *AuditRecorder {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &AuditRecorder{uow: uow, clock: clock, metrics: metrics, logger: logger}
}

// RecordTransitionIfChanged overwrites the customer's current state with
// result and appends a transition when result's category differs from
// previous. A zero previous counts as a change. It reports whether a
// transition was written.
func (r *AuditRecorder) RecordTransitionIfChanged(
	ctx context.Context,
	customerKey string,
	previous valueobject.Category,
	result service.ScoreResult,
	actor string,
) (bool, error) {
	var written bool
	err := r.uow.WithinCustomer(ctx, customerKey, func(ctx context.Context, store port.CustomerStore, profile *model.CustomerProfile) error {
		var err error
		written, _, err = r.applyScore(ctx, store, profile, previous, result.Assessment(), actor)
		if err != nil {
			return err
		}
		return r.flushEvents(ctx, store, profile)
	})
	if err != nil {
		return false, persistenceError("record transition", err)
	}
	return written, nil
}

// RecordEditIfChanged appends a field edit when the tracked fields of before
// and after differ. It reports whether an edit was written.
func (r *AuditRecorder) RecordEditIfChanged(
	ctx context.Context,
	customerKey string,
	before, after model.Snapshot,
	actor string,
	action valueobject.EditAction,
) (bool, error) {
	var written bool
	err := r.uow.WithinCustomer(ctx, customerKey, func(ctx context.Context, store port.CustomerStore, _ *model.CustomerProfile) error {
		var err error
		written, err = r.appendEdit(ctx, store, customerKey, before, after, actor, action, "")
		return err
	})
	if err != nil {
		return false, persistenceError("record edit", err)
	}
	return written, nil
}

// applyScore is the transactional core of RecordTransitionIfChanged.
func (r *AuditRecorder) applyScore(
	ctx context.Context,
	store port.CustomerStore,
	profile *model.CustomerProfile,
	previous valueobject.Category,
	a model.RiskAssessment,
	actor string,
) (bool, time.Time, error) {
	scoredAt := profile.ApplyAssessment(a, actor, r.clock.Now())
	if err := store.SaveProfile(ctx, profile); err != nil {
		return false, scoredAt, fmt.Errorf("failed to save profile: %w", err)
	}

	if previous.Equal(a.Category) {
		return false, scoredAt, nil
	}
	if err := r.appendTransition(ctx, store, profile.CustomerKey(), previous, a, actor, scoredAt); err != nil {
		return false, scoredAt, err
	}
	return true, scoredAt, nil
}

// applyClassification refreshes the rule-derived fields from the
// delinquency table without a model score. The transition reuses the last
// raw model output, raised to the new category's floor.
func (r *AuditRecorder) applyClassification(
	ctx context.Context,
	store port.CustomerStore,
	profile *model.CustomerProfile,
	class service.Classification,
	actor string,
) (bool, error) {
	previous := profile.Category()
	profile.ApplyClassification(class.Category, class.Level, actor, r.clock.Now())
	if err := store.SaveProfile(ctx, profile); err != nil {
		return false, fmt.Errorf("failed to save profile: %w", err)
	}
	if previous.Equal(class.Category) {
		return false, nil
	}

	a := storedAssessment(profile, class)
	if err := r.appendTransition(ctx, store, profile.CustomerKey(), previous, a, actor, profile.UpdatedAt()); err != nil {
		return false, err
	}
	return true, nil
}

func (r *AuditRecorder) appendTransition(
	ctx context.Context,
	store port.CustomerStore,
	customerKey string,
	previous valueobject.Category,
	a model.RiskAssessment,
	actor string,
	at time.Time,
) error {
	transition, err := model.NewCategoryTransition(customerKey, previous, a, actor, at)
	if err != nil {
		return fmt.Errorf("failed to build transition: %w", err)
	}
	if err := store.AppendTransition(ctx, transition); err != nil {
		return fmt.Errorf("failed to append transition: %w", err)
	}

	from := ""
	if !previous.IsZero() {
		from = previous.Display()
	}
	r.metrics.TransitionRecorded(ctx, from, a.Category.Display())
	r.logger.Info("category transition recorded",
		slog.String("customer_key", customerKey),
		slog.String("from", from),
		slog.String("to", a.Category.Display()),
		slog.String("actor", actor),
	)
	return nil
}

func (r *AuditRecorder) appendEdit(
	ctx context.Context,
	store port.CustomerStore,
	customerKey string,
	before, after model.Snapshot,
	actor string,
	action valueobject.EditAction,
	notes string,
) (bool, error) {
	edit, ok := model.NewFieldEdit(customerKey, action, before, after, actor, notes, r.clock.Now())
	if !ok {
		return false, nil
	}
	if err := store.AppendEdit(ctx, edit); err != nil {
		return false, fmt.Errorf("failed to append field edit: %w", err)
	}
	evt := event.NewProfileEdited(customerKey, action.String(), actor, edit.Diff().Fields(), edit.ChangedAt())
	if err := store.StoreEvents(ctx, evt); err != nil {
		return false, fmt.Errorf("failed to store events: %w", err)
	}
	r.metrics.EditRecorded(ctx, action.String())
	return true, nil
}

func (r *AuditRecorder) flushEvents(ctx context.Context, store port.CustomerStore, profile *model.CustomerProfile) error {
	evts := profile.DomainEvents()
	if len(evts) == 0 {
		return nil
	}
	if err := store.StoreEvents(ctx, evts...); err != nil {
		return fmt.Errorf("failed to store events: %w", err)
	}
	return nil
}

// storedAssessment describes a reclassification using the raw model output
// persisted on the profile, raised to the new category's floor. A customer
// that was never scored has no raw output; its final probability is the
// floor alone.
func storedAssessment(profile *model.CustomerProfile, class service.Classification) model.RiskAssessment {
	f := profile.Features()
	days := 0
	if f.DaysOverdue != nil {
		days = *f.DaysOverdue
	}
	a := model.RiskAssessment{
		Category:    class.Category,
		Level:       class.Level,
		CreditType:  f.CreditType,
		DaysOverdue: days,
		IsHighRisk:  class.Category.IsHighRisk(),
		RuleOnly:    true,
	}
	if raw := profile.LastRawProbability(); raw != nil {
		a.RuleOnly = false
		a.RawProbability = *raw
		if pred := profile.LastRawPrediction(); pred != nil {
			a.RawPrediction = *pred
		}
	}
	a.FinalProbability = service.AdjustProbability(a.RawProbability, class.Category.Display())
	return a
}
