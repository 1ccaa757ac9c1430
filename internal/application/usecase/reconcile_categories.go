package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

const (
	// DefaultReconcileActor stamps transitions written by batch reconciliation.
	DefaultReconcileActor = "system-backfill"

	defaultReconcileBatch   = 500
	defaultReconcileWorkers = 4
)

// ReconcileCategories recomputes every customer's category from the
// delinquency table and repairs mismatches. It does not run the model.
type ReconcileCategories struct {
	profiles port.ProfileRepository
	uow      port.UnitOfWork
	recorder *AuditRecorder
	logger   *slog.Logger
}

// NewReconcileCategories creates a new ReconcileCategories use case.
func NewReconcileCategories(
	profiles port.ProfileRepository,
	uow port.UnitOfWork,
	recorder *AuditRecorder,
	logger *slog.Logger,
) *ReconcileCategories {
	return &ReconcileCategories{profiles: profiles, uow: uow, recorder: recorder, logger: logger}
}

// Execute walks all profiles in key order. Matching customers are left
// untouched, so repeated runs are no-ops. A failure on one customer is
// counted and logged without stopping the run.
func (uc *ReconcileCategories) Execute(ctx context.Context, req dto.ReconcileRequest) (dto.ReconcileResponse, error) {
	actor := req.Actor
	if actor == "" {
		actor = DefaultReconcileActor
	}
	batch := req.BatchSize
	if batch <= 0 {
		batch = defaultReconcileBatch
	}
	workers := req.Workers
	if workers <= 0 {
		workers = defaultReconcileWorkers
	}

	ctx, span := tracer.Start(ctx, "ReconcileCategories.Execute")
	defer span.End()

	start := time.Now()
	var processed, changed, failed atomic.Int64
	afterKey := ""

	for {
		page, err := uc.profiles.List(ctx, afterKey, batch)
		if err != nil {
			return dto.ReconcileResponse{}, persistenceError("list profiles", err)
		}
		if len(page) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for _, p := range page {
			processed.Add(1)
			class := classifyProfile(p)
			if class.Category.Equal(p.Category()) {
				continue
			}

			key := p.CustomerKey()
			g.Go(func() error {
				ok, err := uc.reconcileOne(gctx, key, actor)
				switch {
				case err != nil:
					failed.Add(1)
					uc.logger.Error("failed to reconcile customer", "customer_key", key, "error", err)
				case ok:
					changed.Add(1)
				}
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return dto.ReconcileResponse{}, err
		}

		afterKey = page[len(page)-1].CustomerKey()
		if len(page) < batch {
			break
		}
	}

	resp := dto.ReconcileResponse{
		Processed: int(processed.Load()),
		Changed:   int(changed.Load()),
		Failed:    int(failed.Load()),
		Duration:  time.Since(start),
	}
	uc.logger.Info("reconciliation finished",
		slog.Int("processed", resp.Processed),
		slog.Int("changed", resp.Changed),
		slog.Int("failed", resp.Failed),
		slog.Duration("duration", resp.Duration),
	)
	return resp, nil
}

// reconcileOne re-checks under the customer lock, since the listed copy
// may be stale by the time the worker runs.
func (uc *ReconcileCategories) reconcileOne(ctx context.Context, key, actor string) (bool, error) {
	var written bool
	err := uc.uow.WithinCustomer(ctx, key, func(ctx context.Context, store port.CustomerStore, profile *model.CustomerProfile) error {
		class := classifyProfile(profile)
		if class.Category.Equal(profile.Category()) {
			return nil
		}

		before := profile.Snapshot()
		var err error
		written, err = uc.recorder.applyClassification(ctx, store, profile, class, actor)
		if err != nil {
			return err
		}
		if err := uc.recorder.flushEvents(ctx, store, profile); err != nil {
			return err
		}
		_, err = uc.recorder.appendEdit(ctx, store, key, before, profile.Snapshot(), actor, valueobject.ActionReconcile, "")
		return err
	})
	if err != nil {
		return false, persistenceError("reconcile customer", err)
	}
	return written, nil
}

func classifyProfile(p *model.CustomerProfile) service.Classification {
	f := p.Features()
	return service.Classify(f.CreditType, f.DaysOverdue)
}
