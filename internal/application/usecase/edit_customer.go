package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// EditCustomer applies a feature patch and rescores the customer.
type EditCustomer struct {
	uow      port.UnitOfWork
	scorer   *service.ScoringOrchestrator
	recorder *AuditRecorder
	clock    port.Clock
	logger   *slog.Logger
}

// NewEditCustomer creates a new EditCustomer use case.
func NewEditCustomer(
	uow port.UnitOfWork,
	scorer *service.ScoringOrchestrator,
	recorder *AuditRecorder,
	clock port.Clock,
	logger *slog.Logger,
) *EditCustomer {
	return &EditCustomer{uow: uow, scorer: scorer, recorder: recorder, clock: clock, logger: logger}
}

// Execute saves the patch, then scores. When scoring fails the edit still
// commits: the category is refreshed from the delinquency table and the
// error is reported in the response.
func (uc *EditCustomer) Execute(ctx context.Context, req dto.EditCustomerRequest) (dto.EditCustomerResponse, error) {
	key := strings.TrimSpace(req.CustomerKey)
	if key == "" {
		return dto.EditCustomerResponse{}, invalidInput("customer key is required")
	}
	if strings.TrimSpace(req.Actor) == "" {
		return dto.EditCustomerResponse{}, invalidInput("actor is required")
	}
	if req.Patch.IsEmpty() {
		return dto.EditCustomerResponse{}, invalidInput("patch is empty")
	}

	ctx, span := tracer.Start(ctx, "EditCustomer.Execute")
	defer span.End()

	var resp dto.EditCustomerResponse
	err := uc.uow.WithinCustomer(ctx, key, func(ctx context.Context, store port.CustomerStore, profile *model.CustomerProfile) error {
		before := profile.Snapshot()
		previous := profile.Category()
		profile.ApplyPatch(req.Patch, uc.clock.Now())

		resp = dto.EditCustomerResponse{CustomerKey: key}

		result, scoreErr := uc.scorer.Score(ctx, profile.ScoringInput())
		if scoreErr == nil {
			_, scoredAt, err := uc.recorder.applyScore(ctx, store, profile, previous, result.Assessment(), req.Actor)
			if err != nil {
				return err
			}
			score := dto.FromScoreResult(key, profile.ContrastRating(), result, scoredAt)
			resp.Score = &score
		} else {
			uc.logger.Warn("customer saved but scoring failed",
				slog.String("customer_key", key),
				slog.String("error", scoreErr.Error()),
			)
			resp.ScoringError = scoreErr.Error()
			in := profile.ScoringInput()
			if _, err := uc.recorder.applyClassification(ctx, store, profile, service.Classify(in.CreditType, in.DaysOverdue), req.Actor); err != nil {
				return err
			}
		}

		if err := uc.recorder.flushEvents(ctx, store, profile); err != nil {
			return err
		}
		after := profile.Snapshot()
		if _, err := uc.recorder.appendEdit(ctx, store, key, before, after, req.Actor, valueobject.ActionEdit, req.Notes); err != nil {
			return err
		}

		resp.ChangedFields = model.DiffSnapshots(before.Tracked(), after.Tracked()).Fields()
		resp.Category = profile.Category().Display()
		resp.Level = profile.Level().String()
		resp.IsHighRisk = profile.IsHighRisk()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return dto.EditCustomerResponse{}, persistenceError("persist edit", err)
	}
	return resp, nil
}
