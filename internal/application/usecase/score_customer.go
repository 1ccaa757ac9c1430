package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

var tracer = otel.Tracer("github.com/bibbank/creditrisk/internal/application/usecase")

// ScoreCustomer scores one customer and persists the outcome.
type ScoreCustomer struct {
	uow      port.UnitOfWork
	scorer   *service.ScoringOrchestrator
	recorder *AuditRecorder
	clock    port.Clock
	metrics  port.Metrics
	logger   *slog.Logger
}

// NewScoreCustomer creates a new ScoreCustomer use case.
func NewScoreCustomer(
	uow port.UnitOfWork,
	scorer *service.ScoringOrchestrator,
	recorder *AuditRecorder,
	clock port.Clock,
	metrics port.Metrics,
	logger *slog.Logger,
) *ScoreCustomer {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &ScoreCustomer{
		uow:      uow,
		scorer:   scorer,
		recorder: recorder,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// Execute scores the customer under its lock, overwrites the current state,
// and appends a transition and a SCORE edit where they apply. Scoring errors
// are returned as is; write failures wrap ErrPersistence.
func (uc *ScoreCustomer) Execute(ctx context.Context, req dto.ScoreCustomerRequest) (dto.ScoreResponse, error) {
	key := strings.TrimSpace(req.CustomerKey)
	if key == "" {
		return dto.ScoreResponse{}, invalidInput("customer key is required")
	}
	if strings.TrimSpace(req.Actor) == "" {
		return dto.ScoreResponse{}, invalidInput("actor is required")
	}

	ctx, span := tracer.Start(ctx, "ScoreCustomer.Execute",
		trace.WithAttributes(attribute.String("customer_key", key)))
	defer span.End()

	start := time.Now()
	var (
		resp     dto.ScoreResponse
		result   service.ScoreResult
		scoreErr error
	)

	err := uc.uow.WithinCustomer(ctx, key, func(ctx context.Context, store port.CustomerStore, profile *model.CustomerProfile) error {
		result, scoreErr = uc.scorer.Score(ctx, profile.ScoringInput())
		if scoreErr != nil {
			return scoreErr
		}

		before := profile.Snapshot()
		written, scoredAt, err := uc.recorder.applyScore(ctx, store, profile, profile.Category(), result.Assessment(), req.Actor)
		if err != nil {
			return err
		}
		if err := uc.recorder.flushEvents(ctx, store, profile); err != nil {
			return err
		}
		edited, err := uc.recorder.appendEdit(ctx, store, key, before, profile.Snapshot(), req.Actor, valueobject.ActionScore, "")
		if err != nil {
			return err
		}

		resp = dto.FromScoreResult(key, profile.ContrastRating(), result, scoredAt)
		resp.TransitionWritten = written
		resp.EditWritten = edited
		return nil
	})
	if scoreErr != nil {
		span.RecordError(scoreErr)
		return dto.ScoreResponse{}, fmt.Errorf("failed to score customer %s: %w", key, scoreErr)
	}
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("failed to persist score", "customer_key", key, "error", err)
		return dto.ScoreResponse{}, persistenceError("persist score", err)
	}

	uc.metrics.ScoreRecorded(ctx, result.Category.Display(), result.Disposition.String(), time.Since(start))
	uc.logger.Info("customer scored",
		slog.String("customer_key", key),
		slog.String("category", resp.Category),
		slog.Float64("final_probability", resp.FinalProbability),
		slog.String("disposition", resp.Disposition),
	)
	return resp, nil
}
