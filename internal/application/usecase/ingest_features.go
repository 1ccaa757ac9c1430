package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
)

// IngestActor stamps work triggered by the feature pipeline.
const IngestActor = "system-ingest"

// IngestFeaturesRequest carries one aggregated feature row.
type IngestFeaturesRequest struct {
	Features       model.Features
	CustomerKey    string
	ContrastRating string
}

// IngestFeatures upserts a customer from the aggregation pipeline and
// scores it. New customers are created then scored; existing ones go through
// the edit path so the change is audited.
type IngestFeatures struct {
	profiles port.ProfileRepository
	score    *ScoreCustomer
	edit     *EditCustomer
	clock    port.Clock
	logger   *slog.Logger
}

// NewIngestFeatures creates a new IngestFeatures use case.
func NewIngestFeatures(
	profiles port.ProfileRepository,
	score *ScoreCustomer,
	edit *EditCustomer,
	clock port.Clock,
	logger *slog.Logger,
) *IngestFeatures {
	return &IngestFeatures{profiles: profiles, score: score, edit: edit, clock: clock, logger: logger}
}

// Execute applies req.
func (uc *IngestFeatures) Execute(ctx context.Context, req IngestFeaturesRequest) error {
	key := strings.TrimSpace(req.CustomerKey)
	profile, err := model.NewCustomerProfile(key, req.Features, req.ContrastRating, uc.clock.Now())
	if err != nil {
		return invalidInput("%v", err)
	}

	created, err := uc.profiles.CreateIfAbsent(ctx, profile)
	if err != nil {
		return persistenceError("create profile", err)
	}

	if created {
		uc.logger.Info("customer created from feature feed", "customer_key", key)
		if _, err := uc.score.Execute(ctx, dto.ScoreCustomerRequest{CustomerKey: key, Actor: IngestActor}); err != nil {
			return fmt.Errorf("failed to score new customer: %w", err)
		}
		return nil
	}

	patch := model.PatchFromFeatures(req.Features)
	if patch.IsEmpty() {
		return nil
	}
	if _, err := uc.edit.Execute(ctx, dto.EditCustomerRequest{
		CustomerKey: key,
		Patch:       patch,
		Actor:       IngestActor,
		Notes:       "feature feed update",
	}); err != nil {
		return fmt.Errorf("failed to apply feature update: %w", err)
	}
	return nil
}
