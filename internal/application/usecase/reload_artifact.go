package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/port"
)

// ReloadArtifact swaps in a freshly loaded classifier artifact.
type ReloadArtifact struct {
	artifacts port.ArtifactProvider
	metrics   port.Metrics
	logger    *slog.Logger
}

// NewReloadArtifact creates a new ReloadArtifact use case.
func NewReloadArtifact(artifacts port.ArtifactProvider, metrics port.Metrics, logger *slog.Logger) *ReloadArtifact {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &ReloadArtifact{artifacts: artifacts, metrics: metrics, logger: logger}
}

// Execute reloads the artifact. On failure the previous artifact, if any,
// stays active.
func (uc *ReloadArtifact) Execute(ctx context.Context) (dto.ArtifactResponse, error) {
	a, err := uc.artifacts.Reload(ctx)
	uc.metrics.ArtifactReloaded(ctx, err == nil)
	if err != nil {
		uc.logger.Error("artifact reload failed", "error", err)
		return dto.ArtifactResponse{}, fmt.Errorf("failed to reload artifact: %w", err)
	}
	uc.logger.Info("artifact reloaded",
		slog.String("checksum", a.Checksum()),
		slog.Float64("threshold", a.Threshold()),
		slog.Int("features", len(a.FeatureColumns())),
	)
	return toArtifactResponse(a), nil
}

// Describe returns the active artifact, loading it on first use.
func (uc *ReloadArtifact) Describe(ctx context.Context) (dto.ArtifactResponse, error) {
	a, err := uc.artifacts.Current(ctx)
	if err != nil {
		return dto.ArtifactResponse{}, fmt.Errorf("failed to load artifact: %w", err)
	}
	return toArtifactResponse(a), nil
}

func toArtifactResponse(a port.ModelArtifact) dto.ArtifactResponse {
	return dto.ArtifactResponse{
		Checksum:         a.Checksum(),
		TargetDefinition: a.TargetDefinition(),
		FeatureColumns:   a.FeatureColumns(),
		Threshold:        a.Threshold(),
		LoadedAt:         a.LoadedAt(),
	}
}
