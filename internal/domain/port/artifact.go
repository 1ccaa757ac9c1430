package port

import (
	"context"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// ModelArtifact is a loaded classifier bundle.
type ModelArtifact interface {
	// FeatureColumns is the ordered list of columns the model expects.
	FeatureColumns() []string

	// Threshold is the probability cutoff for a positive prediction.
	Threshold() float64

	// TargetDefinition describes what a positive prediction means.
	TargetDefinition() string

	// Checksum identifies the artifact contents.
	Checksum() string

	// LoadedAt is when the artifact was read.
	LoadedAt() time.Time

	// PredictProba returns the positive-class probability for an aligned row.
	PredictProba(row model.FeatureRow) (float64, error)
}

// ArtifactProvider hands out the current artifact.
type ArtifactProvider interface {
	Current(ctx context.Context) (ModelArtifact, error)
	Reload(ctx context.Context) (ModelArtifact, error)
}
