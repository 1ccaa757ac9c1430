package port

import (
	"context"
	"time"
)

// Metrics records scoring and ledger activity.
type Metrics interface {
	ScoreRecorded(ctx context.Context, category, disposition string, elapsed time.Duration)
	TransitionRecorded(ctx context.Context, from, to string)
	EditRecorded(ctx context.Context, action string)
	ArtifactReloaded(ctx context.Context, ok bool)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ScoreRecorded(context.Context, string, string, time.Duration) {}
func (NopMetrics) TransitionRecorded(context.Context, string, string)           {}
func (NopMetrics) EditRecorded(context.Context, string)                         {}
func (NopMetrics) ArtifactReloaded(context.Context, bool)                       {}
