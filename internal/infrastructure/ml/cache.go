package ml

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bibbank/creditrisk/internal/domain/port"
)

// ArtifactCache holds the process-wide active artifact. The first Current
// call loads it; concurrent first calls share one load. Reload builds a new
// artifact completely before swapping it in, so readers never see a partial
// artifact and a failed reload leaves the previous one active.
type ArtifactCache struct {
	source  Source
	now     func() time.Time
	logger  *slog.Logger
	current atomic.Pointer[Artifact]
	group   singleflight.Group
}

// NewArtifactCache creates a cache over source. Nothing is loaded yet.
func NewArtifactCache(source Source, logger *slog.Logger) *ArtifactCache {
	return &ArtifactCache{
		source: source,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// Current returns the active artifact, loading it on first use.
func (c *ArtifactCache) Current(ctx context.Context) (port.ModelArtifact, error) {
	if a := c.current.Load(); a != nil {
		return a, nil
	}
	return c.load(ctx, "load")
}

// Reload fetches and parses the artifact again and swaps it in on success.
func (c *ArtifactCache) Reload(ctx context.Context) (port.ModelArtifact, error) {
	return c.load(ctx, "reload")
}

// Invalidate drops the active artifact; the next Current call loads again.
func (c *ArtifactCache) Invalidate() {
	c.current.Store(nil)
}

// Loaded reports whether an artifact is active.
func (c *ArtifactCache) Loaded() bool {
	return c.current.Load() != nil
}

func (c *ArtifactCache) load(ctx context.Context, key string) (port.ModelArtifact, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		if key == "load" {
			if a := c.current.Load(); a != nil {
				return a, nil
			}
		}

		data, err := c.source.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrArtifactUnavailable, c.source.Location(), err)
		}
		a, err := ParseArtifact(data, c.source.Location(), c.now())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrArtifactUnavailable, c.source.Location(), err)
		}

		c.current.Store(a)
		c.logger.Info("classifier artifact loaded",
			slog.String("source", a.Source()),
			slog.String("checksum", a.Checksum()),
			slog.Int("features", len(a.FeatureColumns())),
			slog.Float64("threshold", a.Threshold()),
		)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Artifact), nil
}
