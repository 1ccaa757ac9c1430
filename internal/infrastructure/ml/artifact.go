package ml

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// DefaultThreshold applies when an artifact omits threshold_proba.
const DefaultThreshold = 0.5

var (
	// ErrArtifactUnavailable means no usable artifact could be obtained.
	// Scoring cannot proceed until the artifact location is fixed.
	ErrArtifactUnavailable = errors.New("classifier artifact unavailable")

	// ErrInvalidArtifact means the artifact bytes were read but rejected.
	ErrInvalidArtifact = errors.New("invalid classifier artifact")
)

type envelope struct {
	Threshold        *float64        `json:"threshold_proba"`
	Model            json.RawMessage `json:"model"`
	TargetDefinition string          `json:"target_definition"`
	FeatureColumns   []string        `json:"feature_columns"`
}

// Artifact is an immutable loaded classifier. It implements
// port.ModelArtifact.
type Artifact struct {
	loadedAt         time.Time
	model            Model
	checksum         string
	targetDefinition string
	source           string
	columns          []string
	threshold        float64
}

// ParseArtifact decodes and validates an artifact envelope.
func ParseArtifact(data []byte, source string, loadedAt time.Time) (*Artifact, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %w", ErrInvalidArtifact, err)
	}

	m, err := decodeModel(env.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	threshold := DefaultThreshold
	if env.Threshold != nil {
		threshold = *env.Threshold
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold_proba %v outside [0,1]", ErrInvalidArtifact, threshold)
	}

	columns := env.FeatureColumns
	if len(columns) == 0 {
		columns = m.Columns()
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no feature columns", ErrInvalidArtifact)
	}

	sum := sha256.Sum256(data)
	return &Artifact{
		model:            m,
		columns:          append([]string(nil), columns...),
		threshold:        threshold,
		targetDefinition: env.TargetDefinition,
		checksum:         hex.EncodeToString(sum[:]),
		source:           source,
		loadedAt:         loadedAt.UTC(),
	}, nil
}

// PredictProba runs the model on an aligned row.
func (a *Artifact) PredictProba(row model.FeatureRow) (float64, error) {
	return a.model.PredictProba(row)
}

func (a *Artifact) FeatureColumns() []string { return append([]string(nil), a.columns...) }
func (a *Artifact) Threshold() float64       { return a.threshold }
func (a *Artifact) TargetDefinition() string { return a.targetDefinition }
func (a *Artifact) Checksum() string         { return a.checksum }
func (a *Artifact) LoadedAt() time.Time      { return a.loadedAt }
func (a *Artifact) Source() string           { return a.source }
