// Package scoring computes the beneficiary score: a weighted composite
// desirability score (0–100) over normalized location factors, with a full
// per-component breakdown so raw factor quality and weighted influence stay
// separately visible.
package scoring

import (
	"fmt"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	"github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Components and weights
// ─────────────────────────────────────────────────────────────────────────────

// Component names one factor of the beneficiary score.
type Component string

const (
	ComponentValue             Component = "value"
	ComponentSchool            Component = "school"
	ComponentCrimeInv          Component = "crime_inv"
	ComponentEnvInv            Component = "env_inv"
	ComponentEmployerProximity Component = "employer_proximity"
)

// Components lists every scoring component in stable order.
var Components = []Component{
	ComponentValue,
	ComponentSchool,
	ComponentCrimeInv,
	ComponentEnvInv,
	ComponentEmployerProximity,
}

// ScoreWeights maps components to their relative importance.  Only ratios
// matter: the engine normalizes by the weight sum at use time.
type ScoreWeights map[Component]float64

// DefaultWeights returns the documented default weight table.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{
		ComponentValue:             8,
		ComponentSchool:            8,
		ComponentCrimeInv:          6,
		ComponentEnvInv:            5,
		ComponentEmployerProximity: 7,
	}
}

// MergeWithDefaults overlays caller-supplied overrides onto the default
// weight table key-by-key; unspecified components keep their defaults.
// Unknown component names and negative weights are rejected.
func MergeWithDefaults(overrides ScoreWeights) (ScoreWeights, error) {
	merged := DefaultWeights()
	for comp, w := range overrides {
		if _, known := merged[comp]; !known {
			return nil, apperrors.New(apperrors.ErrCodeWeightInvalid, "unknown scoring component").
				WithDetail(string(comp))
		}
		if w < 0 {
			return nil, apperrors.New(apperrors.ErrCodeWeightInvalid, "weight must be non-negative").
				WithDetail(fmt.Sprintf("%s=%v", comp, w))
		}
		merged[comp] = w
	}
	return merged, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// BeneficiaryScore
// ─────────────────────────────────────────────────────────────────────────────

// BeneficiaryScore is the immutable outcome of one scoring pass.
type BeneficiaryScore struct {
	// Overall is the weighted composite in [0,100].  Zero when Degenerate.
	Overall float64 `json:"overall"`

	// Components holds each factor's own 0–100 score, which is
	// 100 × normalizedValue and therefore independent of the factor's weight.
	Components map[Component]float64 `json:"components"`

	// Weights is the effective weight table used, after default merging.
	Weights ScoreWeights `json:"weights"`

	// RawWeightedSum holds each factor's un-normalized weighted contribution
	// (normalizedValue × weight), the input to the overall average.
	RawWeightedSum map[Component]float64 `json:"raw_weighted_sum"`

	// Degenerate flags an all-zero weight table.  The overall score is
	// substituted with 0 instead of raising; callers must treat the result
	// as carrying no preference signal.
	Degenerate bool `json:"degenerate"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Scorer
// ─────────────────────────────────────────────────────────────────────────────

// Scorer computes beneficiary scores from normalized features.
type Scorer interface {
	// Score computes the beneficiary score under the given weight overrides
	// (nil uses pure defaults).  Invalid overrides are rejected with a
	// validation error; an all-zero weight table yields a degenerate result
	// rather than an error.
	Score(nf feature.NormalizedFeatures, overrides ScoreWeights) (*BeneficiaryScore, error)
}

// DefaultScorer is the standard Scorer implementation.
type DefaultScorer struct {
	logger logging.Logger
}

// NewScorer constructs a DefaultScorer.  A nil logger falls back to the
// no-op logger.
func NewScorer(logger logging.Logger) *DefaultScorer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DefaultScorer{logger: logger.Named("scoring")}
}

// componentValue maps a component to its normalized feature value.
func componentValue(nf feature.NormalizedFeatures, comp Component) float64 {
	switch comp {
	case ComponentValue:
		return nf.Value
	case ComponentSchool:
		return nf.School
	case ComponentCrimeInv:
		return nf.CrimeInv
	case ComponentEnvInv:
		return nf.HazardInv
	case ComponentEmployerProximity:
		return nf.EmployerProximity
	}
	return 0
}

// Score implements Scorer.
func (s *DefaultScorer) Score(nf feature.NormalizedFeatures, overrides ScoreWeights) (*BeneficiaryScore, error) {
	weights, err := MergeWithDefaults(overrides)
	if err != nil {
		return nil, err
	}

	result := &BeneficiaryScore{
		Components:     make(map[Component]float64, len(Components)),
		RawWeightedSum: make(map[Component]float64, len(Components)),
		Weights:        weights,
	}

	var weightSum, contributionSum float64
	for _, comp := range Components {
		v := componentValue(nf, comp)
		w := weights[comp]
		result.Components[comp] = 100 * v
		result.RawWeightedSum[comp] = v * w
		weightSum += w
		contributionSum += v * w
	}

	if weightSum == 0 {
		result.Degenerate = true
		result.Overall = 0
		s.logger.Warn("all scoring weights are zero, returning degenerate score")
		return result, nil
	}

	result.Overall = 100 * contributionSum / weightSum
	return result, nil
}
