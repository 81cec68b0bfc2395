// Package confidence blends model dispersion, data completeness, and
// feature-quality provenance into a single 0–1 confidence value for an
// analysis result.
package confidence

import (
	"math"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
)

// Documented domain constants of the confidence blend.
const (
	// DefaultMaxReasonableUncertainty is the valuation uncertainty (USD) at
	// which the uncertainty-derived confidence term reaches zero.
	DefaultMaxReasonableUncertainty = 50000.0

	// Blend weights over the three confidence signals.
	DefaultUncertaintyWeight    = 0.4
	DefaultCompletenessWeight   = 0.3
	DefaultFeatureQualityWeight = 0.3

	// DefaultFloor is the minimum confidence ever reported.  The engine
	// never asserts total unreliability: a degraded answer with low but
	// non-zero confidence is always preferable to a non-answer.
	DefaultFloor = 0.1
)

// Estimator computes analysis confidence.
type Estimator interface {
	// Estimate blends the valuation uncertainty with the vector's
	// completeness and provenance flags.  The result is always within
	// [floor, 1.0]; Estimate never fails.
	Estimate(uncertainty float64, fv *feature.FeatureVector) float64
}

// DefaultEstimator is the standard Estimator with configurable constants.
type DefaultEstimator struct {
	maxReasonableUncertainty float64
	uncertaintyWeight        float64
	completenessWeight       float64
	featureQualityWeight     float64
	floor                    float64
}

// EstimatorOption customizes a DefaultEstimator.
type EstimatorOption func(*DefaultEstimator)

// WithMaxReasonableUncertainty overrides the uncertainty scale.
func WithMaxReasonableUncertainty(v float64) EstimatorOption {
	return func(e *DefaultEstimator) { e.maxReasonableUncertainty = v }
}

// WithBlendWeights overrides the three blend weights.
func WithBlendWeights(uncertainty, completeness, featureQuality float64) EstimatorOption {
	return func(e *DefaultEstimator) {
		e.uncertaintyWeight = uncertainty
		e.completenessWeight = completeness
		e.featureQualityWeight = featureQuality
	}
}

// WithFloor overrides the minimum reported confidence.
func WithFloor(v float64) EstimatorOption {
	return func(e *DefaultEstimator) { e.floor = v }
}

// NewEstimator constructs a DefaultEstimator with the documented defaults.
func NewEstimator(opts ...EstimatorOption) *DefaultEstimator {
	e := &DefaultEstimator{
		maxReasonableUncertainty: DefaultMaxReasonableUncertainty,
		uncertaintyWeight:        DefaultUncertaintyWeight,
		completenessWeight:       DefaultCompletenessWeight,
		featureQualityWeight:     DefaultFeatureQualityWeight,
		floor:                    DefaultFloor,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate implements Estimator.
func (e *DefaultEstimator) Estimate(uncertainty float64, fv *feature.FeatureVector) float64 {
	uncertaintyConfidence := math.Max(0, 1-uncertainty/e.maxReasonableUncertainty)

	var completeness, featureQuality float64
	if fv != nil {
		completeness = fv.Completeness
		featureQuality = qualityFraction(fv)
	}

	c := e.uncertaintyWeight*uncertaintyConfidence +
		e.completenessWeight*completeness +
		e.featureQualityWeight*featureQuality

	if c < e.floor {
		return e.floor
	}
	if c > 1 {
		return 1
	}
	return c
}

// qualityFraction counts how many signal groups were actually present in the
// raw bundle.  Provenance flags are used rather than the feature values
// themselves: substituted defaults look like perfectly ordinary numbers and
// must not inflate confidence.
func qualityFraction(fv *feature.FeatureVector) float64 {
	present := 0
	if fv.HasMarketSignal {
		present++
	}
	if fv.HasProximitySignal {
		present++
	}
	if fv.HasSafetySignal {
		present++
	}
	return float64(present) / 3
}
