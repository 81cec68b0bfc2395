package valuation

import (
	"fmt"
	"math"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	"github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// ValuationResult
// ─────────────────────────────────────────────────────────────────────────────

// Method identifies which valuation path produced a result.
type Method string

const (
	// MethodEnsemble is the primary path: ensemble mean with dispersion
	// uncertainty.
	MethodEnsemble Method = "ensemble"

	// MethodHeuristic is the bounded-multiplier fallback used when no
	// trained ensemble is available.
	MethodHeuristic Method = "heuristic_fallback"
)

// ValuationResult is the immutable outcome of one valuation.  Currency fields
// are whole USD.  Confidence is filled in by the confidence estimator at the
// application layer; the valuator leaves it zero.
type ValuationResult struct {
	// PointEstimate is the predicted market value.
	PointEstimate float64 `json:"point_estimate"`

	// Uncertainty is the standard deviation across ensemble members, or the
	// fixed fraction of the point estimate under the fallback.  Never negative.
	Uncertainty float64 `json:"uncertainty"`

	// Confidence is the overall analysis confidence in [0.1, 1.0].
	Confidence float64 `json:"confidence"`

	// Method records which path produced the result.
	Method Method `json:"method"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Valuator
// ─────────────────────────────────────────────────────────────────────────────

// Valuator produces a point estimate with an uncertainty band for a property.
type Valuator interface {
	// Value predicts the market value of the property described by fv/nf.
	// Out-of-range inputs (non-positive living area) are rejected with a
	// validation error before the model is consulted; for in-range inputs
	// Value always returns a result, degrading to the heuristic path
	// instead of propagating internal numerical errors.
	Value(fv *feature.FeatureVector, nf feature.NormalizedFeatures) (*ValuationResult, error)
}

// DefaultValuator is the standard Valuator: an optional ensemble backend with
// an always-available heuristic fallback behind a single predict surface.
type DefaultValuator struct {
	model  *EnsembleModel // nil means heuristic-only
	logger logging.Logger

	// fallbackUncertaintyPct is the fallback uncertainty as a fraction of
	// the point estimate.
	fallbackUncertaintyPct float64

	// defaultPricePerSqft substitutes for a missing or non-positive market
	// price signal in the heuristic path.
	defaultPricePerSqft float64

	// onFallback is invoked whenever the heuristic path is used; wired to
	// the metrics collector by the application layer.  May be nil.
	onFallback func()
}

// ValuatorOption customizes a DefaultValuator.
type ValuatorOption func(*DefaultValuator)

// WithEnsemble installs a trained ensemble as the primary backend.  A nil
// model keeps the valuator heuristic-only.
func WithEnsemble(m *EnsembleModel) ValuatorOption {
	return func(v *DefaultValuator) { v.model = m }
}

// WithFallbackUncertaintyPct overrides the fallback uncertainty fraction.
func WithFallbackUncertaintyPct(pct float64) ValuatorOption {
	return func(v *DefaultValuator) { v.fallbackUncertaintyPct = pct }
}

// WithDefaultPricePerSqft overrides the substitute market price.
func WithDefaultPricePerSqft(price float64) ValuatorOption {
	return func(v *DefaultValuator) { v.defaultPricePerSqft = price }
}

// WithFallbackHook registers a callback fired on every heuristic fallback.
func WithFallbackHook(f func()) ValuatorOption {
	return func(v *DefaultValuator) { v.onFallback = f }
}

// NewValuator constructs a DefaultValuator with documented defaults:
// 15% fallback uncertainty and a 100 USD/sqft substitute price.
func NewValuator(logger logging.Logger, opts ...ValuatorOption) *DefaultValuator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	v := &DefaultValuator{
		logger:                 logger.Named("avm"),
		fallbackUncertaintyPct: 0.15,
		defaultPricePerSqft:    feature.DefaultMarketPricePerSqft,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Model returns the installed ensemble, or nil when running heuristic-only.
// The explainability engine uses this to pick its attribution method.
func (v *DefaultValuator) Model() *EnsembleModel { return v.model }

// ─────────────────────────────────────────────────────────────────────────────
// Prediction
// ─────────────────────────────────────────────────────────────────────────────

// Value implements Valuator.
func (v *DefaultValuator) Value(fv *feature.FeatureVector, nf feature.NormalizedFeatures) (*ValuationResult, error) {
	if fv == nil {
		return nil, apperrors.New(apperrors.ErrCodeAVMInputInvalid, "feature vector must not be nil")
	}
	if fv.LivingAreaSqft <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeAVMInputInvalid,
			"living area must be positive").
			WithDetail(fmt.Sprintf("living_area_sqft=%v", fv.LivingAreaSqft))
	}

	if v.model != nil && len(v.model.Trees) > 0 {
		mean, std := v.model.Predict(Vectorize(fv, nf))
		if sane(mean) && sane(std) && mean > 0 {
			return &ValuationResult{
				PointEstimate: mean,
				Uncertainty:   std,
				Method:        MethodEnsemble,
			}, nil
		}
		v.logger.Warn("ensemble produced out-of-range prediction, using heuristic",
			logging.Float64("mean", mean),
			logging.Float64("std", std),
		)
	}
	return v.heuristic(fv, nf), nil
}

// heuristic computes the bounded-multiplier estimate:
//
//	base   = livingArea × pricePerSqft
//	ageAdj = max(0.8, 1 − age/100)
//	school = 0.9 + 0.2 × normSchool
//	safety = 0.9 + 0.2 × normCrimeInv
//
// Uncertainty is a fixed fraction of the point estimate, so the fallback
// yields the same units and sign conventions as the primary path.
func (v *DefaultValuator) heuristic(fv *feature.FeatureVector, nf feature.NormalizedFeatures) *ValuationResult {
	pricePerSqft := fv.Market.PricePerSqft
	if pricePerSqft <= 0 {
		pricePerSqft = v.defaultPricePerSqft
	}

	ageAdj := math.Max(0.8, 1-fv.Age/100)
	schoolAdj := 0.9 + 0.2*nf.School
	safetyAdj := 0.9 + 0.2*nf.CrimeInv

	point := fv.LivingAreaSqft * pricePerSqft * ageAdj * schoolAdj * safetyAdj

	v.logger.Debug("heuristic valuation",
		logging.Float64("point_estimate", point),
		logging.Float64("age_adj", ageAdj),
		logging.Float64("school_adj", schoolAdj),
		logging.Float64("safety_adj", safetyAdj),
	)
	if v.onFallback != nil {
		v.onFallback()
	}
	return &ValuationResult{
		PointEstimate: point,
		Uncertainty:   point * v.fallbackUncertaintyPct,
		Method:        MethodHeuristic,
	}
}

func sane(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
