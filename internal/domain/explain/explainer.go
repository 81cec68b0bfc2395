// Package explain decomposes valuation predictions into per-feature
// attributions and beneficiary scores into per-component contributions.
// The primary attribution method walks the ensemble's decision paths; a
// deterministic rule-based fallback covers heuristic valuations and missing
// models, and is always labeled as the lower-fidelity method it is.
package explain

import (
	"math"
	"sort"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/scoring"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/valuation"
	"github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Explanation model
// ─────────────────────────────────────────────────────────────────────────────

// ExplanationType labels which attribution method produced an explanation.
type ExplanationType string

const (
	// TypeAttribution is the primary decision-path decomposition over the
	// ensemble trees.
	TypeAttribution ExplanationType = "attribution"

	// TypeRuleBasedFallback is the fixed-importance approximation used when
	// no ensemble is available.  Lower fidelity by construction.
	TypeRuleBasedFallback ExplanationType = "rule_based_fallback"
)

// Attribution is one feature's signed contribution to the prediction.
type Attribution struct {
	FeatureName  string  `json:"feature_name"`
	Contribution float64 `json:"contribution"`
	RawValue     float64 `json:"raw_value"`
	Description  string  `json:"description"`
}

// Explanation is the immutable outcome of one valuation explanation.
// BaseValue + the sum of all Contributions reconstructs PredictedValue:
// exactly (up to float rounding) for both methods, since the fallback carries
// an explicit residual attribution.
type Explanation struct {
	BaseValue      float64         `json:"base_value"`
	PredictedValue float64         `json:"predicted_value"`
	Type           ExplanationType `json:"type"`

	// Attributions is ordered by descending absolute contribution.
	Attributions []Attribution `json:"attributions"`

	// TopPositive and TopNegative are the strongest value drivers in each
	// direction, at most topDriverCount entries each.
	TopPositive []Attribution `json:"top_positive"`
	TopNegative []Attribution `json:"top_negative"`

	// Summary is a short human-readable digest of the leading drivers.
	Summary string `json:"summary"`
}

// topDriverCount bounds the TopPositive/TopNegative sublists.
const topDriverCount = 5

// ─────────────────────────────────────────────────────────────────────────────
// Rule-based fallback constants
// ─────────────────────────────────────────────────────────────────────────────

// fallbackImportances is the fixed importance table of the rule-based method.
var fallbackImportances = []struct {
	name       string
	importance float64
}{
	{"living_area_sqft", 0.25},
	{"norm_school", 0.20},
	{"norm_crime_inv", 0.15},
	{"age", 0.10},
	{"bedrooms", 0.10},
	{"bathrooms", 0.08},
	{"norm_flood_inv", 0.07},
	{"norm_hospital", 0.05},
}

const (
	// fallbackBaseFraction of the prediction is attributed to the baseline.
	fallbackBaseFraction = 0.70

	// fallbackScale damps the per-feature deviations from the 0.5 midpoint.
	fallbackScale = 0.30

	// residualFeatureName labels the fallback's reconciliation entry, which
	// absorbs whatever the fixed-importance terms do not explain so the
	// reconstruction identity holds exactly.
	residualFeatureName = "other_factors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Explainer
// ─────────────────────────────────────────────────────────────────────────────

// Explainer produces valuation and score explanations.
type Explainer interface {
	// ExplainValuation attributes the valuation result's point estimate to
	// the input features.  Ensemble valuations use decision-path
	// attribution; heuristic valuations (or a missing model) use the
	// rule-based fallback.  ExplainValuation never fails for a well-formed
	// result: internal attribution problems degrade to the fallback.
	ExplainValuation(fv *feature.FeatureVector, nf feature.NormalizedFeatures, result *valuation.ValuationResult) (*Explanation, error)

	// ExplainScore breaks a beneficiary score into per-component entries
	// ordered by descending absolute weighted contribution.
	ExplainScore(score *scoring.BeneficiaryScore) []ScoreComponentExplanation
}

// DefaultExplainer is the standard Explainer implementation.
type DefaultExplainer struct {
	model  *valuation.EnsembleModel // nil forces the fallback method
	logger logging.Logger
}

// ExplainerOption customizes a DefaultExplainer.
type ExplainerOption func(*DefaultExplainer)

// WithModel installs the ensemble used for decision-path attribution.
func WithModel(m *valuation.EnsembleModel) ExplainerOption {
	return func(e *DefaultExplainer) { e.model = m }
}

// NewExplainer constructs a DefaultExplainer.
func NewExplainer(logger logging.Logger, opts ...ExplainerOption) *DefaultExplainer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	e := &DefaultExplainer{logger: logger.Named("explain")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ─────────────────────────────────────────────────────────────────────────────
// Valuation explanation
// ─────────────────────────────────────────────────────────────────────────────

// ExplainValuation implements Explainer.
func (e *DefaultExplainer) ExplainValuation(fv *feature.FeatureVector, nf feature.NormalizedFeatures, result *valuation.ValuationResult) (*Explanation, error) {
	if fv == nil || result == nil {
		return nil, apperrors.New(apperrors.ErrCodeAttributionFailed,
			"feature vector and valuation result are required")
	}

	if e.model != nil && result.Method == valuation.MethodEnsemble {
		if exp := e.pathAttribution(fv, nf, result.PointEstimate); exp != nil {
			return exp, nil
		}
		e.logger.Warn("decision-path attribution did not reconstruct the prediction, using fallback")
	}
	return e.fallback(fv, nf, result.PointEstimate), nil
}

// pathAttribution runs the tree-structure-aware decomposition.  Returns nil
// when the decomposition fails to reconstruct the prediction, which signals
// a model/valuator mismatch and demotes the explanation to the fallback.
func (e *DefaultExplainer) pathAttribution(fv *feature.FeatureVector, nf feature.NormalizedFeatures, prediction float64) *Explanation {
	x := valuation.Vectorize(fv, nf)
	base, contribs := e.model.PathContributions(x)

	var sum float64
	for _, c := range contribs {
		sum += c
	}
	if math.Abs(base+sum-prediction) > reconstructionTolerance(prediction) {
		return nil
	}

	attributions := make([]Attribution, 0, len(contribs))
	for i, c := range contribs {
		name := valuation.ModelFeatureNames[i]
		attributions = append(attributions, Attribution{
			FeatureName:  name,
			Contribution: c,
			RawValue:     x[i],
			Description:  describe(name, x[i], c),
		})
	}
	return e.assemble(base, prediction, TypeAttribution, attributions)
}

// fallback computes the fixed-importance approximation.  An explicit
// residual entry keeps the reconstruction identity exact despite the
// approximate per-feature terms.
func (e *DefaultExplainer) fallback(fv *feature.FeatureVector, nf feature.NormalizedFeatures, prediction float64) *Explanation {
	base := fallbackBaseFraction * prediction
	raw := valuation.Vectorize(fv, nf)
	norm := normalizedByName(nf)

	attributions := make([]Attribution, 0, len(fallbackImportances)+1)
	var sum float64
	for i, fi := range fallbackImportances {
		contribution := (norm[fi.name] - 0.5) * fi.importance * prediction * fallbackScale
		sum += contribution
		attributions = append(attributions, Attribution{
			FeatureName:  fi.name,
			Contribution: contribution,
			RawValue:     raw[i],
			Description:  describe(fi.name, raw[i], contribution),
		})
	}

	residual := prediction - base - sum
	attributions = append(attributions, Attribution{
		FeatureName:  residualFeatureName,
		Contribution: residual,
		Description:  describe(residualFeatureName, 0, residual),
	})
	return e.assemble(base, prediction, TypeRuleBasedFallback, attributions)
}

// normalizedByName maps model feature names to their [0,1] normalized values
// for the fallback's midpoint-deviation formula.
func normalizedByName(nf feature.NormalizedFeatures) map[string]float64 {
	return map[string]float64{
		"living_area_sqft": nf.LivingArea,
		"norm_school":      nf.School,
		"norm_crime_inv":   nf.CrimeInv,
		"age":              nf.AgeInv,
		"bedrooms":         nf.Bedrooms,
		"bathrooms":        nf.Bathrooms,
		"norm_flood_inv":   nf.FloodInv,
		"norm_hospital":    nf.Hospital,
	}
}

// reconstructionTolerance is the documented tolerance of the reconstruction
// identity: exact within float rounding, expressed relative to the
// prediction's magnitude.
func reconstructionTolerance(prediction float64) float64 {
	return 1e-6 * math.Max(1, math.Abs(prediction))
}

// assemble sorts, splits, and summarizes a finished attribution set.
func (e *DefaultExplainer) assemble(base, prediction float64, typ ExplanationType, attributions []Attribution) *Explanation {
	sort.SliceStable(attributions, func(i, j int) bool {
		ai, aj := math.Abs(attributions[i].Contribution), math.Abs(attributions[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return attributions[i].FeatureName < attributions[j].FeatureName
	})

	var positive, negative []Attribution
	for _, a := range attributions {
		switch {
		case a.Contribution > 0 && len(positive) < topDriverCount:
			positive = append(positive, a)
		case a.Contribution < 0 && len(negative) < topDriverCount:
			negative = append(negative, a)
		}
	}

	return &Explanation{
		BaseValue:      base,
		PredictedValue: prediction,
		Type:           typ,
		Attributions:   attributions,
		TopPositive:    positive,
		TopNegative:    negative,
		Summary:        summarize(positive, negative),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Score explanation
// ─────────────────────────────────────────────────────────────────────────────

// ScoreComponentExplanation is one beneficiary-score component with both its
// raw quality and its weighted influence on the overall score.
type ScoreComponentExplanation struct {
	Component            scoring.Component `json:"component"`
	RawScore             float64           `json:"raw_score"`
	Weight               float64           `json:"weight"`
	WeightedContribution float64           `json:"weighted_contribution"`
	Quality              string            `json:"quality"`
}

// ExplainScore implements Explainer.
func (e *DefaultExplainer) ExplainScore(score *scoring.BeneficiaryScore) []ScoreComponentExplanation {
	if score == nil {
		return nil
	}
	out := make([]ScoreComponentExplanation, 0, len(scoring.Components))
	for _, comp := range scoring.Components {
		out = append(out, ScoreComponentExplanation{
			Component:            comp,
			RawScore:             score.Components[comp],
			Weight:               score.Weights[comp],
			WeightedContribution: score.RawWeightedSum[comp],
			Quality:              qualityLabel(score.Components[comp]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := math.Abs(out[i].WeightedContribution), math.Abs(out[j].WeightedContribution)
		if ci != cj {
			return ci > cj
		}
		return out[i].Component < out[j].Component
	})
	return out
}

// qualityLabel buckets a 0–100 component score into a presentation label.
func qualityLabel(raw float64) string {
	switch {
	case raw >= 80:
		return "excellent"
	case raw >= 60:
		return "good"
	case raw >= 40:
		return "fair"
	default:
		return "poor"
	}
}
