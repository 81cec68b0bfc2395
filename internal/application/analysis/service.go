package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/LandArea-Intelligence/internal/config"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/confidence"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/explain"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/recommend"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/scoring"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/valuation"
	"github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// ─────────────────────────────────────────────────────────────────────────────
// Request / result records
// ─────────────────────────────────────────────────────────────────────────────

// Include toggles which sub-results a single-property analysis computes.
type Include struct {
	Valuation       bool `json:"valuation"`
	Score           bool `json:"score"`
	Recommendations bool `json:"recommendations"`
	Explanations    bool `json:"explanations"`
}

// Request is the input of a single-property analysis.
type Request struct {
	// Bundle carries the raw property and location signals.
	Bundle *feature.SignalBundle `json:"bundle"`

	// Weights optionally overrides the default beneficiary weights
	// key-by-key.
	Weights scoring.ScoreWeights `json:"weights,omitempty"`

	// RiskTolerance selects the investment-action thresholds.
	// Empty defaults to medium.
	RiskTolerance RiskTolerance `json:"risk_tolerance,omitempty"`

	// TopK bounds the recommendation list; 0 uses the configured default.
	TopK int `json:"top_k,omitempty"`

	// MixRatio optionally overrides the recommendation fusion alpha.
	MixRatio *float64 `json:"mix_ratio,omitempty"`

	// Include selects sub-results; nil computes everything enabled in the
	// engine configuration.
	Include *Include `json:"include,omitempty"`
}

// Result is the immutable output of a single-property analysis.  Optional
// sections are nil when toggled off.
type Result struct {
	AnalysisID string `json:"analysis_id"`

	Valuation       *valuation.ValuationResult          `json:"valuation,omitempty"`
	Score           *scoring.BeneficiaryScore           `json:"score,omitempty"`
	Recommendations []recommend.Candidate               `json:"recommendations,omitempty"`
	Explanation     *explain.Explanation                `json:"explanation,omitempty"`
	ScoreBreakdown  []explain.ScoreComponentExplanation `json:"score_breakdown,omitempty"`

	Suitability      SuitabilityScore `json:"suitability"`
	InvestmentAction Action           `json:"investment_action"`
	CombinedScore    float64          `json:"combined_score"`

	// ConfidenceLevel is always present, in [0.1, 1.0].
	ConfidenceLevel float64 `json:"confidence_level"`

	// EngineVersion identifies the engine and model generation that
	// produced this result.
	EngineVersion string `json:"engine_version"`

	// Warnings carries degenerate-result conditions (zero-weight scoring,
	// corpus too small to fill topK).  Flagged, never thrown.
	Warnings []string `json:"warnings,omitempty"`

	ProcessingTime time.Duration `json:"processing_time"`
}

// ─────────────────────────────────────────────────────────────────────────────
// AnalysisService
// ─────────────────────────────────────────────────────────────────────────────

// AnalysisService executes the analysis pipeline against the current
// EngineContext snapshot.  The service itself is stateless and safe for
// unlimited concurrent use.
type AnalysisService struct {
	cfg     *config.EngineConfig
	holder  *ContextHolder
	logger  logging.Logger
	metrics *prom.EngineMetrics

	extractor   feature.Extractor
	scorer      scoring.Scorer
	estimator   confidence.Estimator
	recommender recommend.Engine
}

// NewAnalysisService wires the engine components.  A nil config uses
// defaults; nil logger and metrics fall back to no-op implementations.
func NewAnalysisService(cfg *config.EngineConfig, holder *ContextHolder, logger logging.Logger, metrics *prom.EngineMetrics) *AnalysisService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prom.NewNopEngineMetrics()
	}
	if holder == nil {
		holder = NewContextHolder(nil)
	}
	return &AnalysisService{
		cfg:       cfg,
		holder:    holder,
		logger:    logger.Named("analysis"),
		metrics:   metrics,
		extractor: feature.NewExtractor(logger),
		scorer:    scoring.NewScorer(logger),
		estimator: confidence.NewEstimator(
			confidence.WithMaxReasonableUncertainty(cfg.Confidence.MaxReasonableUncertainty),
			confidence.WithBlendWeights(cfg.Confidence.UncertaintyWeight,
				cfg.Confidence.CompletenessWeight, cfg.Confidence.FeatureQualityWeight),
			confidence.WithFloor(cfg.Confidence.Floor),
		),
		recommender: recommend.NewEngine(logger,
			recommend.WithFusionAlpha(cfg.Recommend.FusionAlpha),
			recommend.WithPoolMultiplier(cfg.Recommend.PoolMultiplier),
		),
	}
}

// Holder exposes the context holder so external loaders can swap snapshots.
func (s *AnalysisService) Holder() *ContextHolder { return s.holder }

func (s *AnalysisService) include(req *Request) Include {
	if req.Include != nil {
		return *req.Include
	}
	return Include{
		Valuation:       true,
		Score:           true,
		Recommendations: s.cfg.Analysis.IncludeRecommendations,
		Explanations:    s.cfg.Analysis.IncludeExplanation,
	}
}

func (s *AnalysisService) versionString(ec *EngineContext) string {
	if ec.Version != "" {
		return EngineVersion + "+" + ec.Version
	}
	return EngineVersion
}

// ─────────────────────────────────────────────────────────────────────────────
// Single-property analysis
// ─────────────────────────────────────────────────────────────────────────────

// Analyze runs the full pipeline for one property.  Validation errors
// propagate to the caller; every other internal condition is absorbed into
// fallbacks, warnings, and the confidence level, so a well-formed request
// always yields a result.
func (s *AnalysisService) Analyze(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil {
		req = &Request{}
	}

	ec := s.holder.Current()
	inc := s.include(req)

	fv, err := s.extractor.Extract(req.Bundle)
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}
	nf := feature.Normalize(fv)

	result := &Result{
		AnalysisID:    uuid.NewString(),
		EngineVersion: s.versionString(ec),
	}

	// Valuation runs even when toggled off the output: confidence and
	// explanation both feed on it.
	valuator := valuation.NewValuator(s.logger,
		valuation.WithEnsemble(ec.Model),
		valuation.WithFallbackUncertaintyPct(s.cfg.Valuation.FallbackUncertaintyPct),
		valuation.WithDefaultPricePerSqft(s.cfg.Valuation.DefaultPricePerSqft),
		valuation.WithFallbackHook(func() {
			s.metrics.ValuationFallbacksTotal.WithLabelValues().Inc()
		}),
	)
	valStart := time.Now()
	vres, err := valuator.Value(fv, nf)
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}
	s.metrics.ValuationDuration.WithLabelValues(string(vres.Method)).
		Observe(time.Since(valStart).Seconds())

	conf := s.estimator.Estimate(vres.Uncertainty, fv)
	vres.Confidence = conf
	result.ConfidenceLevel = conf
	s.metrics.ConfidenceReported.WithLabelValues().Observe(conf)
	if inc.Valuation {
		result.Valuation = vres
	}

	weights := req.Weights
	if len(weights) == 0 && len(s.cfg.Scoring.Weights) > 0 {
		weights = make(scoring.ScoreWeights, len(s.cfg.Scoring.Weights))
		for k, v := range s.cfg.Scoring.Weights {
			weights[scoring.Component(k)] = v
		}
	}
	score, err := s.scorer.Score(nf, weights)
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}
	if score.Degenerate {
		result.Warnings = append(result.Warnings,
			"all scoring weights are zero; overall beneficiary score carries no preference signal")
	}
	if inc.Score {
		result.Score = score
	}

	result.Suitability = computeSuitability(nf)
	result.InvestmentAction, result.CombinedScore =
		investmentAction(result.Suitability, score, req.RiskTolerance)

	if inc.Recommendations {
		s.attachRecommendations(ec, nf, req, result)
	}

	if inc.Explanations {
		explainer := explain.NewExplainer(s.logger, explain.WithModel(ec.Model))
		exp, expErr := explainer.ExplainValuation(fv, nf, vres)
		if expErr != nil {
			// Explanation problems never fail the analysis.
			s.logger.Error("explanation failed", logging.Err(expErr))
			result.Warnings = append(result.Warnings, "explanation unavailable for this analysis")
		} else {
			result.Explanation = exp
			s.metrics.ExplanationsTotal.WithLabelValues(string(exp.Type)).Inc()
		}
		result.ScoreBreakdown = explainer.ExplainScore(score)
	}

	result.ProcessingTime = time.Since(start)
	s.metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	s.metrics.AnalysisDuration.WithLabelValues().Observe(result.ProcessingTime.Seconds())

	s.logger.Info("analysis completed",
		logging.String("analysis_id", result.AnalysisID),
		logging.String("method", string(vres.Method)),
		logging.Float64("confidence", conf),
		logging.String("action", string(result.InvestmentAction)),
		logging.Duration("processing_time", result.ProcessingTime),
	)
	return result, nil
}

// attachRecommendations fills the recommendation section, downgrading corpus
// shortfalls to warnings.  Parameter validation errors are also downgraded
// here: by this point the analysis has a valid core result, and recommendation
// trouble never voids it.
func (s *AnalysisService) attachRecommendations(ec *EngineContext, nf feature.NormalizedFeatures, req *Request, result *Result) {
	if ec.Corpus.Len() == 0 {
		result.Warnings = append(result.Warnings, "recommendation corpus is empty")
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.Recommend.DefaultTopK
	}
	recs, err := s.recommender.Recommend(ec.Corpus, ec.Interactions,
		recommend.Seed{Features: &nf}, topK, req.MixRatio)
	if err != nil {
		s.logger.Warn("recommendation stage failed", logging.Err(err))
		result.Warnings = append(result.Warnings, "recommendations unavailable: "+err.Error())
		return
	}
	if len(recs) < topK {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("corpus has only %d eligible candidates for topK=%d", len(recs), topK))
	}
	result.Recommendations = recs
	s.metrics.RecommendationResultCount.WithLabelValues("hybrid").Observe(float64(len(recs)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Corpus-relative recommendation
// ─────────────────────────────────────────────────────────────────────────────

// Recommend returns ranked candidates for a seed (corpus member or raw
// feature set) against the current corpus snapshot.
func (s *AnalysisService) Recommend(ctx context.Context, seed recommend.Seed, topK int, mixRatio *float64) ([]recommend.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ec := s.holder.Current()
	if topK <= 0 {
		topK = s.cfg.Recommend.DefaultTopK
	}
	recs, err := s.recommender.Recommend(ec.Corpus, ec.Interactions, seed, topK, mixRatio)
	if err != nil {
		return nil, err
	}
	s.metrics.RecommendationResultCount.WithLabelValues("hybrid").Observe(float64(len(recs)))
	return recs, nil
}

// RecommendNear returns ranked candidates around a bare geo-point.
func (s *AnalysisService) RecommendNear(ctx context.Context, origin feature.GeoPoint, radiusKM float64, topK int) ([]recommend.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ec := s.holder.Current()
	// Zero means unspecified; a negative radius is malformed and rejected
	// by the engine.
	if radiusKM == 0 {
		radiusKM = s.cfg.Recommend.DefaultRadiusKM
	}
	if topK <= 0 {
		topK = s.cfg.Recommend.DefaultTopK
	}
	recs, err := s.recommender.RecommendNear(ec.Corpus, origin, radiusKM, topK)
	if err != nil {
		return nil, err
	}
	s.metrics.RecommendationResultCount.WithLabelValues("location").Observe(float64(len(recs)))
	return recs, nil
}
