package prometheus

// EngineMetrics is the typed bundle of engine instrumentation.  One instance
// is created at startup and injected into the analysis service.
type EngineMetrics struct {
	// AnalysesTotal counts analysis requests by terminal status
	// ("ok", "validation_error", "error").
	AnalysesTotal CounterVec

	// AnalysisDuration observes end-to-end analysis latency in seconds.
	AnalysisDuration HistogramVec

	// ValuationDuration observes valuation latency by method
	// ("ensemble", "heuristic_fallback").
	ValuationDuration HistogramVec

	// ValuationFallbacksTotal counts activations of the heuristic path.
	ValuationFallbacksTotal CounterVec

	// RecommendationResultCount observes result-set sizes by variant
	// ("hybrid", "location").
	RecommendationResultCount HistogramVec

	// ExplanationsTotal counts explanations by method
	// ("attribution", "rule_based_fallback").
	ExplanationsTotal CounterVec

	// ConfidenceReported observes the confidence values attached to results.
	ConfidenceReported HistogramVec
}

var (
	analysisDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}
	resultCountBuckets      = []float64{0, 1, 3, 5, 10, 20, 50, 100}
	confidenceBuckets       = []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1}
)

// NewEngineMetrics registers the engine's instrumentation on the collector.
func NewEngineMetrics(collector MetricsCollector) *EngineMetrics {
	return &EngineMetrics{
		AnalysesTotal: collector.RegisterCounter(
			"engine_analyses_total", "Analysis requests by status", "status"),
		AnalysisDuration: collector.RegisterHistogram(
			"engine_analysis_duration_seconds", "End-to-end analysis latency",
			analysisDurationBuckets),
		ValuationDuration: collector.RegisterHistogram(
			"engine_valuation_duration_seconds", "Valuation latency by method",
			analysisDurationBuckets, "method"),
		ValuationFallbacksTotal: collector.RegisterCounter(
			"engine_valuation_fallbacks_total", "Heuristic valuation fallbacks"),
		RecommendationResultCount: collector.RegisterHistogram(
			"engine_recommendation_result_count", "Recommendation result sizes",
			resultCountBuckets, "variant"),
		ExplanationsTotal: collector.RegisterCounter(
			"engine_explanations_total", "Explanations by method", "type"),
		ConfidenceReported: collector.RegisterHistogram(
			"engine_confidence_reported", "Reported confidence values",
			confidenceBuckets),
	}
}

// NewNopEngineMetrics returns an EngineMetrics whose instruments discard
// everything.
func NewNopEngineMetrics() *EngineMetrics {
	return NewEngineMetrics(NewNopCollector())
}
