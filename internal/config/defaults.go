package config

import "github.com/spf13/viper"

// Default values for every tunable.  These mirror the documented engine
// defaults so that an empty configuration file yields a fully working engine.
const (
	DefaultFallbackUncertaintyPct = 0.15
	DefaultPricePerSqft           = 100.0

	DefaultFusionAlpha    = 0.6
	DefaultTopK           = 10
	DefaultPoolMultiplier = 2
	DefaultRadiusKM       = 10.0

	DefaultMaxReasonableUncertainty = 50000.0
	DefaultUncertaintyWeight        = 0.4
	DefaultCompletenessWeight       = 0.3
	DefaultFeatureQualityWeight     = 0.3
	DefaultConfidenceFloor          = 0.1

	DefaultMetricsNamespace = "landai"
)

// applyDefaults registers every default value on the viper instance so that
// unset keys resolve to working values instead of zero values.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("valuation.model_path", "")
	v.SetDefault("valuation.fallback_uncertainty_pct", DefaultFallbackUncertaintyPct)
	v.SetDefault("valuation.default_price_per_sqft", DefaultPricePerSqft)

	// Scoring weights default to the engine's built-in table when absent;
	// an empty map here lets the scoring engine merge its own defaults.
	v.SetDefault("scoring.weights", map[string]float64{})

	v.SetDefault("recommend.fusion_alpha", DefaultFusionAlpha)
	v.SetDefault("recommend.default_top_k", DefaultTopK)
	v.SetDefault("recommend.pool_multiplier", DefaultPoolMultiplier)
	v.SetDefault("recommend.default_radius_km", DefaultRadiusKM)

	v.SetDefault("confidence.max_reasonable_uncertainty", DefaultMaxReasonableUncertainty)
	v.SetDefault("confidence.uncertainty_weight", DefaultUncertaintyWeight)
	v.SetDefault("confidence.completeness_weight", DefaultCompletenessWeight)
	v.SetDefault("confidence.feature_quality_weight", DefaultFeatureQualityWeight)
	v.SetDefault("confidence.floor", DefaultConfidenceFloor)

	v.SetDefault("analysis.include_recommendations", true)
	v.SetDefault("analysis.include_explanation", true)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
}

// Default returns an EngineConfig populated entirely from defaults, without
// touching the filesystem or the environment.  Used by tests and by callers
// that construct engines programmatically.
func Default() *EngineConfig {
	v := viper.New()
	applyDefaults(v)
	var cfg EngineConfig
	// Unmarshal over defaults cannot fail: the key set is fixed above.
	_ = v.Unmarshal(&cfg)
	return &cfg
}
